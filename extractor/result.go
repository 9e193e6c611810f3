package extractor

import (
	"net/netip"
	"strings"
)

// ExtractResult is a URL's subdomain, domain and suffix, plus whether
// the winning suffix rule came from the private section of the list.
type ExtractResult struct {
	Subdomain string `json:"subdomain"`
	Domain    string `json:"domain"`
	Suffix    string `json:"suffix"`
	IsPrivate bool   `json:"isPrivate"`
}

// RegisteredDomain joins the domain and suffix. If there is no suffix
// the bare domain is returned, if there is no domain the result is
// empty.
func (r ExtractResult) RegisteredDomain() string {
	if r.Domain == "" {
		return ""
	}

	if r.Suffix == "" {
		return r.Domain
	}

	return r.Domain + "." + r.Suffix
}

// FQDN joins the non-empty parts of the result.
func (r ExtractResult) FQDN() string {
	parts := make([]string, 0, 3)

	for _, part := range []string{r.Subdomain, r.Domain, r.Suffix} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ".")
}

// IPv4 returns the domain if the presented input was a bare IPv4
// address, else an empty string.
func (r ExtractResult) IPv4() string {
	if r.Subdomain != "" || r.Suffix != "" {
		return ""
	}

	if addr, err := netip.ParseAddr(r.Domain); err == nil && addr.Is4() {
		return r.Domain
	}

	return ""
}
