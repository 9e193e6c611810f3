package extractor

import (
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// schemeChars are the characters allowed in a URL scheme, per RFC 3986
// plus "+-." which appear after the first character.
const schemeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+-."

// unicodeDots are the code points the IDNA spec treats as label
// separators, mapped to "." before splitting.
var unicodeDotsReplacer = strings.NewReplacer(
	"。", ".", // ideographic full stop
	"．", ".", // fullwidth full stop
	"｡", ".", // halfwidth ideographic full stop
)

// hostname is the normalized form of an arbitrary URL-like input:
// either an IP literal, or an ordered label sequence. labels keep the
// original casing and encoding for output reconstruction, matchLabels
// are the lowercased, punycode-decoded form the trie compares against.
type hostname struct {
	ip          string
	labels      []string
	matchLabels []string
}

func (h hostname) empty() bool {
	return h.ip == "" && len(h.labels) == 0
}

// normalize converts any string into a hostname. It never fails:
// malformed input degrades to whatever host-like remainder is left.
func normalize(input string) hostname {
	netloc := lenientNetloc(input)

	if netloc == "" {
		return hostname{}
	}

	if isIPLiteral(netloc) {
		return hostname{ip: netloc}
	}

	labels := strings.Split(unicodeDotsReplacer.Replace(netloc), ".")

	matchLabels := make([]string, len(labels))
	for i, label := range labels {
		matchLabels[i] = decodePunycode(label)
	}

	return hostname{labels: labels, matchLabels: matchLabels}
}

// lenientNetloc extracts the host part of a URL-like string without
// ever raising: scheme, userinfo, port, path, query and fragment are
// stripped, a bracketed IPv6 address is kept whole, and trailing root
// labels are trimmed.
func lenientNetloc(url string) string {
	s := schemelessURL(url)

	if idx := strings.IndexAny(s, "/?#"); idx != -1 {
		s = s[:idx]
	}

	if idx := strings.LastIndexByte(s, '@'); idx != -1 {
		s = s[idx+1:]
	}

	if strings.HasPrefix(s, "[") {
		if idx := strings.IndexByte(s, ']'); idx != -1 {
			return s[:idx+1]
		}
	}

	if idx := strings.IndexByte(s, ':'); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	return strings.TrimRight(s, ".。．｡")
}

// schemelessURL strips a leading scheme, but only if the text before
// the "//" delimiter really looks like one.
func schemelessURL(url string) string {
	idx := strings.Index(url, "//")

	switch {
	case idx == 0:
		return url[2:]
	case idx < 2,
		url[idx-1] != ':',
		strings.Trim(url[:idx-1], schemeChars) != "":
		return url
	}

	return url[idx+2:]
}

// isIPLiteral reports whether the host is an IPv4 dotted-quad or a
// bracketed IPv6 address.
func isIPLiteral(host string) bool {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		addr, err := netip.ParseAddr(host[1 : len(host)-1])

		return err == nil && addr.Is6()
	}

	addr, err := netip.ParseAddr(host)

	return err == nil && addr.Is4()
}

// decodePunycode lowercases a label for matching and decodes ACE
// labels. Decode failures are swallowed, leaving the label as typed:
// lenient inputs must not make extraction fail.
func decodePunycode(label string) string {
	lowered := strings.ToLower(label)

	if strings.HasPrefix(lowered, "xn--") {
		if unicode, err := idna.Lookup.ToUnicode(lowered); err == nil {
			return unicode
		}
	}

	return lowered
}
