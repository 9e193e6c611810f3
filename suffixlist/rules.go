package suffixlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/idna"

	"github.com/john-kurkowski/tldextract/trie"
)

const (
	beginPrivateMarker = "===BEGIN PRIVATE DOMAINS==="
	endPrivateMarker   = "===END PRIVATE DOMAINS==="
)

// Rule is one suffix list rule. Labels are ordered TLD first, so the
// rule "co.uk" carries ["uk", "co"]. Wildcard rules keep the literal
// "*" label.
type Rule struct {
	Labels []string
	Kind   trie.Kind
	Origin trie.Origin
}

// Suffix returns the rule in suffix list notation.
func (r Rule) Suffix() string {
	labels := make([]string, len(r.Labels))
	for i, label := range r.Labels {
		labels[len(labels)-1-i] = label
	}

	suffix := strings.Join(labels, ".")
	if r.Kind == trie.Exception {
		suffix = "!" + suffix
	}

	return suffix
}

// RuleSet is a parsed suffix list.
type RuleSet struct {
	rules []Rule
}

// ParseRules reads suffix list text. Blank lines and comments are
// skipped; the private-domains section markers switch the origin of
// the following rules. Rules before any marker count as ICANN.
func ParseRules(r io.Reader) (*RuleSet, error) {
	rs := &RuleSet{}
	origin := trie.ICANN

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "//") {
			switch {
			case strings.Contains(line, beginPrivateMarker):
				origin = trie.Private
			case strings.Contains(line, endPrivateMarker):
				origin = trie.ICANN
			}

			continue
		}

		// a rule is everything up to the first whitespace
		line = strings.Fields(line)[0]

		rs.add(line, origin)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("can't read suffix list: %w", err)
	}

	return rs, nil
}

// AddExtras merges user-supplied suffixes. They are always active,
// regardless of the private-domain toggle.
func (rs *RuleSet) AddExtras(suffixes []string) {
	for _, suffix := range suffixes {
		rs.add(suffix, trie.Extra)
	}
}

func (rs *RuleSet) add(suffix string, origin trie.Origin) {
	kind := trie.Exact

	switch {
	case strings.HasPrefix(suffix, "!"):
		kind = trie.Exception
		suffix = suffix[1:]
	case strings.HasPrefix(suffix, "*."):
		kind = trie.Wildcard
	}

	parts := strings.Split(suffix, ".")

	labels := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "" {
			return // malformed rule, e.g. a leading or trailing dot
		}

		labels = append(labels, normalizeLabel(parts[i]))
	}

	rs.rules = append(rs.rules, Rule{Labels: labels, Kind: kind, Origin: origin})
}

// normalizeLabel brings a rule label into the same space lookups use:
// unicode form, lowercased. A label that fails IDNA mapping is kept
// lowercased as-is.
func normalizeLabel(label string) string {
	if label == "*" {
		return label
	}

	if unicode, err := idna.Lookup.ToUnicode(label); err == nil {
		return strings.ToLower(unicode)
	}

	return strings.ToLower(label)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rules returns all rules in parse order.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Suffixes returns the active suffixes in suffix list notation.
// Private rules are only included if includePrivate is set; extra
// rules always are.
func (rs *RuleSet) Suffixes(includePrivate bool) []string {
	result := make([]string, 0, len(rs.rules))

	for _, rule := range rs.rules {
		if rule.Origin == trie.Private && !includePrivate {
			continue
		}

		result = append(result, rule.Suffix())
	}

	return result
}

// BuildTrie builds the lookup trie. The trie carries every origin;
// filtering private rules happens per lookup.
func (rs *RuleSet) BuildTrie() *trie.Trie {
	t := trie.NewTrie()

	for _, rule := range rs.rules {
		t.Insert(rule.Labels, rule.Kind, rule.Origin)
	}

	return t
}
