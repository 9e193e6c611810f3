package trie

// Trie stores public suffix rules and finds the longest rule matching
// a hostname.
//
// Nodes are keyed by label, starting with the TLD: the rule "co.uk"
// lives at root -> "uk" -> "co". A literal "*" key matches any single
// label during lookup. A node can terminate several rules of
// different kinds and origins.
//
// The trie is immutable once built: origin filtering (include or
// exclude private rules) happens per lookup, not by rebuilding.
type Trie struct {
	root node
}

func NewTrie() *Trie {
	return &Trie{}
}

func (t *Trie) IsEmpty() bool {
	return t.root.children == nil && len(t.root.rules) == 0
}

// Insert adds a rule. Labels are ordered TLD first ("co.uk" is
// inserted as ["uk", "co"]); wildcard rules contain a literal "*"
// label.
func (t *Trie) Insert(labels []string, kind Kind, origin Origin) {
	if len(labels) == 0 {
		return
	}

	t.root.insert(labels, kind, origin)
}

// Find returns the deepest rule matching the labels, which are
// ordered rightmost (TLD) first and already lowercased. Private rules
// are only considered if includePrivate is set.
//
// Find never fails: Match.Labels is 0 if no rule of an enabled origin
// matches.
func (t *Trie) Find(labels []string, includePrivate bool) Match {
	var best candidate

	t.root.find(labels, 0, includePrivate, &best)

	if best.depth == 0 {
		return Match{}
	}

	matched := best.depth
	if best.kind == Exception {
		// an exception carves its own label out of the suffix
		matched--
	}

	return Match{
		Labels:    matched,
		IsPrivate: best.origin == Private,
	}
}

// Match is the result of a suffix lookup.
type Match struct {
	// Labels is the number of labels forming the public suffix
	Labels int

	// IsPrivate is true if the winning rule is from the private section
	IsPrivate bool
}

type rule struct {
	kind   Kind
	origin Origin
}

type candidate struct {
	rule
	depth int
}

// replaces returns true if c wins over the current best. Longer
// matches always win; at equal depth an exception overrides a
// wildcard or exact rule.
func (c candidate) replaces(best candidate) bool {
	if c.depth != best.depth {
		return c.depth > best.depth
	}

	return c.kind == Exception && best.kind != Exception
}

type node struct {
	children map[string]*node
	rules    []rule
}

func (n *node) insert(labels []string, kind Kind, origin Origin) {
	for _, label := range labels {
		if n.children == nil {
			n.children = make(map[string]*node, 1)
		}

		child, ok := n.children[label]
		if !ok {
			child = &node{}
			n.children[label] = child
		}

		n = child
	}

	for _, r := range n.rules {
		if r.kind == kind && r.origin == origin {
			return // duplicate rule
		}
	}

	n.rules = append(n.rules, rule{kind: kind, origin: origin})
}

func (n *node) find(labels []string, depth int, includePrivate bool, best *candidate) {
	for _, r := range n.rules {
		if r.origin == Private && !includePrivate {
			continue
		}

		c := candidate{rule: r, depth: depth}
		if c.replaces(*best) {
			*best = c
		}
	}

	if depth == len(labels) || n.children == nil {
		return
	}

	// the exact child is visited first so it wins depth ties
	// against the wildcard branch
	if child, ok := n.children[labels[depth]]; ok {
		child.find(labels, depth+1, includePrivate, best)
	}

	if child, ok := n.children["*"]; ok {
		child.find(labels, depth+1, includePrivate, best)
	}
}
