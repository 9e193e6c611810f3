package trie

// Kind describes how a suffix rule matches.
type Kind uint8

const (
	// Exact matches the rule's labels literally
	Exact Kind = iota

	// Wildcard matches any single label at the "*" position
	Wildcard

	// Exception carves a name out of an otherwise-matching wildcard rule
	Exception
)

func (k Kind) String() string {
	names := [...]string{"exact", "wildcard", "exception"}

	return names[k]
}

// Origin is the section of the suffix list a rule comes from.
type Origin uint8

const (
	// ICANN rules are always active
	ICANN Origin = iota

	// Private rules are only active if private domains are enabled
	Private

	// Extra rules are user-supplied and always active
	Extra
)

func (o Origin) String() string {
	names := [...]string{"icann", "private", "extra"}

	return names[o]
}
