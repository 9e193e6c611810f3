// Package extractor splits a hostname or URL-like string into its
// subdomain, registrable domain and public suffix, using the Public
// Suffix List.
package extractor

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/john-kurkowski/tldextract/config"
	"github.com/john-kurkowski/tldextract/log"
	"github.com/john-kurkowski/tldextract/suffixlist"
	"github.com/john-kurkowski/tldextract/trie"
)

// Extractor splits URL-like strings. It is cheap to share: once the
// suffix data is built, extraction is read-only and safe for
// concurrent callers.
type Extractor struct {
	cfg    *config.Config
	source *suffixlist.Source

	buildMux sync.Mutex
	data     atomic.Pointer[suffixData]
}

// suffixData is the immutable product of one source resolution.
type suffixData struct {
	rules *suffixlist.RuleSet
	trie  *trie.Trie
}

// New creates an extractor from the configuration. The suffix data is
// resolved lazily on first extraction, or eagerly if cfg.Prefetch is
// set.
func New(cfg *config.Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		cfg:    cfg,
		source: suffixlist.NewSource(cfg),
	}

	if cfg.Prefetch {
		if _, err := e.getData(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// NewWithSource creates an extractor with a custom suffix list source.
func NewWithSource(cfg *config.Config, source *suffixlist.Source) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Extractor{cfg: cfg, source: source}, nil
}

// Extract splits the input with the configured private-domain
// setting. The returned error can only stem from suffix list
// resolution: for any input string the split itself degrades to
// partial or empty results instead of failing.
func (e *Extractor) Extract(input string) (ExtractResult, error) {
	return e.ExtractWithPrivateDomains(input, e.cfg.IncludePSLPrivateDomains)
}

// ExtractWithPrivateDomains splits the input, overriding the
// configured private-domain setting for this call.
func (e *Extractor) ExtractWithPrivateDomains(input string, includePrivate bool) (ExtractResult, error) {
	data, err := e.getData()
	if err != nil {
		return ExtractResult{}, err
	}

	return split(data.trie, input, includePrivate), nil
}

// TLDs returns all currently active suffixes, respecting the
// private-domain setting and including extra suffixes.
func (e *Extractor) TLDs() ([]string, error) {
	data, err := e.getData()
	if err != nil {
		return nil, err
	}

	return data.rules.Suffixes(e.cfg.IncludePSLPrivateDomains), nil
}

// Update forces a re-fetch of the suffix list, overwriting the cache
// entry, and swaps in the rebuilt trie.
func (e *Extractor) Update() error {
	e.buildMux.Lock()
	defer e.buildMux.Unlock()

	rules, err := e.source.Update()
	if err != nil {
		return err
	}

	e.store(rules)

	return nil
}

// ClearCache removes the on-disk suffix list cache. The current
// in-memory data stays active.
func (e *Extractor) ClearCache() error {
	return e.source.ClearCache()
}

func (e *Extractor) getData() (*suffixData, error) {
	if data := e.data.Load(); data != nil {
		return data, nil
	}

	e.buildMux.Lock()
	defer e.buildMux.Unlock()

	// another caller may have resolved while we waited
	if data := e.data.Load(); data != nil {
		return data, nil
	}

	rules, err := e.source.Resolve()
	if err != nil {
		return nil, err
	}

	return e.store(rules), nil
}

func (e *Extractor) store(rules *suffixlist.RuleSet) *suffixData {
	data := &suffixData{
		rules: rules,
		trie:  rules.BuildTrie(),
	}

	extractorLogger().WithField("rules", rules.Len()).Debug("suffix trie built")

	e.data.Store(data)

	return data
}

// split performs the three-way split against a built trie.
func split(t *trie.Trie, input string, includePrivate bool) ExtractResult {
	host := normalize(input)

	if host.ip != "" {
		return ExtractResult{Domain: host.ip}
	}

	if host.empty() {
		return ExtractResult{}
	}

	reversed := make([]string, len(host.matchLabels))
	for i, label := range host.matchLabels {
		reversed[len(reversed)-1-i] = label
	}

	match := t.Find(reversed, includePrivate)

	// the suffix is reconstructed from the original labels, keeping
	// the casing and encoding of the input
	labels := host.labels
	boundary := len(labels) - match.Labels

	result := ExtractResult{
		Suffix:    strings.Join(labels[boundary:], "."),
		IsPrivate: match.IsPrivate,
	}

	if boundary == 0 {
		// the whole host is itself a suffix: no label is stolen
		// from the suffix to manufacture a domain
		return result
	}

	result.Domain = labels[boundary-1]
	result.Subdomain = strings.Join(labels[:boundary-1], ".")

	return result
}

func extractorLogger() *logrus.Entry {
	return log.PrefixedLog("extractor")
}
