package extractor

import (
	"sync"

	"github.com/john-kurkowski/tldextract/config"
)

// nolint:gochecknoglobals
var (
	defaultOnce      sync.Once
	defaultExtractor *Extractor
)

// Default returns a shared extractor with default configuration:
// the official suffix list URLs, the user cache dir and snapshot
// fallback enabled. Construct your own Extractor to deviate.
func Default() *Extractor {
	defaultOnce.Do(func() {
		cfg := config.NewConfig()
		cfg.CacheDir = config.DefaultCacheDir()

		// the default config always has at least the snapshot source
		defaultExtractor, _ = New(cfg)
	})

	return defaultExtractor
}

// Extract splits the input using the Default extractor.
func Extract(input string) (ExtractResult, error) {
	return Default().Extract(input)
}
