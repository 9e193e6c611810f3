package suffixlist

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/john-kurkowski/tldextract/config"
	"github.com/john-kurkowski/tldextract/evt"
	"github.com/john-kurkowski/tldextract/log"
)

// DataUnavailableError is returned by Resolve if every configured
// source failed and the snapshot fallback is disabled.
type DataUnavailableError struct {
	inner error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no suffix list data available: %v", e.inner)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.inner
}

// Source resolves suffix list rules from the configured sources:
// cache first, then each URL or file path in order, then the bundled
// snapshot if fallback is enabled.
type Source struct {
	urls       []string
	extras     []string
	fallback   bool
	cache      *DiskCache
	downloader Downloader
}

// NewSource creates a source from the configuration, downloading
// through HTTP with the configured timeout.
func NewSource(cfg *config.Config) *Source {
	options := []DownloaderOption{
		WithCooldown(cfg.DownloadCooldown.ToDuration()),
	}

	if cfg.CacheFetchTimeout.IsAboveZero() {
		options = append(options, WithTimeout(cfg.CacheFetchTimeout.ToDuration()))
	}

	if cfg.DownloadAttempts > 0 {
		options = append(options, WithAttempts(cfg.DownloadAttempts))
	}

	return NewSourceWithDownloader(cfg, NewDownloader(options...))
}

// NewSourceWithDownloader creates a source with a custom download
// implementation.
func NewSourceWithDownloader(cfg *config.Config, downloader Downloader) *Source {
	return &Source{
		urls:       cfg.SuffixListURLs,
		extras:     cfg.ExtraSuffixes,
		fallback:   cfg.FallbackToSnapshot,
		cache:      NewDiskCache(cfg.CacheDir),
		downloader: downloader,
	}
}

// Resolve produces the rule set. With a warm cache this performs no
// network access.
func (s *Source) Resolve() (*RuleSet, error) {
	return s.resolve(false)
}

// Update forces re-resolution, bypassing the cache-hit shortcut, and
// overwrites the existing cache entry.
func (s *Source) Update() (*RuleSet, error) {
	return s.resolve(true)
}

// ClearCache removes the cached suffix list data.
func (s *Source) ClearCache() error {
	return s.cache.Clear()
}

func (s *Source) resolve(force bool) (*RuleSet, error) {
	var text string

	key := s.cache.Key(s.urls)

	// the scope of the lock ends before parsing: competing callers
	// only contend for the read-check/fetch/write sequence
	err := s.cache.WithLock(key, func() error {
		if !force {
			if entry, err := s.cache.Get(key); err == nil {
				sourceLogger().WithFields(logrus.Fields{
					"key":    key,
					"source": entry.Source,
					"age":    time.Since(entry.FetchedAt).Round(time.Second),
				}).Debug("using cached suffix list")

				text = entry.RuleText

				return nil
			}
		}

		fetched, src, err := s.fetchFirst()
		if err != nil {
			return err
		}

		text = fetched

		err = s.cache.Put(key, &Entry{
			FetchedAt: time.Now(),
			Source:    src,
			RuleText:  fetched,
		})
		if err != nil {
			// non-fatal: extraction proceeds from the in-memory rules
			sourceLogger().Warn("can't write suffix list cache: ", err)
		} else if s.cache.Enabled() {
			evt.Bus().Publish(evt.SuffixListCacheRefreshed, key, len(fetched))
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrLockTimeout) {
			return nil, err
		}

		if !s.fallback {
			return nil, &DataUnavailableError{inner: err}
		}

		sourceLogger().Warn("every suffix list source failed, using the bundled snapshot: ", err)
		evt.Bus().Publish(evt.SuffixListSnapshotUsed)

		// the snapshot is static, caching it would only mask source failures
		text = Snapshot()
	}

	rs, err := ParseRules(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	rs.AddExtras(s.extras)

	return rs, nil
}

// fetchFirst tries each source in order and returns the first
// successfully read suffix list text along with the source identity.
func (s *Source) fetchFirst() (text, src string, err error) {
	if len(s.urls) == 0 {
		return "", "", errors.New("fetching is disabled, no suffix list sources configured")
	}

	var fetchErrs *multierror.Error

	for _, link := range s.urls {
		text, readErr := s.read(link)
		if readErr != nil {
			sourceLogger().WithField("source", link).Warn("source failed, trying next: ", readErr)
			fetchErrs = multierror.Append(fetchErrs, fmt.Errorf("%s: %w", link, readErr))

			continue
		}

		sourceLogger().WithFields(logrus.Fields{
			"source": link,
			"bytes":  len(text),
		}).Info("suffix list fetched")

		return text, link, nil
	}

	return "", "", fetchErrs.ErrorOrNil()
}

func (s *Source) read(link string) (string, error) {
	if isLocal(link) {
		data, err := readFile(link)

		return string(data), err
	}

	return s.downloader.Download(link)
}

func readFile(link string) ([]byte, error) {
	return os.ReadFile(strings.TrimPrefix(link, "file://"))
}

func isLocal(link string) bool {
	return strings.HasPrefix(link, "file://") || !strings.Contains(link, "://")
}

func sourceLogger() *logrus.Entry {
	return log.PrefixedLog("suffix_source")
}
