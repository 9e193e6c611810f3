package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"

	"github.com/john-kurkowski/tldextract/log"
)

// PublicSuffixListURLs are the default suffix list sources: the latest
// version of the Mozilla Public Suffix List and its mirror.
// nolint:gochecknoglobals
var PublicSuffixListURLs = []string{
	"https://publicsuffix.org/list/public_suffix_list.dat",
	"https://raw.githubusercontent.com/publicsuffix/list/master/public_suffix_list.dat",
}

// Config is the configuration of the extractor
type Config struct {
	SuffixListURLs           []string   `yaml:"suffixListUrls" default:"[\"https://publicsuffix.org/list/public_suffix_list.dat\", \"https://raw.githubusercontent.com/publicsuffix/list/master/public_suffix_list.dat\"]"`
	CacheDir                 string     `yaml:"cacheDir"`
	FallbackToSnapshot       bool       `yaml:"fallbackToSnapshot" default:"true"`
	CacheFetchTimeout        Duration   `yaml:"cacheFetchTimeout" default:"10s"`
	DownloadAttempts         uint       `yaml:"downloadAttempts" default:"3"`
	DownloadCooldown         Duration   `yaml:"downloadCooldown" default:"500ms"`
	ExtraSuffixes            []string   `yaml:"extraSuffixes"`
	IncludePSLPrivateDomains bool       `yaml:"includePSLPrivateDomains"`
	Prefetch                 bool       `yaml:"prefetch"`
	Log                      log.Config `yaml:"log"`
}

// NewConfig returns a config with default values
func NewConfig() *Config {
	cfg := Config{}
	if err := defaults.Set(&cfg); err != nil {
		log.Log().Fatal("can't apply default values: ", err)
	}

	return &cfg
}

// LoadConfig parses the config file at the given path. An empty path
// returns the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file '%s': %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("wrong file structure: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects a configuration which disables every way of
// obtaining suffix list data.
func (cfg *Config) Validate() error {
	if len(cfg.SuffixListURLs) == 0 && cfg.CacheDir == "" && !cfg.FallbackToSnapshot {
		return errors.New("all suffix list data sources are disabled: " +
			"provide suffixListUrls, a cacheDir or enable fallbackToSnapshot")
	}

	return nil
}

// DefaultCacheDir returns the user cache location for suffix list data,
// or an empty string (= caching disabled) if none can be determined.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}

	return filepath.Join(base, "tldextract")
}
