package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/john-kurkowski/tldextract/config"
	"github.com/john-kurkowski/tldextract/log"
)

// cacheTimeoutEnv overrides the configured fetch timeout, kept for
// compatibility with other tldextract implementations.
const cacheTimeoutEnv = "TLDEXTRACT_CACHE_TIMEOUT"

//nolint:gochecknoglobals
var (
	version   = "undefined"
	buildTime = "undefined"

	configPath     string
	cacheDir       string
	suffixListURLs []string
	privateDomains bool
	noFallback     bool
	jsonOutput     bool

	cfg *config.Config
)

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "tldextract fqdn|url ...",
	Short: "tldextract separates a URL into subdomain, domain and public suffix",
	Long: `Accurately separates a URL's subdomain, domain, and public suffix,
using the Public Suffix List data from https://publicsuffix.org.

Complete documentation is available at https://github.com/john-kurkowski/tldextract`,
	Args: cobra.MinimumNArgs(1),
	RunE: extractURLs,
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", config.DefaultCacheDir(),
		"suffix list caching folder, empty disables caching")
	rootCmd.PersistentFlags().StringSliceVar(&suffixListURLs, "suffix-list-url", nil,
		"alternate URL or local file for suffix list definitions")
	rootCmd.PersistentFlags().BoolVarP(&privateDomains, "private-domains", "p", false,
		"include private domains")
	rootCmd.PersistentFlags().BoolVar(&noFallback, "no-fallback-to-snapshot", false,
		"don't fall back to the bundled snapshot of the suffix list")

	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "output one JSON object per input")
}

func initConfig() {
	var err error

	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		log.Log().Fatal("can't load config: ", err)
	}

	// flags win over the config file
	if flagChanged("cache-dir") || configPath == "" {
		cfg.CacheDir = cacheDir
	}

	if len(suffixListURLs) > 0 {
		cfg.SuffixListURLs = suffixListURLs
	}

	if privateDomains {
		cfg.IncludePSLPrivateDomains = true
	}

	if noFallback {
		cfg.FallbackToSnapshot = false
	}

	if timeout, ok := os.LookupEnv(cacheTimeoutEnv); ok {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.CacheFetchTimeout = config.Duration(d)
		}
	}

	log.ConfigureLogger(cfg.Log)
}

func flagChanged(name string) bool {
	return rootCmd.PersistentFlags().Changed(name)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
