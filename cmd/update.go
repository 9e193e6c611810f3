package cmd

import (
	"github.com/spf13/cobra"

	"github.com/john-kurkowski/tldextract/extractor"
	"github.com/john-kurkowski/tldextract/log"
)

//nolint:gochecknoglobals
var clearCache bool

//nolint:gochecknoglobals
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "force fetch the latest suffix list definitions",
	Args:  cobra.NoArgs,
	RunE:  updateSuffixList,
}

//nolint:gochecknoinits
func init() {
	updateCmd.Flags().BoolVar(&clearCache, "clear", false, "also remove all cached suffix list data first")

	rootCmd.AddCommand(updateCmd)
}

func updateSuffixList(_ *cobra.Command, _ []string) error {
	ext, err := extractor.New(cfg)
	if err != nil {
		return err
	}

	if clearCache {
		if err := ext.ClearCache(); err != nil {
			return err
		}
	}

	if err := ext.Update(); err != nil {
		return err
	}

	log.Log().Info("suffix list definitions updated")

	return nil
}
