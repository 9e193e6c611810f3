package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john-kurkowski/tldextract/extractor"
)

// extractURLs implements the root command: each positional argument
// is split and written as "subdomain domain suffix", or as JSON.
func extractURLs(cmd *cobra.Command, args []string) error {
	ext, err := extractor.New(cfg)
	if err != nil {
		return err
	}

	for _, input := range args {
		result, err := ext.Extract(input)
		if err != nil {
			return err
		}

		if jsonOutput {
			line, err := json.Marshal(result)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(line))

			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), strings.Join([]string{
			result.Subdomain, result.Domain, result.Suffix,
		}, " "))
	}

	return nil
}
