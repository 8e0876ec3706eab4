package main

import (
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Extract brand DNA from a website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		_, uc, err := newUsecases(ctx)
		if err != nil {
			return err
		}
		defer uc.Close()

		info, err := uc.Brand.ScrapeBrandInfo(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		renderBrand(cmd.OutOrStdout(), info)
		return nil
	},
}
