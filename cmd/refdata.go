package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avu-sa/winematch/internal/refdata"
)

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Work with the reference tables",
}

var refdataCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the catalog and offer list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, offers, err := refdata.Load(cfg.Paths.Catalog, cfg.Paths.Offers)
		if err != nil {
			return err
		}

		fmt.Printf("Catalog: %s\n", cfg.Paths.Catalog)
		fmt.Printf("  records: %d\n", catalog.Len())
		fmt.Printf("Offers:  %s\n", cfg.Paths.Offers)
		fmt.Printf("  records: %d\n", offers.Len())
		return nil
	},
}

func init() {
	refdataCmd.AddCommand(refdataCheckCmd)
	rootCmd.AddCommand(refdataCmd)
}
