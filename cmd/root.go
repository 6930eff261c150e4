package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avu-sa/winematch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "winematch",
	Short: "CHF price-list conversion and catalog reconciliation",
	Long:  "Extracts prices from free-text wine offers, matches them against the stock catalog and offer list, converts them to EUR, and learns confirmed name-to-item mappings over time.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
