package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avu-sa/winematch/internal/learned"
)

var correctionsFile string

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "Work with hand-edited correction files",
}

var correctionsApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a corrections file to the learned store",
	Long: `Reads a reviewed corrections file and records every filled-in item
number in the learned store. Without --file, the most recent
CORRECTIONS_NEEDED_*.txt in the output directory is used.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path := correctionsFile
		if path == "" {
			var err error
			path, err = learned.FindLatestCorrections(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			zap.L().Info("using most recent corrections file", zap.String("path", path))
		}

		entries, err := learned.ParseCorrections(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No corrected entries found in", path)
			return nil
		}

		store, err := learned.Open(cfg.Store.Driver, cfg.Paths.LearnedStore)
		if err != nil {
			return err
		}
		defer store.Close()

		added, skipped, err := store.Append(ctx, entries)
		if err != nil {
			return eris.Wrap(err, "corrections: apply")
		}

		fmt.Printf("Applied %s: %d added, %d already known\n", path, added, skipped)
		return nil
	},
}

func init() {
	correctionsApplyCmd.Flags().StringVar(&correctionsFile, "file", "", "corrections file (default: newest in the output directory)")
	correctionsCmd.AddCommand(correctionsApplyCmd)
	rootCmd.AddCommand(correctionsCmd)
}
