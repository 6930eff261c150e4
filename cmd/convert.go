package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/avu-sa/winematch/internal/learned"
	"github.com/avu-sa/winematch/internal/pipeline"
)

var (
	convertInput   string
	convertDryRun  bool
	convertNoLearn bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert CHF prices in a text file to EUR",
	Long: `Reads the input text, extracts every CHF price with its wine context,
resolves each one against the catalog and offer list, and writes the
converted text, a results report, and a corrections file for matches
that need review.

Examples:
  # Convert the configured input file
  winematch convert

  # Convert a specific file without writing anything
  winematch convert --input offers_june.txt --dry-run

  # Convert but do not record confirmed matches
  winematch convert --no-learn`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if convertInput != "" {
			cfg.Paths.Input = convertInput
		}

		store, err := learned.Open(cfg.Store.Driver, cfg.Paths.LearnedStore)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := pipeline.New(cfg, store).Run(ctx, pipeline.RunOptions{
			DryRun:  convertDryRun,
			NoLearn: convertNoLearn,
		})
		if err != nil {
			return eris.Wrap(err, "convert: run")
		}

		if convertDryRun {
			out, err := json.MarshalIndent(result.Items, "", "  ")
			if err != nil {
				return eris.Wrap(err, "convert: encode items")
			}
			fmt.Println(string(out))
			fmt.Println("Dry run: no files written.")
			return nil
		}

		fmt.Print(result.Report)

		fmt.Printf("\nConverted text: %s\n", result.ConvertedPath)
		fmt.Printf("Report:         %s\n", result.ReportPath)
		if result.CorrectionsPath != "" {
			fmt.Printf("Needs review:   %s\n", result.CorrectionsPath)
		}
		if result.LearnedAdded > 0 || result.LearnedSkipped > 0 {
			fmt.Printf("Learned:        %d new, %d already known\n", result.LearnedAdded, result.LearnedSkipped)
		}

		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertInput, "input", "", "input text file (overrides configuration)")
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "resolve and print matches as JSON without writing files or learning")
	convertCmd.Flags().BoolVar(&convertNoLearn, "no-learn", false, "write outputs but skip the learned store update")
	rootCmd.AddCommand(convertCmd)
}
