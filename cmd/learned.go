package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avu-sa/winematch/internal/learned"
)

var learnedListLimit int

var learnedCmd = &cobra.Command{
	Use:   "learned",
	Short: "Inspect the learned mapping store",
}

var learnedStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learned store counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := learned.Open(cfg.Store.Driver, cfg.Paths.LearnedStore)
		if err != nil {
			return err
		}
		defer store.Close()

		lookup, entries, err := store.LoadAll(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Entries:     %d\n", len(entries))
		fmt.Printf("Unique keys: %d\n", len(lookup))
		if len(entries) > 0 {
			last := entries[len(entries)-1]
			fmt.Printf("Most recent: %s %s -> %d\n", last.WineName, last.VintageKey, last.ItemNo)
		}
		return nil
	},
}

var learnedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned mappings, most recent last",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := learned.Open(cfg.Store.Driver, cfg.Paths.LearnedStore)
		if err != nil {
			return err
		}
		defer store.Close()

		_, entries, err := store.LoadAll(cmd.Context())
		if err != nil {
			return err
		}

		lo := 0
		if learnedListLimit > 0 && len(entries) > learnedListLimit {
			lo = len(entries) - learnedListLimit
		}
		for _, e := range entries[lo:] {
			note := ""
			if e.Note != "" {
				note = "  (" + e.Note + ")"
			}
			fmt.Printf("%-50s %-6s %8d%s\n", e.WineName, e.VintageKey, e.ItemNo, note)
		}
		return nil
	},
}

func init() {
	learnedListCmd.Flags().IntVar(&learnedListLimit, "limit", 0, "show only the most recent N entries")
	learnedCmd.AddCommand(learnedStatsCmd)
	learnedCmd.AddCommand(learnedListCmd)
	rootCmd.AddCommand(learnedCmd)
}
