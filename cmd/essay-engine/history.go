// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/essay-engine/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation attempts",
	Long: `History reads the attempt journal. It lists the most recent attempts,
or with --summary prints totals by outcome, error kind and provider.
--yaml dumps the attempts as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Journal.Path == "" {
			return fmt.Errorf("journal disabled: set journal.path in essay-engine.yaml")
		}
		j, err := journal.Open(appConfig.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()

		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return j.ExportYAML(ctx, os.Stdout, limit)
		}

		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			s, err := j.Summarize(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Attempts: %d (%d succeeded, %d failed)\n", s.Total, s.Succeeded, s.Failed)
			if s.Succeeded > 0 {
				fmt.Printf("Mean duration: %s\n", s.MeanDuration)
			}
			printCounts("By provider", s.ByProvider)
			printCounts("By error kind", s.ByKind)
			return nil
		}

		attempts, err := j.Recent(ctx, limit)
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts recorded.")
			return nil
		}
		for _, a := range attempts {
			status := a.Outcome
			if a.ErrorKind != "" {
				status += " (" + a.ErrorKind + ")"
			}
			fmt.Printf("%s  %s  %-9s %s/%s  %s %s %s, %dp  %s\n",
				a.StartedAt.Local().Format("2006-01-02 15:04"), shortID(a.ID), a.Provider, a.Model, a.AttachmentKind,
				a.Style, a.Category, a.Shape, a.Pages, status)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of attempts to show")
	historyCmd.Flags().Bool("summary", false, "print aggregate counts instead of attempts")
	historyCmd.Flags().Bool("yaml", false, "dump attempts as YAML")

	rootCmd.AddCommand(historyCmd)
}
