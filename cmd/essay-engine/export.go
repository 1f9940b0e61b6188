// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/metrics"
)

var exportCmd = &cobra.Command{
	Use:   "export <essay.json|essay.yaml>",
	Short: "Render a saved essay into export files",
	Long: `Export reads an essay written by "generate --out", checks it against the
essay contract, and writes the requested export files. No generation service
is contacted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		essay, err := readEssay(args[0])
		if err != nil {
			return err
		}

		names, _ := cmd.Flags().GetStringSlice("formats")
		if len(names) == 0 {
			names = appConfig.Export.Formats
		}
		formats, err := parseFormats(names)
		if err != nil {
			return err
		}
		labelName, _ := cmd.Flags().GetString("labels")
		if labelName == "" {
			labelName = appConfig.Export.Labels
		}
		labels, err := export.LabelsFor(labelName)
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = appConfig.Export.Dir
		}

		m := metrics.New()
		defer writeMetrics(m)
		paths, err := writeExports(cmd.Context(), dir, formats, essay, labels, m)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringSlice("formats", nil, "export formats: ris, doc, bib, txt, or all (default from config)")
	exportCmd.Flags().String("labels", "", "document heading language: en or id")
	exportCmd.Flags().String("dir", "", "output directory")

	rootCmd.AddCommand(exportCmd)
}
