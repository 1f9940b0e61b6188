// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/essay-engine/internal/attach"
	"github.com/pdiddy/essay-engine/internal/convert"
	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/metrics"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// errGenerationFailed is the only failure text shown for a failed attempt.
// The log line carries the error kind.
var errGenerationFailed = errors.New("generation failed, please try again")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an essay and export it",
	Long: `Generate builds one request from the flags (or a YAML task file), sends
it to the configured generation service exactly once, and writes the
resulting essay and its export files.

An assignment document can be attached with --attach: PDF files are sent
as-is, .docx files are converted to text with markitdown, and .txt or .md
files are sent as text.`,
	RunE: runGenerate,
}

func init() {
	addRequestFlags(generateCmd)

	f := generateCmd.Flags()
	f.String("attach", "", "assignment document to attach (.pdf, .docx, .txt, .md)")
	f.String("out", "", "write the essay as JSON or YAML (by extension); - for stdout")
	f.String("export-dir", "", "directory for export files (default from config)")
	f.StringSlice("formats", nil, "export formats: ris, doc, bib, txt, or all (default from config)")
	f.String("labels", "", "document heading language: en or id (default from config)")

	_ = viper.BindPFlag("export.dir", f.Lookup("export-dir"))
	_ = viper.BindPFlag("export.formats", f.Lookup("formats"))
	_ = viper.BindPFlag("export.labels", f.Lookup("labels"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := requestConfig(cmd)
	if err != nil {
		return err
	}
	formats, err := parseFormats(appConfig.Export.Formats)
	if err != nil {
		return err
	}
	labels, err := export.LabelsFor(appConfig.Export.Labels)
	if err != nil {
		return err
	}

	var att request.Attachment
	if path, _ := cmd.Flags().GetString("attach"); path != "" {
		att, err = attach.Load(ctx, path, convert.NewLazy(appConfig.Converter.Image))
		if err != nil {
			return err
		}
	}

	req, err := request.NewBuilder(appConfig.Writing).Build(cfg, att)
	if err != nil {
		return err
	}

	m := metrics.New()
	inv, cleanup, err := newInvoker(m)
	if err != nil {
		return err
	}
	defer cleanup()
	defer writeMetrics(m)

	fmt.Fprintf(os.Stderr, "Generating %d-page %s (%s, %s) with %s\n",
		cfg.PageCount, cfg.Category, cfg.Style, cfg.Shape, inv.Backend.Model())

	essay, err := inv.Invoke(ctx, req)
	if err != nil {
		return errGenerationFailed
	}
	fmt.Fprintf(os.Stderr, "Generated %q: %d sections, %d references\n",
		essay.Title, len(essay.Body), len(essay.References))

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := writeEssay(out, essay); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintln(os.Stderr, "Wrote", out)
		}
	}

	paths, err := writeExports(ctx, appConfig.Export.Dir, formats, essay, labels, m)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(os.Stderr, "Wrote", p)
	}
	return nil
}

// addRequestFlags registers the per-attempt selections on cmd.
func addRequestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("prompt", "", "task description")
	f.String("style", string(types.StyleFormal), "writing style: formal, critical, practical")
	f.String("category", string(types.CategoryEssay), "task category: essay, case-study, discussion")
	f.String("shape", string(types.ShapeNarrative), "output shape: narrative, bulleted")
	f.Int("intl-refs", 5, "minimum international journal references")
	f.Int("national-refs", 3, "minimum national journal references")
	f.Int("pages", 5, "target length in pages (400 words per page)")
	f.String("task", "", "YAML task file holding the request selections (flags override it)")
}

// requestConfig starts from the default selections, applies the task file
// and then any flag the user set explicitly.
func requestConfig(cmd *cobra.Command) (types.RequestConfig, error) {
	cfg := types.DefaultRequestConfig()

	if path, _ := cmd.Flags().GetString("task"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading task file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing task file %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") {
		cfg.Prompt, _ = flags.GetString("prompt")
	}
	if flags.Changed("style") {
		s, _ := flags.GetString("style")
		cfg.Style = types.WritingStyle(s)
	}
	if flags.Changed("category") {
		s, _ := flags.GetString("category")
		cfg.Category = types.TaskCategory(s)
	}
	if flags.Changed("shape") {
		s, _ := flags.GetString("shape")
		cfg.Shape = types.OutputShape(s)
	}
	if flags.Changed("intl-refs") {
		cfg.InternationalRefs, _ = flags.GetInt("intl-refs")
	}
	if flags.Changed("national-refs") {
		cfg.NationalRefs, _ = flags.GetInt("national-refs")
	}
	if flags.Changed("pages") {
		cfg.PageCount, _ = flags.GetInt("pages")
	}
	return cfg, nil
}

// writeMetrics dumps the run's collectors to the configured textfile.
func writeMetrics(m *metrics.Collectors) {
	if appConfig.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(appConfig.MetricsFile); err != nil {
		logger.Warn("writing metrics file", "path", appConfig.MetricsFile, "error", err)
	}
}
