// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/essay-engine/internal/export"
	"github.com/pdiddy/essay-engine/internal/generate"
	"github.com/pdiddy/essay-engine/internal/journal"
	"github.com/pdiddy/essay-engine/internal/metrics"
	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/internal/secrets"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// newInvoker wires the configured backend, metrics and journal together. The
// returned cleanup closes the journal.
func newInvoker(m *metrics.Collectors) (*generate.Invoker, func(), error) {
	key := appConfig.AI.APIKey
	if key == "" {
		k, err := loadedSecrets.Require(secrets.DefaultDir, generate.SecretName(appConfig.AI.Provider))
		if err != nil {
			return nil, nil, err
		}
		key = k
	}

	backend, err := generate.New(appConfig.AI, key)
	if err != nil {
		return nil, nil, err
	}

	inv := &generate.Invoker{Backend: backend, Logger: logger, Metrics: m}
	cleanup := func() {}
	if appConfig.Journal.Path != "" {
		j, err := journal.Open(appConfig.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening journal: %w", err)
		}
		inv.Journal = j
		cleanup = func() { j.Close() }
	}
	return inv, cleanup, nil
}

// parseFormats resolves names such as "doc,ris" into export formats. "all"
// selects every format.
func parseFormats(names []string) ([]export.Format, error) {
	var out []export.Format
	seen := make(map[export.Format]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.EqualFold(part, "all") {
				return export.Formats, nil
			}
			f, err := export.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// writeExports renders essay in every format and saves the files into dir
// concurrently. Paths come back in format order.
func writeExports(ctx context.Context, dir string, formats []export.Format, essay *types.Essay,
	labels export.Labels, m *metrics.Collectors) ([]string, error) {
	paths := make([]string, len(formats))
	g, _ := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			file, err := export.Render(f, essay, labels)
			if err != nil {
				return err
			}
			path, err := export.WriteFile(dir, file)
			if err != nil {
				return err
			}
			if m != nil {
				m.ObserveExport(string(f))
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// isYAML reports whether path has a YAML extension.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readEssay loads a saved essay (JSON or YAML by extension) and checks it
// against the essay contract.
func readEssay(path string) (*types.Essay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading essay: %w", err)
	}

	raw := data
	if isYAML(path) {
		var essay types.Essay
		if err := yaml.Unmarshal(data, &essay); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		// An omitted YAML list is an empty list, not a JSON null.
		if essay.Body == nil {
			essay.Body = []types.BodySection{}
		}
		if essay.References == nil {
			essay.References = []types.Reference{}
		}
		raw, err = json.Marshal(&essay)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", path, err)
		}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var essay types.Essay
	if err := request.EssayContract().Decode(v, &essay); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &essay, nil
}

// writeEssay saves essay to path as YAML or indented JSON. "-" writes JSON
// to stdout.
func writeEssay(path string, essay *types.Essay) error {
	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(essay); err != nil {
			return fmt.Errorf("encoding essay: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding essay: %w", err)
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(essay); err != nil {
			return fmt.Errorf("encoding essay: %w", err)
		}
	}

	if path == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing essay: %w", err)
	}
	return nil
}
