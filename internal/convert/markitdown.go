// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert pulls plain text out of word-processor documents by piping
// them through the markitdown container image.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/essay-engine/internal/container"
)

// DefaultImage is the markitdown image used when none is configured.
const DefaultImage = "markitdown:latest"

// MarkitdownExtractor converts documents to Markdown text with markitdown.
// It depends on a container.Runtime (docker or podman) injected at
// construction time.
type MarkitdownExtractor struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownExtractor creates an extractor that runs image on rt. It
// verifies that the image exists locally before returning.
func NewMarkitdownExtractor(ctx context.Context, rt container.Runtime, image string) (*MarkitdownExtractor, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownExtractor{runtime: rt, image: image}, nil
}

// Extract streams r through markitdown and returns the text. name supplies
// the file extension markitdown needs to pick a parser for stdin.
func (m *MarkitdownExtractor) Extract(ctx context.Context, name string, r io.Reader) (string, error) {
	var args []string
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext != "" {
		args = []string{"-x", ext}
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, args, r, &out); err != nil {
		return "", fmt.Errorf("extracting %s with markitdown: %w", name, err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("markitdown produced empty output for %s", name)
	}
	return text, nil
}

// Lazy defers runtime detection and image checks until the first Extract
// call, so commands that never see a word-processor attachment do not need
// a container runtime. It is safe for concurrent use; a failed detection is
// retried on the next call.
type Lazy struct {
	Image string

	detect func(context.Context) (container.Runtime, error)

	mu  sync.Mutex
	ext *MarkitdownExtractor
}

// NewLazy returns a Lazy extractor for image.
func NewLazy(image string) *Lazy {
	return &Lazy{Image: image, detect: container.DetectRuntime}
}

// Extract implements the same contract as MarkitdownExtractor.Extract.
func (l *Lazy) Extract(ctx context.Context, name string, r io.Reader) (string, error) {
	ext, err := l.extractor(ctx)
	if err != nil {
		return "", err
	}
	return ext.Extract(ctx, name, r)
}

func (l *Lazy) extractor(ctx context.Context) (*MarkitdownExtractor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ext != nil {
		return l.ext, nil
	}
	rt, err := l.detect(ctx)
	if err != nil {
		return nil, err
	}
	ext, err := NewMarkitdownExtractor(ctx, rt, l.Image)
	if err != nil {
		return nil, err
	}
	l.ext = ext
	return ext, nil
}
