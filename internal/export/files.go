// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export encodes a generated essay into downloadable files: a RIS
// bibliography for reference managers, a Word-compatible document, a BibTeX
// bibliography, and plain text.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// Format names an export encoding.
type Format string

const (
	FormatRIS    Format = "ris"
	FormatDoc    Format = "doc"
	FormatBibTeX Format = "bib"
	FormatText   Format = "txt"
)

// Formats lists every supported format.
var Formats = []Format{FormatRIS, FormatDoc, FormatBibTeX, FormatText}

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// File is an encoded artifact ready to be saved or served.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Render encodes essay in format f. labels only affects FormatDoc.
func Render(f Format, essay *types.Essay, labels Labels) (File, error) {
	if essay == nil {
		return File{}, fmt.Errorf("rendering %s: nil essay", f)
	}
	switch f {
	case FormatRIS:
		return File{Name: "referensi_mendeley.ris", MIMEType: "application/x-research-info-systems",
			Data: EncodeRIS(essay.References)}, nil
	case FormatDoc:
		data, err := EncodeDoc(essay, labels)
		if err != nil {
			return File{}, err
		}
		return File{Name: "tugas_manajemen_pemasaran.doc", MIMEType: "application/msword", Data: data}, nil
	case FormatBibTeX:
		return File{Name: "referensi.bib", MIMEType: "application/x-bibtex",
			Data: EncodeBibTeX(essay.References)}, nil
	case FormatText:
		return File{Name: "tugas.txt", MIMEType: "text/plain; charset=utf-8",
			Data: EncodeText(essay)}, nil
	default:
		return File{}, fmt.Errorf("unknown export format %q", f)
	}
}

// WriteFile saves f into dir, creating dir when needed, and returns the
// written path.
func WriteFile(dir string, f File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
