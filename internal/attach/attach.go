// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attach turns a user-supplied file into a request attachment. PDFs
// are passed to the service as binary input; word-processor files are
// converted to text first; plain text and Markdown are read as-is.
package attach

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/essay-engine/internal/request"
	"github.com/pdiddy/essay-engine/pkg/apperrors"
)

// MaxSize bounds attachment files.
const MaxSize = 20 << 20

const mimePDF = "application/pdf"

// Extractor pulls plain text out of a word-processor document.
type Extractor interface {
	Extract(ctx context.Context, name string, r io.Reader) (string, error)
}

// Load reads the file at path and builds an attachment from it.
func Load(ctx context.Context, path string, ext Extractor) (request.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindAttachmentUnreadable, "reading attachment")
	}
	if info.Size() > MaxSize {
		return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "attachment %s is larger than %d MiB", filepath.Base(path), MaxSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindAttachmentUnreadable, "reading attachment")
	}
	return FromBytes(ctx, filepath.Base(path), data, ext)
}

// FromBytes builds an attachment from a file's name and content. The
// extension selects the handling: .pdf becomes Binary, .docx is run through
// ext, .txt and .md become ExtractedText. Anything else, an empty file, or an
// extractor failure is reported as AttachmentUnreadable.
func FromBytes(ctx context.Context, name string, data []byte, ext Extractor) (request.Attachment, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "attachment %s is empty", name)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "%s is not a PDF document", name)
		}
		return request.Binary{Name: name, MIMEType: mimePDF, Data: data}, nil

	case ".docx":
		if ext == nil {
			return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "no text extractor configured for %s", name)
		}
		text, err := ext.Extract(ctx, name, bytes.NewReader(data))
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindAttachmentUnreadable, fmt.Sprintf("extracting text from %s", name))
		}
		if strings.TrimSpace(text) == "" {
			return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "no text found in %s", name)
		}
		return request.ExtractedText{Name: name, Text: text}, nil

	case ".txt", ".md":
		if !utf8.Valid(data) {
			return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable, "%s is not UTF-8 text", name)
		}
		return request.ExtractedText{Name: name, Text: string(data)}, nil

	default:
		return nil, apperrors.Newf(apperrors.KindAttachmentUnreadable,
			"unsupported attachment type %q (want .pdf, .docx, .txt or .md)", filepath.Ext(name))
	}
}
