// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package request

import (
	"encoding/base64"
	"strings"

	"github.com/pdiddy/essay-engine/pkg/apperrors"
)

// Attachment is the optional source document of a request: nil, Binary, or
// ExtractedText. Only this package's types satisfy it, so a request can never
// carry both a binary document and extracted text.
type Attachment interface {
	kind() string
}

// Binary is a document passed to the service as-is (e.g. a PDF).
type Binary struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (Binary) kind() string { return "binary" }

// ExtractedText is plain text already pulled out of a word-processor file by
// an external extractor.
type ExtractedText struct {
	Name string
	Text string
}

func (ExtractedText) kind() string { return "text" }

// BinaryFromBase64 decodes the base64 form of a binary attachment.
func BinaryFromBase64(name, mimeType, encoded string) (Binary, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Binary{}, apperrors.Wrap(err, apperrors.KindAttachmentUnreadable, "decoding base64 attachment")
	}
	if len(data) == 0 {
		return Binary{}, apperrors.New(apperrors.KindAttachmentUnreadable, "attachment is empty")
	}
	return Binary{Name: name, MIMEType: mimeType, Data: data}, nil
}

// AttachmentKind names att for logs: "none", "binary", or "text".
func AttachmentKind(att Attachment) string {
	if att == nil {
		return "none"
	}
	return att.kind()
}

// hasContent reports whether att carries anything the service can read.
func hasContent(att Attachment) bool {
	switch a := att.(type) {
	case Binary:
		return len(a.Data) > 0
	case ExtractedText:
		return strings.TrimSpace(a.Text) != ""
	default:
		return false
	}
}

// Part is one element of the ordered input payload: BinaryPart or TextPart.
type Part interface {
	isPart()
}

// BinaryPart is an inline typed binary input.
type BinaryPart struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (BinaryPart) isPart() {}

// Base64 returns the standard base64 encoding of the part's bytes.
func (p BinaryPart) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL returns the part as a data: URL.
func (p BinaryPart) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Base64()
}

// TextPart is a plain text input.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}
