// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package request turns a user's selections and optional attachment into a
// generation request: a system instruction, the output contract the reply
// must satisfy, and the ordered input parts.
package request

import (
	"fmt"
	"strings"

	"github.com/pdiddy/essay-engine/pkg/apperrors"
	"github.com/pdiddy/essay-engine/pkg/types"
)

// AttachmentMarker separates the user's prompt from extracted attachment text.
const AttachmentMarker = "[THE FOLLOWING IS THE CONTENT OF THE ATTACHED REFERENCE DOCUMENT TO ANALYZE]:"

// DefaultAttachmentPrompt replaces an empty prompt when an attachment is present.
const DefaultAttachmentPrompt = "Please complete the assignment based on the instructions contained in the attached document."

// Request is a fully built generation request.
type Request struct {
	// Config is the normalized configuration the request was built from.
	Config types.RequestConfig

	// Instruction is the system directive.
	Instruction string

	// Contract is the output shape the reply must honor.
	Contract *Contract

	// Parts is the ordered input payload. A BinaryPart, when present, comes
	// first; the last part is always the TextPart.
	Parts []Part

	// AttachmentKind is "none", "binary", or "text".
	AttachmentKind string
}

// Builder builds requests for one writer persona.
type Builder struct {
	Discipline string
	Language   string
}

// NewBuilder returns a Builder for the given persona settings. Empty values
// take types.DefaultWritingConfig.
func NewBuilder(cfg types.WritingConfig) *Builder {
	def := types.DefaultWritingConfig()
	b := &Builder{Discipline: cfg.Discipline, Language: cfg.Language}
	if b.Discipline == "" {
		b.Discipline = def.Discipline
	}
	if b.Language == "" {
		b.Language = def.Language
	}
	return b
}

// Build validates cfg and att and assembles the request. It fails with
// apperrors.ErrInvalidRequest when there is neither a prompt nor attachment
// content, or when cfg is out of range.
func (b *Builder) Build(cfg types.RequestConfig, att Attachment) (*Request, error) {
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" && !hasContent(att) {
		return nil, apperrors.New(apperrors.KindInvalidRequest, "a prompt or an attachment is required")
	}

	norm, err := cfg.Normalize()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInvalidRequest, "invalid configuration")
	}

	contract := EssayContract()
	instruction, err := renderInstruction(b, norm, contract)
	if err != nil {
		return nil, fmt.Errorf("rendering instruction: %w", err)
	}

	if prompt == "" {
		prompt = DefaultAttachmentPrompt
	}
	norm.Prompt = prompt

	return &Request{
		Config:         norm,
		Instruction:    instruction,
		Contract:       contract,
		Parts:          buildParts(prompt, att),
		AttachmentKind: AttachmentKind(att),
	}, nil
}

// buildParts lays out the payload: binary first, text last, with extracted
// text appended to the prompt after AttachmentMarker.
func buildParts(prompt string, att Attachment) []Part {
	var parts []Part
	text := prompt
	switch a := att.(type) {
	case Binary:
		if len(a.Data) > 0 {
			parts = append(parts, BinaryPart{Name: a.Name, MIMEType: a.MIMEType, Data: a.Data})
		}
	case ExtractedText:
		if strings.TrimSpace(a.Text) != "" {
			text = prompt + "\n\n" + AttachmentMarker + "\n" + a.Text
		}
	}
	return append(parts, TextPart{Text: text})
}
