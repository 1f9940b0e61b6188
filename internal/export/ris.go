// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// EncodeRIS renders refs as RIS records in input order. Each record lists
// TY, AU, PY and TI, then T2 for journal articles or PB otherwise, then
// whichever of VL, IS, SP, DO and UR are present, and closes with an ER line
// followed by one blank line.
func EncodeRIS(refs []types.Reference) []byte {
	var b strings.Builder
	for _, r := range refs {
		risLine(&b, "TY", string(r.Type))
		risLine(&b, "AU", r.Author)
		risLine(&b, "PY", r.Year)
		risLine(&b, "TI", r.Title)
		if r.Type == types.KindJournal {
			risLine(&b, "T2", r.Publication)
		} else {
			risLine(&b, "PB", r.Publication)
		}
		risOptional(&b, "VL", r.Volume)
		risOptional(&b, "IS", r.Issue)
		risOptional(&b, "SP", r.Pages)
		risOptional(&b, "DO", r.DOI)
		risOptional(&b, "UR", r.URL)
		b.WriteString("ER  - \n\n")
	}
	return []byte(b.String())
}

func risLine(b *strings.Builder, tag, value string) {
	b.WriteString(tag)
	b.WriteString("  - ")
	b.WriteString(singleLine(value))
	b.WriteByte('\n')
}

func risOptional(b *strings.Builder, tag, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	risLine(b, tag, value)
}

// singleLine folds line breaks to spaces so a value never spans tag lines.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
