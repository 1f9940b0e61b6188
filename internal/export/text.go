// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strings"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// EncodeText renders the essay prose as plain text for pasting into a
// plagiarism checker: the title, the introduction, each section as
// "heading\ncontent", and the conclusion, separated by blank lines.
// References are left out.
func EncodeText(essay *types.Essay) []byte {
	blocks := []string{essay.Title, essay.Introduction}
	for _, s := range essay.Body {
		blocks = append(blocks, s.Heading+"\n"+s.Content)
	}
	blocks = append(blocks, essay.Conclusion)
	return []byte(strings.Join(blocks, "\n\n"))
}
