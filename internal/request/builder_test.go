// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package request

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/essay-engine/pkg/apperrors"
	"github.com/pdiddy/essay-engine/pkg/types"
)

func testConfig(prompt string) types.RequestConfig {
	cfg := types.DefaultRequestConfig()
	cfg.Prompt = prompt
	return cfg
}

func testBuilder() *Builder {
	return NewBuilder(types.WritingConfig{})
}

func TestBuildWordTarget(t *testing.T) {
	for _, pages := range []int{1, 2, 5, 17, 30} {
		cfg := testConfig("Analyze brand equity.")
		cfg.PageCount = pages

		req, err := testBuilder().Build(cfg, nil)
		require.NoError(t, err)

		assert.Equal(t, pages*400, req.Config.WordTarget())
		assert.Contains(t, req.Instruction, "about "+strconv.Itoa(pages*400)+" words")
		assert.Contains(t, req.Instruction, "roughly "+strconv.Itoa(pages)+" pages")
	}
}

func TestBuildReferenceCountsVerbatim(t *testing.T) {
	cfg := testConfig("Discuss customer loyalty.")
	cfg.InternationalRefs = 7
	cfg.NationalRefs = 0

	req, err := testBuilder().Build(cfg, nil)
	require.NoError(t, err)
	assert.Contains(t, req.Instruction, "at least 7 international journals and 0 national journals")
}

func TestBuildFragmentOrder(t *testing.T) {
	cfg := testConfig("Topic")
	cfg.Style = types.StyleCritical
	cfg.Category = types.CategoryCaseStudy
	cfg.Shape = types.ShapeBulleted

	req, err := testBuilder().Build(cfg, nil)
	require.NoError(t, err)

	structure := strings.Index(req.Instruction, structureFragments[types.CategoryCaseStudy])
	style := strings.Index(req.Instruction, styleFragments[types.StyleCritical])
	shape := strings.Index(req.Instruction, shapeFragments[types.ShapeBulleted])

	require.True(t, structure >= 0 && style >= 0 && shape >= 0, "all fragments present")
	assert.Less(t, structure, style, "structure before style")
	assert.Less(t, style, shape, "style before shape")
}

func TestBuildSelectsFragmentPerEnum(t *testing.T) {
	b := testBuilder()
	for style, frag := range styleFragments {
		cfg := testConfig("x")
		cfg.Style = style
		req, err := b.Build(cfg, nil)
		require.NoError(t, err)
		assert.Contains(t, req.Instruction, frag, "style %s", style)
		for other, otherFrag := range styleFragments {
			if other != style {
				assert.NotContains(t, req.Instruction, otherFrag, "style %s leaked into %s", other, style)
			}
		}
	}
	for category, frag := range structureFragments {
		cfg := testConfig("x")
		cfg.Category = category
		req, err := b.Build(cfg, nil)
		require.NoError(t, err)
		assert.Contains(t, req.Instruction, frag, "category %s", category)
	}
	for shape, frag := range shapeFragments {
		cfg := testConfig("x")
		cfg.Shape = shape
		req, err := b.Build(cfg, nil)
		require.NoError(t, err)
		assert.Contains(t, req.Instruction, frag, "shape %s", shape)
	}
}

func TestFragmentTablesCoverEveryEnum(t *testing.T) {
	for _, s := range []types.WritingStyle{types.StyleFormal, types.StyleCritical, types.StylePractical} {
		assert.NotEmpty(t, styleFragments[s], "style %s", s)
	}
	for _, c := range []types.TaskCategory{types.CategoryEssay, types.CategoryCaseStudy, types.CategoryDiscussion} {
		assert.NotEmpty(t, structureFragments[c], "category %s", c)
	}
	for _, s := range []types.OutputShape{types.ShapeNarrative, types.ShapeBulleted} {
		assert.NotEmpty(t, shapeFragments[s], "shape %s", s)
	}
}

func TestBuildBoilerplate(t *testing.T) {
	req, err := NewBuilder(types.WritingConfig{Discipline: "public health", Language: "English"}).
		Build(testConfig("x"), nil)
	require.NoError(t, err)

	assert.Contains(t, req.Instruction, "master's student in public health")
	assert.Contains(t, req.Instruction, "Write in English.")
	assert.Contains(t, req.Instruction, "vary sentence length")
	for _, p := range DeniedPhrases {
		assert.Contains(t, req.Instruction, `"`+p+`"`)
	}
	assert.Contains(t, req.Instruction, "essay_artifact_v1")
}

func TestBuildNormalizesEnums(t *testing.T) {
	cfg := testConfig("x")
	cfg.Style = "CRITICAL"
	cfg.Category = "CASE_STUDY"
	cfg.Shape = "Bulleted"

	req, err := testBuilder().Build(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StyleCritical, req.Config.Style)
	assert.Equal(t, types.CategoryCaseStudy, req.Config.Category)
	assert.Equal(t, types.ShapeBulleted, req.Config.Shape)
	assert.Contains(t, req.Instruction, styleFragments[types.StyleCritical])
}

func TestBuildPayload(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")

	tests := []struct {
		name      string
		prompt    string
		att       Attachment
		wantParts int
		wantText  string
		wantKind  string
	}{
		{
			name:      "prompt only",
			prompt:    "Write about pricing.",
			wantParts: 1,
			wantText:  "Write about pricing.",
			wantKind:  "none",
		},
		{
			name:      "binary attachment goes first",
			prompt:    "Answer the case.",
			att:       Binary{Name: "case.pdf", MIMEType: "application/pdf", Data: pdf},
			wantParts: 2,
			wantText:  "Answer the case.",
			wantKind:  "binary",
		},
		{
			name:      "extracted text appended after marker",
			prompt:    "Answer the case.",
			att:       ExtractedText{Name: "case.docx", Text: "Company X lost market share."},
			wantParts: 1,
			wantText:  "Answer the case.\n\n" + AttachmentMarker + "\nCompany X lost market share.",
			wantKind:  "text",
		},
		{
			name:      "empty prompt with binary uses default instruction",
			prompt:    "   ",
			att:       Binary{Name: "task.pdf", MIMEType: "application/pdf", Data: pdf},
			wantParts: 2,
			wantText:  DefaultAttachmentPrompt,
			wantKind:  "binary",
		},
		{
			name:      "empty prompt with text uses default instruction",
			att:       ExtractedText{Text: "Task: analyze segmentation."},
			wantParts: 1,
			wantText:  DefaultAttachmentPrompt + "\n\n" + AttachmentMarker + "\nTask: analyze segmentation.",
			wantKind:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := testBuilder().Build(testConfig(tt.prompt), tt.att)
			require.NoError(t, err)
			require.Len(t, req.Parts, tt.wantParts)
			assert.Equal(t, tt.wantKind, req.AttachmentKind)

			last, ok := req.Parts[len(req.Parts)-1].(TextPart)
			require.True(t, ok, "last part must be text")
			assert.Equal(t, tt.wantText, last.Text)

			if tt.wantParts == 2 {
				bin, ok := req.Parts[0].(BinaryPart)
				require.True(t, ok, "first part must be binary")
				assert.Equal(t, pdf, bin.Data)
				assert.Equal(t, "application/pdf", bin.MIMEType)
			}
		})
	}
}

func TestBuildInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.RequestConfig
		att  Attachment
	}{
		{name: "no prompt no attachment", cfg: testConfig("")},
		{name: "blank prompt", cfg: testConfig(" \n\t ")},
		{name: "blank extracted text", cfg: testConfig(""), att: ExtractedText{Text: "  \n"}},
		{name: "empty binary", cfg: testConfig(""), att: Binary{MIMEType: "application/pdf"}},
		{name: "unknown style", cfg: func() types.RequestConfig { c := testConfig("x"); c.Style = "poetic"; return c }()},
		{name: "zero pages", cfg: func() types.RequestConfig { c := testConfig("x"); c.PageCount = 0; return c }()},
		{name: "negative refs", cfg: func() types.RequestConfig { c := testConfig("x"); c.NationalRefs = -1; return c }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := testBuilder().Build(tt.cfg, tt.att)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest), "got %v", err)
			assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
		})
	}
}

func TestBinaryFromBase64(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString([]byte("%PDF"))
	bin, err := BinaryFromBase64("a.pdf", "application/pdf", enc)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), bin.Data)

	_, err = BinaryFromBase64("a.pdf", "application/pdf", "not base64!!")
	assert.ErrorIs(t, err, apperrors.ErrAttachmentUnreadable)

	_, err = BinaryFromBase64("a.pdf", "application/pdf", "")
	assert.ErrorIs(t, err, apperrors.ErrAttachmentUnreadable)
}

func TestBinaryPartDataURL(t *testing.T) {
	p := BinaryPart{MIMEType: "application/pdf", Data: []byte("hi")}
	assert.Equal(t, "data:application/pdf;base64,aGk=", p.DataURL())
}

func TestNewBuilderFillsPersonaDefaults(t *testing.T) {
	def := types.DefaultWritingConfig()
	tests := []struct {
		name           string
		cfg            types.WritingConfig
		wantDiscipline string
		wantLanguage   string
	}{
		{"empty", types.WritingConfig{}, def.Discipline, def.Language},
		{"discipline only", types.WritingConfig{Discipline: "nursing"}, "nursing", def.Language},
		{"language only", types.WritingConfig{Language: "English"}, def.Discipline, "English"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.cfg)
			assert.Equal(t, tt.wantDiscipline, b.Discipline)
			assert.Equal(t, tt.wantLanguage, b.Language)

			req, err := b.Build(testConfig("x"), nil)
			require.NoError(t, err)
			assert.Contains(t, req.Instruction, "master's student in "+tt.wantDiscipline)
			assert.Contains(t, req.Instruction, "Write in "+tt.wantLanguage+".")
		})
	}
}
