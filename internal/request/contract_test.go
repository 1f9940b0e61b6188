// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/essay-engine/pkg/types"
)

const validReply = `{
  "essayTitle": "Brand Equity in Emerging Markets",
  "introduction": "Brands matter.",
  "bodyParagraphs": [{"heading": "Awareness", "content": "Awareness drives recall."}],
  "conclusion": "Invest in brands.",
  "references": [
    {"type": "JOUR", "author": "Keller, K.L.", "year": "1993", "title": "Conceptualizing brand equity",
     "publication": "Journal of Marketing", "volume": "57", "issue": "1", "pages": "1-22", "doi": null, "url": null},
    {"type": "BOOK", "author": "Kotler, P.", "year": "2016", "title": "Marketing Management", "publication": "Pearson"}
  ]
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestContractName(t *testing.T) {
	assert.Equal(t, "essay_artifact_v1", EssayContract().QualifiedName())
}

func TestValidateAcceptsConformingReply(t *testing.T) {
	assert.NoError(t, EssayContract().Validate(decode(t, validReply)))
}

func TestValidateAcceptsEmptyArraysAndExtraFields(t *testing.T) {
	v := decode(t, `{"essayTitle":"T","introduction":"I","bodyParagraphs":[],"conclusion":"C","references":[],"extra":1}`)
	assert.NoError(t, EssayContract().Validate(v))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantMsg string
	}{
		{
			name:    "not an object",
			reply:   `[1,2]`,
			wantMsg: "(root): expected object, got array",
		},
		{
			name:    "missing references",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":[],"conclusion":"C"}`,
			wantMsg: "references: required field missing",
		},
		{
			name:    "null title",
			reply:   `{"essayTitle":null,"introduction":"I","bodyParagraphs":[],"conclusion":"C","references":[]}`,
			wantMsg: "essayTitle: required field missing",
		},
		{
			name:    "blank conclusion",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":[],"conclusion":"  ","references":[]}`,
			wantMsg: "conclusion: must not be empty",
		},
		{
			name:    "sections not an array",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":"x","conclusion":"C","references":[]}`,
			wantMsg: "bodyParagraphs: expected array, got string",
		},
		{
			name:    "section missing content",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":[{"heading":"H"}],"conclusion":"C","references":[]}`,
			wantMsg: "bodyParagraphs[0].content: required field missing",
		},
		{
			name:    "unknown reference type",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":[],"conclusion":"C","references":[{"type":"THES","author":"A","year":"2020","title":"Ti","publication":"P"}]}`,
			wantMsg: `references[0].type: "THES" is not one of JOUR, BOOK, WEB`,
		},
		{
			name:    "numeric year",
			reply:   `{"essayTitle":"T","introduction":"I","bodyParagraphs":[],"conclusion":"C","references":[{"type":"WEB","author":"A","year":2020,"title":"Ti","publication":"P"}]}`,
			wantMsg: "references[0].year: expected string, got number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EssayContract().Validate(decode(t, tt.reply))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecode(t *testing.T) {
	var essay types.Essay
	require.NoError(t, EssayContract().Decode(decode(t, validReply), &essay))

	assert.Equal(t, "Brand Equity in Emerging Markets", essay.Title)
	require.Len(t, essay.Body, 1)
	assert.Equal(t, "Awareness drives recall.", essay.Body[0].Content)
	require.Len(t, essay.References, 2)
	assert.Equal(t, types.KindJournal, essay.References[0].Type)
	assert.Equal(t, "1-22", essay.References[0].Pages)
	assert.Empty(t, essay.References[0].DOI)
	assert.Equal(t, "Pearson", essay.References[1].Publication)
}

func TestDecodeUsesExactKeysOnly(t *testing.T) {
	reply := `{"essayTitle":"T","EssayTitle":"","introduction":"I","bodyParagraphs":[{"heading":"H","HEADING":""}],` +
		`"conclusion":"K","references":[{"type":"WEB","Type":"JOUR","author":"A","year":"2024","title":"Ti","publication":"Site"}]}`
	var essay types.Essay
	// The section lacks a content field.
	assert.Error(t, EssayContract().Decode(decode(t, reply), &essay))

	reply = `{"essayTitle":"T","EssayTitle":"","introduction":"I","bodyParagraphs":[{"heading":"H","content":"C","HEADING":""}],` +
		`"conclusion":"K","references":[{"type":"WEB","Type":"JOUR","author":"A","year":"2024","title":"Ti","publication":"Site"}]}`
	require.NoError(t, EssayContract().Decode(decode(t, reply), &essay))
	assert.Equal(t, "T", essay.Title)
	assert.Equal(t, "H", essay.Body[0].Heading)
	assert.Equal(t, types.KindWebsite, essay.References[0].Type)
}

func TestJSONSchemaIsStrict(t *testing.T) {
	s := EssayContract().JSONSchema()
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])
	assert.ElementsMatch(t,
		[]string{"topic", "essayTitle", "introduction", "bodyParagraphs", "conclusion", "references"},
		s["required"])

	props := s["properties"].(map[string]any)
	topic := props["topic"].(map[string]any)
	assert.Equal(t, []string{"string", "null"}, topic["type"])

	refs := props["references"].(map[string]any)
	assert.Equal(t, "array", refs["type"])
	item := refs["items"].(map[string]any)
	assert.Equal(t, false, item["additionalProperties"])
	kind := item["properties"].(map[string]any)["type"].(map[string]any)
	assert.Equal(t, []string{"JOUR", "BOOK", "WEB"}, kind["enum"])

	_, err := json.Marshal(s)
	assert.NoError(t, err)
}

func TestOpenAPISchema(t *testing.T) {
	s := EssayContract().OpenAPISchema()
	assert.Equal(t, "OBJECT", s["type"])
	assert.Equal(t,
		[]string{"topic", "essayTitle", "introduction", "bodyParagraphs", "conclusion", "references"},
		s["propertyOrdering"])
	assert.NotContains(t, s["required"], "topic")
	assert.Contains(t, s["required"], "essayTitle")

	props := s["properties"].(map[string]any)
	assert.Equal(t, true, props["topic"].(map[string]any)["nullable"])

	refs := props["references"].(map[string]any)
	assert.Equal(t, "ARRAY", refs["type"])
	item := refs["items"].(map[string]any)
	assert.Equal(t, []string{"type", "author", "year", "title", "publication"}, item["required"])
	kind := item["properties"].(map[string]any)["type"].(map[string]any)
	assert.Equal(t, "enum", kind["format"])
}
