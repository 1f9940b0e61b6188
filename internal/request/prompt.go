// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package request

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// styleFragments holds the tone instructions per writing style.
var styleFragments = map[types.WritingStyle]string{
	types.StyleFormal: `WRITING STYLE (TONE): DEEP ACADEMIC
- Write with high perplexity: precise vocabulary and complex yet effective sentence structures.
- Do not repeat sentence structures.
- Show human nuance by connecting concepts that seem unrelated.`,
	types.StyleCritical: `WRITING STYLE (TONE): CRITICAL ANALYTICAL (HUMAN LEVEL)
- Argue with the theory instead of merely explaining it.
- Use active sentences and vary sentence length (short against long) to create a natural rhythm.
- Avoid cliches such as "In conclusion", "It is important to note", "In this digital era". Use more organic transitions.`,
	types.StylePractical: `WRITING STYLE (TONE): PRACTICAL AND DIRECT
- Write as an expert consultant talking to a client.
- Use specific real-world analogies, not general ones.
- Focus on actionable insights.`,
}

// structureFragments holds the structure instructions per task category.
var structureFragments = map[types.TaskCategory]string{
	types.CategoryEssay: `TASK TYPE: ACADEMIC ESSAY
- The line of thought must flow naturally, not read like bullet points forced together.
- Each paragraph develops one main idea in depth.`,
	types.CategoryCaseStudy: `TASK TYPE: CASE STUDY
- Structure: Problem -> Data Analysis -> Alternative Solutions -> Recommendation.
- Use logical hypothetical data when the assignment provides none.`,
	types.CategoryDiscussion: `TASK TYPE: FORUM DISCUSSION
- More personal language while staying grounded in theory.
- Answer the core of the question directly without a long-winded opening.`,
}

// shapeFragments holds the body layout instructions per output shape.
var shapeFragments = map[types.OutputShape]string{
	types.ShapeNarrative: `OUTPUT FORMAT: NARRATIVE PARAGRAPHS
- Present the discussion as flowing narrative paragraphs (standard essay format).
- Keep transitions between paragraphs smooth and coherent.`,
	types.ShapeBulleted: `OUTPUT FORMAT: BULLET POINTS
- Present the body sections as structured, detailed bullet points, one "- " line per point.
- Every point is a complete analytical sentence, not a short phrase.
- The introduction and conclusion stay narrative paragraphs.`,
}

// DeniedPhrases are stock transitions the instruction bundle forbids.
var DeniedPhrases = []string{
	"In today's modern era",
	"It can be concluded that",
	"Furthermore",
	"On the other hand",
	"It is important to note",
	"In this digital era",
}

var instructionTmpl = template.Must(template.New("instruction").Parse(`You are a sharp, widely read master's student in {{.Discipline}}. Write in {{.Language}}.

PRIMARY GOAL:
Produce writing that reads as authentically human and is free of plagiarism.

HUMANIZER RULES (MANDATORY):
1. Burstiness and perplexity: vary sentence length sharply. Mix short, firm sentences with long, layered compound sentences. Never let the sentence pattern become monotonous or robotic.
2. Avoid stock phrases: never use {{range $i, $p := .Denied}}{{if $i}}, {{end}}"{{$p}}"{{end}}. Use natural, implied transitions instead.
3. Opinion and voice: do not stay neutral. Take a position, support it with theory, and criticize that theory where needed.
4. Specificity: avoid generic examples such as "a technology company". Name concrete cases.
5. Semantic paraphrase: do not just swap synonyms. Restate theoretical ideas in your own understanding.

{{.Structure}}

{{.Style}}

{{.Shape}}

OUTPUT TARGETS:
- Length: about {{.Words}} words (roughly {{.Pages}} pages). Develop the analysis in depth to reach this target.
- References: at least {{.InternationalRefs}} international journals and {{.NationalRefs}} national journals. Use real, recent citations.

Respond only with JSON that conforms to the {{.Schema}} schema.
`))

type instructionData struct {
	Discipline        string
	Language          string
	Denied            []string
	Structure         string
	Style             string
	Shape             string
	Words             int
	Pages             int
	InternationalRefs int
	NationalRefs      int
	Schema            string
}

// renderInstruction composes the system directive for a normalized config.
func renderInstruction(b *Builder, cfg types.RequestConfig, contract *Contract) (string, error) {
	data := instructionData{
		Discipline:        b.Discipline,
		Language:          b.Language,
		Denied:            DeniedPhrases,
		Structure:         structureFragments[cfg.Category],
		Style:             styleFragments[cfg.Style],
		Shape:             shapeFragments[cfg.Shape],
		Words:             cfg.WordTarget(),
		Pages:             cfg.PageCount,
		InternationalRefs: cfg.InternationalRefs,
		NationalRefs:      cfg.NationalRefs,
		Schema:            contract.QualifiedName(),
	}
	var buf bytes.Buffer
	if err := instructionTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
