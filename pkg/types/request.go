// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// WordsPerPage converts a page target into a word target.
const WordsPerPage = 400

// WritingStyle selects the tone fragment of the instruction bundle.
type WritingStyle string

const (
	StyleFormal    WritingStyle = "formal"
	StyleCritical  WritingStyle = "critical"
	StylePractical WritingStyle = "practical"
)

// TaskCategory selects the structure fragment of the instruction bundle.
type TaskCategory string

const (
	CategoryEssay      TaskCategory = "essay"
	CategoryCaseStudy  TaskCategory = "case-study"
	CategoryDiscussion TaskCategory = "discussion"
)

// OutputShape selects how the essay body is laid out.
type OutputShape string

const (
	ShapeNarrative OutputShape = "narrative"
	ShapeBulleted  OutputShape = "bulleted"
)

var (
	writingStyles  = []WritingStyle{StyleFormal, StyleCritical, StylePractical}
	taskCategories = []TaskCategory{CategoryEssay, CategoryCaseStudy, CategoryDiscussion}
	outputShapes   = []OutputShape{ShapeNarrative, ShapeBulleted}
)

// ParseWritingStyle accepts a style name in any case.
func ParseWritingStyle(s string) (WritingStyle, error) {
	for _, v := range writingStyles {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown writing style %q: use formal, critical, or practical", s)
}

// ParseTaskCategory accepts a category name in any case. The underscore
// spelling ("case_study") is accepted as well.
func ParseTaskCategory(s string) (TaskCategory, error) {
	norm := strings.ReplaceAll(s, "_", "-")
	for _, v := range taskCategories {
		if strings.EqualFold(norm, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown task category %q: use essay, case-study, or discussion", s)
}

// ParseOutputShape accepts a shape name in any case.
func ParseOutputShape(s string) (OutputShape, error) {
	for _, v := range outputShapes {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown output shape %q: use narrative or bulleted", s)
}

// RequestConfig holds the user's selections for one generation attempt. It is
// built fresh per attempt and never persisted.
type RequestConfig struct {
	// Prompt is the free-text task description. May be empty when an
	// attachment carries the task.
	Prompt string `json:"prompt" yaml:"prompt"`

	Style    WritingStyle `json:"style" yaml:"style"`
	Category TaskCategory `json:"category" yaml:"category"`
	Shape    OutputShape  `json:"shape" yaml:"shape"`

	// InternationalRefs is the minimum number of international journal references.
	InternationalRefs int `json:"internationalRefs" yaml:"international_refs"`

	// NationalRefs is the minimum number of national journal references.
	NationalRefs int `json:"nationalRefs" yaml:"national_refs"`

	// PageCount is the target length in pages.
	PageCount int `json:"pageCount" yaml:"page_count"`
}

// WordTarget returns the target word count for the configured page count.
func (c RequestConfig) WordTarget() int {
	return c.PageCount * WordsPerPage
}

// Normalize returns a copy of c with enum values in canonical form. It
// rejects unknown enum values and out-of-range counts: reference counts may be
// zero, the page count must be at least one.
func (c RequestConfig) Normalize() (RequestConfig, error) {
	var problems []string
	style, err := ParseWritingStyle(string(c.Style))
	if err != nil {
		problems = append(problems, err.Error())
	}
	category, err := ParseTaskCategory(string(c.Category))
	if err != nil {
		problems = append(problems, err.Error())
	}
	shape, err := ParseOutputShape(string(c.Shape))
	if err != nil {
		problems = append(problems, err.Error())
	}
	if c.InternationalRefs < 0 {
		problems = append(problems, fmt.Sprintf("international reference count %d is negative", c.InternationalRefs))
	}
	if c.NationalRefs < 0 {
		problems = append(problems, fmt.Sprintf("national reference count %d is negative", c.NationalRefs))
	}
	if c.PageCount < 1 {
		problems = append(problems, fmt.Sprintf("page count %d must be at least 1", c.PageCount))
	}
	if len(problems) > 0 {
		return c, fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	c.Style, c.Category, c.Shape = style, category, shape
	return c, nil
}

// DefaultRequestConfig returns the selections a fresh form starts with.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		Style:             StyleFormal,
		Category:          CategoryEssay,
		Shape:             ShapeNarrative,
		InternationalRefs: 5,
		NationalRefs:      3,
		PageCount:         5,
	}
}
