// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package request

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// FieldType is the JSON type of a contract field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeArray  FieldType = "array"
)

// Field describes one property of a contract object. Arrays always hold
// objects described by Items.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Optional    bool
	Enum        []string
	Items       *Object
}

// Object is an ordered set of fields.
type Object struct {
	Fields []Field
}

// Contract is the output shape the service must honor. It is sent as a hard
// constraint and used again to validate the reply.
type Contract struct {
	Name        string
	Version     string
	Description string
	Root        Object
}

// QualifiedName returns the schema name with its version (e.g. "essay_artifact_v1").
func (c *Contract) QualifiedName() string {
	return c.Name + "_" + c.Version
}

func referenceKindNames() []string {
	names := make([]string, len(types.ReferenceKinds))
	for i, k := range types.ReferenceKinds {
		names[i] = string(k)
	}
	return names
}

var referenceObject = Object{Fields: []Field{
	{Name: "type", Type: TypeString, Enum: referenceKindNames(),
		Description: "Type of reference: JOUR (journal article), BOOK (book), or WEB (website)"},
	{Name: "author", Type: TypeString, Description: "Author names (e.g. Kotler, P. & Keller, K.L.)"},
	{Name: "year", Type: TypeString},
	{Name: "title", Type: TypeString},
	{Name: "publication", Type: TypeString, Description: "Journal name for articles, publisher otherwise"},
	{Name: "volume", Type: TypeString, Optional: true},
	{Name: "issue", Type: TypeString, Optional: true},
	{Name: "pages", Type: TypeString, Optional: true},
	{Name: "doi", Type: TypeString, Optional: true},
	{Name: "url", Type: TypeString, Optional: true},
}}

var sectionObject = Object{Fields: []Field{
	{Name: "heading", Type: TypeString},
	{Name: "content", Type: TypeString, Description: "Detailed analysis with in-text citations. Must be long and detailed."},
}}

var essayContract = &Contract{
	Name:        "essay_artifact",
	Version:     "v1",
	Description: "A complete academic essay with its bibliography.",
	Root: Object{Fields: []Field{
		{Name: "topic", Type: TypeString, Optional: true},
		{Name: "essayTitle", Type: TypeString},
		{Name: "introduction", Type: TypeString, Description: "Comprehensive introduction discussing the background and its importance."},
		{Name: "bodyParagraphs", Type: TypeArray, Items: &sectionObject},
		{Name: "conclusion", Type: TypeString, Description: "Summary and strategic recommendations."},
		{Name: "references", Type: TypeArray, Items: &referenceObject, Description: "List of credible sources used in the essay."},
	}},
}

// EssayContract returns the versioned output contract for an Essay.
func EssayContract() *Contract {
	return essayContract
}

// JSONSchema renders the contract as strict JSON Schema: every property is
// listed as required, optional ones accept null, and no extra properties are
// allowed.
func (c *Contract) JSONSchema() map[string]any {
	return c.Root.jsonSchema()
}

func (o Object) jsonSchema() map[string]any {
	props := make(map[string]any, len(o.Fields))
	required := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		props[f.Name] = f.jsonSchema()
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (f Field) jsonSchema() map[string]any {
	var s map[string]any
	switch f.Type {
	case TypeArray:
		s = map[string]any{"type": "array", "items": f.Items.jsonSchema()}
	default:
		if f.Optional {
			s = map[string]any{"type": []string{"string", "null"}}
		} else {
			s = map[string]any{"type": "string"}
		}
	}
	if len(f.Enum) > 0 {
		s["enum"] = f.Enum
	}
	if f.Description != "" {
		s["description"] = f.Description
	}
	return s
}

// OpenAPISchema renders the contract in the OpenAPI subset accepted by the
// Gemini API: upper-case type names, nullable flags, and an explicit
// property order.
func (c *Contract) OpenAPISchema() map[string]any {
	return c.Root.openAPISchema()
}

func (o Object) openAPISchema() map[string]any {
	props := make(map[string]any, len(o.Fields))
	order := make([]string, 0, len(o.Fields))
	var required []string
	for _, f := range o.Fields {
		props[f.Name] = f.openAPISchema()
		order = append(order, f.Name)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":             "OBJECT",
		"properties":       props,
		"required":         required,
		"propertyOrdering": order,
	}
}

func (f Field) openAPISchema() map[string]any {
	var s map[string]any
	switch f.Type {
	case TypeArray:
		s = map[string]any{"type": "ARRAY", "items": f.Items.openAPISchema()}
	default:
		s = map[string]any{"type": "STRING"}
	}
	if f.Optional {
		s["nullable"] = true
	}
	if len(f.Enum) > 0 {
		s["format"] = "enum"
		s["enum"] = f.Enum
	}
	if f.Description != "" {
		s["description"] = f.Description
	}
	return s
}

// Validate checks a decoded JSON value against the contract. Required string
// fields must be present, non-null and non-blank; optional fields may be
// absent or null; enum fields must hold a listed value. The returned error
// lists every problem with its JSON path.
func (c *Contract) Validate(v any) error {
	var problems []string
	c.Root.validate("", v, &problems)
	if len(problems) > 0 {
		return fmt.Errorf("reply does not match %s: %s", c.QualifiedName(), strings.Join(problems, "; "))
	}
	return nil
}

// Decode validates v against the contract and decodes it into out. Only the
// contract's own keys, matched exactly, reach out: a key that differs only in
// case (e.g. "EssayTitle" next to "essayTitle") is ignored instead of
// overwriting the validated value.
func (c *Contract) Decode(v any, out any) error {
	if err := c.Validate(v); err != nil {
		return err
	}
	raw, err := json.Marshal(c.Root.project(v))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.QualifiedName(), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", c.QualifiedName(), err)
	}
	return nil
}

// project copies the fields o names out of a validated value.
func (o Object) project(v any) map[string]any {
	m, _ := v.(map[string]any)
	out := make(map[string]any, len(o.Fields))
	for _, f := range o.Fields {
		val, ok := m[f.Name]
		if !ok || val == nil {
			continue
		}
		if f.Type == TypeArray {
			items, _ := val.([]any)
			list := make([]any, len(items))
			for i, item := range items {
				list[i] = f.Items.project(item)
			}
			val = list
		}
		out[f.Name] = val
	}
	return out
}

func (o Object) validate(path string, v any, problems *[]string) {
	m, ok := v.(map[string]any)
	if !ok {
		*problems = append(*problems, fmt.Sprintf("%s: expected object, got %s", displayPath(path), jsonTypeName(v)))
		return
	}
	for _, f := range o.Fields {
		fp := joinPath(path, f.Name)
		val, present := m[f.Name]
		if !present || val == nil {
			if !f.Optional {
				*problems = append(*problems, fp+": required field missing")
			}
			continue
		}
		f.validate(fp, val, problems)
	}
}

func (f Field) validate(path string, v any, problems *[]string) {
	switch f.Type {
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("%s: expected array, got %s", path, jsonTypeName(v)))
			return
		}
		for i, item := range items {
			f.Items.validate(fmt.Sprintf("%s[%d]", path, i), item, problems)
		}
	default:
		s, ok := v.(string)
		if !ok {
			*problems = append(*problems, fmt.Sprintf("%s: expected string, got %s", path, jsonTypeName(v)))
			return
		}
		if !f.Optional && strings.TrimSpace(s) == "" {
			*problems = append(*problems, path+": must not be empty")
			return
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			*problems = append(*problems, fmt.Sprintf("%s: %q is not one of %s", path, s, strings.Join(f.Enum, ", ")))
		}
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
