// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the essay engine: the
// per-attempt request selections, the generated essay, and configuration.
package types

// ReferenceKind classifies a bibliographic source. The values double as RIS
// type codes.
type ReferenceKind string

const (
	KindJournal ReferenceKind = "JOUR"
	KindBook    ReferenceKind = "BOOK"
	KindWebsite ReferenceKind = "WEB"
)

// ReferenceKinds lists every accepted ReferenceKind in contract order.
var ReferenceKinds = []ReferenceKind{KindJournal, KindBook, KindWebsite}

// Valid reports whether k is one of the known kinds.
func (k ReferenceKind) Valid() bool {
	for _, v := range ReferenceKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Reference is one bibliographic source cited by an Essay. Type, Author, Year,
// Title and Publication are always present; the rest are optional and are
// left empty when the source does not have them.
type Reference struct {
	// Type is the kind of source: journal article, book, or website.
	Type ReferenceKind `json:"type" yaml:"type"`

	// Author holds the author names as a single display string
	// (e.g. "Kotler, P. & Keller, K.L.").
	Author string `json:"author" yaml:"author"`

	// Year is the publication year as written by the source.
	Year string `json:"year" yaml:"year"`

	// Title is the work's title.
	Title string `json:"title" yaml:"title"`

	// Publication is the journal name for articles and the publisher otherwise.
	Publication string `json:"publication" yaml:"publication"`

	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// BodySection is one headed block of the essay body.
type BodySection struct {
	Heading string `json:"heading" yaml:"heading"`
	Content string `json:"content" yaml:"content"`
}

// Essay is the structured artifact produced by one successful generation.
// Body and References keep the order in which the model returned them.
type Essay struct {
	// Topic is informational and may be empty.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`

	Title        string        `json:"essayTitle" yaml:"essay_title"`
	Introduction string        `json:"introduction" yaml:"introduction"`
	Body         []BodySection `json:"bodyParagraphs" yaml:"body_paragraphs"`
	Conclusion   string        `json:"conclusion" yaml:"conclusion"`
	References   []Reference   `json:"references" yaml:"references"`
}
