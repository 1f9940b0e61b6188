// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// EncodeBibTeX renders refs as BibTeX entries in input order. Journal
// articles become @article, books @book, and websites @misc. Keys are the
// first author's surname followed by the year; keys shared by several
// entries get a, b, c... suffixes.
func EncodeBibTeX(refs []types.Reference) []byte {
	keys := bibKeys(refs)

	var b strings.Builder
	for i, r := range refs {
		fmt.Fprintf(&b, "@%s{%s,\n", bibEntryType(r.Type), keys[i])
		bibField(&b, "author", bibAuthors(r.Author))
		bibField(&b, "title", bibEscape(r.Title))
		bibField(&b, "year", bibEscape(r.Year))
		switch r.Type {
		case types.KindJournal:
			bibField(&b, "journal", bibEscape(r.Publication))
		case types.KindBook:
			bibField(&b, "publisher", bibEscape(r.Publication))
		default:
			bibField(&b, "howpublished", bibEscape(r.Publication))
		}
		bibField(&b, "volume", bibEscape(r.Volume))
		bibField(&b, "number", bibEscape(r.Issue))
		bibField(&b, "pages", bibEscape(r.Pages))
		bibField(&b, "doi", singleLine(strings.TrimSpace(r.DOI)))
		bibField(&b, "url", singleLine(strings.TrimSpace(r.URL)))
		b.WriteString("}\n\n")
	}
	return []byte(b.String())
}

func bibEntryType(k types.ReferenceKind) string {
	switch k {
	case types.KindJournal:
		return "article"
	case types.KindBook:
		return "book"
	default:
		return "misc"
	}
}

func bibField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s = {%s},\n", name, value)
}

// bibKeys assigns a citation key to every reference.
func bibKeys(refs []types.Reference) []string {
	base := make([]string, len(refs))
	count := make(map[string]int)
	for i, r := range refs {
		base[i] = bibSurname(r.Author) + bibYear(r.Year)
		count[base[i]]++
	}

	keys := make([]string, len(refs))
	seen := make(map[string]int)
	for i, k := range base {
		if count[k] == 1 {
			keys[i] = k
			continue
		}
		keys[i] = k + bibSuffix(seen[k])
		seen[k]++
	}
	return keys
}

// bibSuffix returns a, b, ... z, aa, ab, ...
func bibSuffix(n int) string {
	s := ""
	for {
		s = string(rune('a'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			return s
		}
	}
}

// bibSurname takes the first author's family name: the text before the
// first comma, or the last word when there is no comma.
func bibSurname(author string) string {
	first := author
	for _, sep := range []string{" & ", ";", " and "} {
		if i := strings.Index(first, sep); i >= 0 {
			first = first[:i]
		}
	}
	name := first
	if i := strings.Index(first, ","); i >= 0 {
		name = first[:i]
	} else if fields := strings.Fields(first); len(fields) > 0 {
		name = fields[len(fields)-1]
	}

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "ref"
	}
	return b.String()
}

func bibYear(year string) string {
	var b strings.Builder
	for _, r := range year {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "nd"
	}
	return b.String()
}

// bibAuthors rewrites "A, B. & C, D." and "A; B" author lists with the
// BibTeX "and" separator.
func bibAuthors(author string) string {
	s := bibEscape(author)
	for _, sep := range []string{` \& `, "; ", ";"} {
		s = strings.ReplaceAll(s, sep, " and ")
	}
	return s
}

var bibReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
)

func bibEscape(s string) string {
	return bibReplacer.Replace(strings.TrimSpace(singleLine(s)))
}
