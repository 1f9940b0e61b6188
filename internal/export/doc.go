// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/pdiddy/essay-engine/pkg/types"
)

// bom is the UTF-8 byte-order mark Word uses to detect the encoding.
const bom = "\ufeff"

// Labels holds the fixed section headings of the document.
type Labels struct {
	Introduction string
	Conclusion   string
	References   string
}

var (
	EnglishLabels    = Labels{Introduction: "Introduction", Conclusion: "Conclusion", References: "References"}
	IndonesianLabels = Labels{Introduction: "Pendahuluan", Conclusion: "Kesimpulan", References: "Daftar Pustaka"}
)

// LabelsFor returns the heading set for a language code: "en" (or empty)
// and "id" are known.
func LabelsFor(lang string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en":
		return EnglishLabels, nil
	case "id":
		return IndonesianLabels, nil
	default:
		return Labels{}, fmt.Errorf("unknown label set %q (want en or id)", lang)
	}
}

// markdown renders section text. Single line breaks are kept. Tags in the
// text never reach it unescaped, see renderMarkdown.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// wordPrintView opens the document in Print Layout instead of Web Layout.
const wordPrintView = `<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom><w:DoNotOptimizeForBrowser/></w:WordDocument></xml><![endif]-->`

var docTmpl = template.Must(template.New("doc").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta http-equiv="Content-Type" content="text/html; charset=utf-8">
<meta name="ProgId" content="Word.Document">
<title>{{.Title}}</title>
{{.PrintView}}
<style>
@page WordSection1 { size: 21cm 29.7cm; margin: 2.54cm 2.54cm 2.54cm 2.54cm; }
div.WordSection1 { page: WordSection1; }
body { font-family: 'Times New Roman', serif; line-height: 1.5; font-size: 12pt; }
h1 { font-size: 16pt; font-weight: bold; text-align: center; margin-bottom: 24px; }
h2 { font-size: 14pt; font-weight: bold; margin-top: 18px; margin-bottom: 12px; }
p, li { margin-bottom: 12px; text-align: justify; }
.reference-list { margin-top: 30px; border-top: 1px solid #ccc; padding-top: 20px; }
.ref-item { margin-bottom: 10px; margin-left: 20px; text-indent: -20px; }
</style>
</head>
<body>
<div class="WordSection1">
<h1>{{.Title}}</h1>
<h2>{{.Labels.Introduction}}</h2>
{{.Introduction}}
{{- range .Sections}}
<h2>{{.Heading}}</h2>
{{.Content}}
{{- end}}
<h2>{{.Labels.Conclusion}}</h2>
{{.Conclusion}}
<div class="reference-list">
<h2>{{.Labels.References}}</h2>
{{- range .References}}
<p class="ref-item">{{.}}</p>
{{- end}}
</div>
</div>
</body>
</html>
`))

type docSection struct {
	Heading string
	Content template.HTML
}

type docData struct {
	Title        string
	PrintView    template.HTML
	Labels       Labels
	Introduction template.HTML
	Sections     []docSection
	Conclusion   template.HTML
	References   []string
}

// EncodeDoc renders essay as a Word-compatible HTML document: a byte-order
// mark, the title, the introduction, each body section in order, the
// conclusion, and a reference block.
func EncodeDoc(essay *types.Essay, labels Labels) ([]byte, error) {
	if essay == nil {
		return nil, fmt.Errorf("encoding doc: nil essay")
	}

	data := docData{
		Title:     essay.Title,
		PrintView: template.HTML(wordPrintView),
		Labels:    labels,
	}

	var err error
	if data.Introduction, err = renderMarkdown(essay.Introduction); err != nil {
		return nil, fmt.Errorf("rendering introduction: %w", err)
	}
	for i, s := range essay.Body {
		content, err := renderMarkdown(s.Content)
		if err != nil {
			return nil, fmt.Errorf("rendering section %d: %w", i+1, err)
		}
		data.Sections = append(data.Sections, docSection{Heading: s.Heading, Content: content})
	}
	if data.Conclusion, err = renderMarkdown(essay.Conclusion); err != nil {
		return nil, fmt.Errorf("rendering conclusion: %w", err)
	}
	for _, r := range essay.References {
		data.References = append(data.References, ReferenceLine(r))
	}

	var buf bytes.Buffer
	buf.WriteString(bom)
	if err := docTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing doc template: %w", err)
	}
	return buf.Bytes(), nil
}

// ReferenceLine formats r as "Author (Year). Title. Publication." with
// " DOI: x" appended when r has a DOI.
func ReferenceLine(r types.Reference) string {
	line := fmt.Sprintf("%s (%s). %s %s", singleLine(r.Author), singleLine(r.Year),
		sentence(r.Title), sentence(r.Publication))
	if doi := strings.TrimSpace(r.DOI); doi != "" {
		line += " DOI: " + doi
	}
	return line
}

// sentence terminates s with a period unless it already ends in punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(singleLine(s))
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}

// markupEscaper turns HTML in model text into literal characters, so a
// paragraph wrapped in <p> or <div> is printed instead of dropped.
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(markupEscaper.Replace(src)), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimRight(buf.String(), "\n")), nil
}
