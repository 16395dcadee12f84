package report

import (
	"bytes"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var (
	anchorStrip  = regexp.MustCompile(`[^a-z0-9\-]`)
	anchorHyphen = regexp.MustCompile(`-+`)
)

// TOCItem represents a table of contents entry
type TOCItem struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Report is a rendered diagnostics document
type Report struct {
	Markdown string    `json:"markdown"`
	HTML     string    `json:"html"`
	Title    string    `json:"title"`
	TOC      []TOCItem `json:"toc"`
}

// Renderer converts report Markdown to HTML with highlighted code blocks.
// A Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GFM tables and chroma highlighting
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	return &Renderer{md: md}
}

// Render converts Markdown source into a Report
func (r *Renderer) Render(source []byte) (*Report, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, err
	}

	toc := r.headings(source)
	title := ""
	if len(toc) > 0 {
		title = toc[0].Title
	}

	return &Report{
		Markdown: string(source),
		HTML:     buf.String(),
		Title:    title,
		TOC:      toc,
	}, nil
}

func (r *Renderer) headings(source []byte) []TOCItem {
	doc := r.md.Parser().Parse(text.NewReader(source))

	var toc []TOCItem
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title := headingText(heading, source)
			toc = append(toc, TOCItem{
				Level:  heading.Level,
				Title:  title,
				Anchor: anchor(title),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil
	}
	return toc
}

// headingText concatenates the text and code-span segments of a heading
func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))
		case *ast.CodeSpan:
			buf.WriteString(headingText(c, source))
		}
	}
	return buf.String()
}

func anchor(title string) string {
	a := strings.ToLower(title)
	a = strings.ReplaceAll(a, " ", "-")
	a = anchorStrip.ReplaceAllString(a, "")
	a = anchorHyphen.ReplaceAllString(a, "-")
	return strings.Trim(a, "-")
}
