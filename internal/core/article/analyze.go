package article

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Analysis holds the structural facts derived from a draft body.
type Analysis struct {
	HeadingCount int
	ListCount    int
	CodeBlocks   int
	BodyLength   int
}

var markdown = goldmark.New()

// Analyze parses the markdown body and derives its structural facts.
// Only headings of level 1-3 count toward HeadingCount, matching how
// note.com renders section structure.
func Analyze(body string) Analysis {
	a := Analysis{BodyLength: BodyLength(body)}

	doc := markdown.Parser().Parse(text.NewReader([]byte(body)))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level <= 3 {
				a.HeadingCount++
			}
		case *ast.List:
			a.ListCount++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			a.CodeBlocks++
		}
		return ast.WalkContinue, nil
	})

	return a
}

// NewDraft assembles a Draft from generated parts, deriving the counted
// fields from the body.
func NewDraft(theme Theme, title, body string, hashtags []string) Draft {
	analysis := Analyze(body)
	return Draft{
		Title:        title,
		Body:         body,
		Hashtags:     hashtags,
		WordCount:    analysis.BodyLength,
		HeadingCount: analysis.HeadingCount,
		Theme:        theme,
	}
}
