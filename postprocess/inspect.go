package postprocess

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var dayHeading = regexp.MustCompile(`(?i)^\W*day\s+\d+`)

// Report describes how closely a trip plan follows the expected layout.
// Violations are informational; the text is shown either way.
type Report struct {
	DaySections        int      `json:"day_sections"`
	ListItems          int      `json:"list_items"`
	HasGrandTotal      bool     `json:"has_grand_total"`
	HasClosingQuestion bool     `json:"has_closing_question"`
	Violations         []string `json:"violations,omitempty"`
}

// OK reports whether no format assumption was violated
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

var markdown = goldmark.New()

// Inspect parses text as markdown and checks it for day sections, a grand
// total and a closing question
func Inspect(src string) Report {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var r Report
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock:
			for _, line := range strings.Split(nodeText(n, source), "\n") {
				if dayHeading.MatchString(line) {
					r.DaySections++
				}
				if strings.Contains(strings.ToLower(line), "grand total") {
					r.HasGrandTotal = true
				}
			}
		case ast.KindListItem:
			r.ListItems++
		}
		return ast.WalkContinue, nil
	})

	if last := lastBlock(doc); last != nil {
		r.HasClosingQuestion = strings.HasSuffix(strings.TrimSpace(nodeText(last, source)), "?")
	}

	if r.DaySections == 0 {
		r.Violations = append(r.Violations, "no day-by-day sections")
	}
	if !r.HasGrandTotal {
		r.Violations = append(r.Violations, "missing grand total")
	}
	if !r.HasClosingQuestion {
		r.Violations = append(r.Violations, "missing closing question")
	}
	return r
}

// lastBlock returns the deepest last block so a closing question inside a
// list or quote is still found
func lastBlock(doc ast.Node) ast.Node {
	n := doc.LastChild()
	for n != nil && n.Type() == ast.TypeBlock && n.LastChild() != nil && n.LastChild().Type() == ast.TypeBlock {
		n = n.LastChild()
	}
	return n
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
