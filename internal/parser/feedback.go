package parser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FeedbackSection is one titled part of the AI feedback, such as
// "Key Issues" or "Recommendations"
type FeedbackSection struct {
	Title   string
	Content string
}

// ParseFeedback splits AI feedback markdown into sections. A section starts
// at a heading or at a paragraph that opens with bold text, e.g.
//
//	**Key Issues:**
//	1. Too many tasks expired this week
//
// Text before the first title forms an untitled section. Titles without
// any content are dropped.
func ParseFeedback(raw string) []FeedbackSection {
	source := []byte(raw)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var (
		sections []FeedbackSection
		title    string
		lines    []string
	)
	flush := func() {
		if len(lines) > 0 {
			sections = append(sections, FeedbackSection{
				Title:   title,
				Content: strings.Join(lines, "\n"),
			})
		}
		lines = nil
	}

	for block := doc.FirstChild(); block != nil; block = block.NextSibling() {
		switch b := block.(type) {
		case *ast.Heading:
			flush()
			title = cleanTitle(nodeText(b, source))
		case *ast.Paragraph, *ast.TextBlock:
			if em, ok := b.FirstChild().(*ast.Emphasis); ok && em.Level == 2 {
				flush()
				title = cleanTitle(nodeText(em, source))
				var rest strings.Builder
				for n := em.NextSibling(); n != nil; n = n.NextSibling() {
					rest.WriteString(nodeText(n, source))
				}
				if line := strings.TrimSpace(rest.String()); line != "" {
					lines = append(lines, line)
				}
				continue
			}
			if line := strings.TrimSpace(nodeText(b, source)); line != "" {
				lines = append(lines, line)
			}
		case *ast.List:
			lines = appendListLines(lines, b, source, 0)
		}
	}
	flush()
	return sections
}

func appendListLines(lines []string, list *ast.List, source []byte, depth int) []string {
	number := list.Start
	indent := strings.Repeat("  ", depth)
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", number)
			number++
		}

		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				lines = appendListLines(lines, nested, source, depth+1)
				continue
			}
			if line := strings.TrimSpace(nodeText(child, source)); line != "" {
				lines = append(lines, indent+marker+" "+line)
				marker = strings.Repeat(" ", len(marker))
			}
		}
	}
	return lines
}

// cleanTitle drops the trailing colon AI titles usually carry
func cleanTitle(title string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), ":"))
}
