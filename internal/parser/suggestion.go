package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Suggestion is one task recommendation from the AI focus-time advice
type Suggestion struct {
	Task     string
	Amount   int
	Unit     string // hour(s) or minute(s)
	Priority string
}

// Duration returns the suggested focus time
func (s Suggestion) Duration() time.Duration {
	if strings.HasPrefix(s.Unit, "hour") {
		return time.Duration(s.Amount) * time.Hour
	}
	return time.Duration(s.Amount) * time.Minute
}

// String formats the suggestion the way the advice states it
func (s Suggestion) String() string {
	return fmt.Sprintf("%d %s (%s)", s.Amount, s.Unit, s.Priority)
}

// amountRegex matches the text that follows the bold task label
var amountRegex = regexp.MustCompile(`^\s*(\d+)\s+(hours?|minutes?)\s+\((.+?)\)`)

// ParseSuggestions extracts suggestions from markdown advice of the form
//
//   - **Read chapter 3:** 2 hours (High)
//
// List items that do not follow that shape are skipped.
func ParseSuggestions(raw string) []Suggestion {
	source := []byte(raw)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var suggestions []Suggestion
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if item, ok := n.(*ast.ListItem); ok {
			if s, ok := parseSuggestionItem(item, source); ok {
				suggestions = append(suggestions, s)
			}
		}
		return ast.WalkContinue, nil
	})
	return suggestions
}

func parseSuggestionItem(item *ast.ListItem, source []byte) (Suggestion, bool) {
	block := item.FirstChild()
	if block == nil {
		return Suggestion{}, false
	}

	var (
		label    string
		rest     strings.Builder
		hasLabel bool
	)
	for child := block.FirstChild(); child != nil; child = child.NextSibling() {
		if em, ok := child.(*ast.Emphasis); ok && em.Level == 2 && !hasLabel {
			label = nodeText(em, source)
			hasLabel = true
			continue
		}
		if hasLabel {
			rest.WriteString(nodeText(child, source))
		}
	}
	if !hasLabel {
		return Suggestion{}, false
	}

	label = strings.TrimSpace(label)
	if !strings.HasSuffix(label, ":") {
		return Suggestion{}, false
	}
	label = strings.TrimSpace(strings.TrimSuffix(label, ":"))

	matches := amountRegex.FindStringSubmatch(rest.String())
	if len(matches) != 4 || label == "" {
		return Suggestion{}, false
	}
	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return Suggestion{}, false
	}

	return Suggestion{
		Task:     label,
		Amount:   amount,
		Unit:     matches[2],
		Priority: strings.TrimSpace(matches[3]),
	}, true
}

// nodeText concatenates the literal text below n
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
