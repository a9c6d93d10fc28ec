package parser

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// TruncateTitle shortens title to at most width terminal cells, ending it
// with an ellipsis when cut. Multi-byte characters are never split.
func TruncateTitle(title string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(title) <= width {
		return title
	}
	if width <= len(ellipsis) {
		return ansi.Truncate(title, width, "")
	}
	return ansi.Truncate(title, width, ellipsis)
}

// PadTitle truncates title to width cells and pads it with spaces to exactly
// width cells.
func PadTitle(title string, width int) string {
	title = TruncateTitle(title, width)
	if pad := width - ansi.StringWidth(title); pad > 0 {
		title += strings.Repeat(" ", pad)
	}
	return title
}
