package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledChip struct {
	s     string
	width int
}

// wrapChips renders a label followed by chips, breaking lines between chips
// so that no line exceeds width. A chip wider than width gets its own line.
func wrapChips(label string, chips []string, width int) string {
	items := make([]styledChip, 0, len(chips))
	for _, c := range chips {
		items = append(items, styledChip{s: chipStyle.Render(c), width: runewidth.StringWidth(c)})
	}
	var out strings.Builder
	out.WriteString(headerStyle.Render(label))
	lineWidth := runewidth.StringWidth(label)
	for _, item := range items {
		if width > 0 && lineWidth+1+item.width > width && lineWidth > 0 {
			out.WriteRune('\n')
			out.WriteString(item.s)
			lineWidth = item.width
			continue
		}
		out.WriteRune(' ')
		out.WriteString(item.s)
		lineWidth += 1 + item.width
	}
	return out.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
