package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	barChar      = "█"
	minBarWidth  = 10
	maxLabelCols = 24
)

// Bar is one labelled horizontal bar.
type Bar struct {
	Label string
	Value float64
	// Note is printed after the value, e.g. a percentage.
	Note string
}

// RenderBars draws horizontal bars scaled to the largest value. totalWidth
// bounds the whole line; zero means the terminal width.
func RenderBars(w io.Writer, title string, bars []Bar, totalWidth int, forceColor bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(bars) == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}

	labelWidth := 0
	valueWidth := 0
	maxValue := 0.0
	values := make([]string, len(bars))
	for i, b := range bars {
		if lw := displayWidth(b.Label); lw > labelWidth {
			labelWidth = lw
		}
		values[i] = formatNumber(math.Round(b.Value*10) / 10)
		if b.Note != "" {
			values[i] += " " + b.Note
		}
		if vw := displayWidth(values[i]); vw > valueWidth {
			valueWidth = vw
		}
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}
	if labelWidth > maxLabelCols {
		labelWidth = maxLabelCols
	}
	barWidth := totalWidth - labelWidth - valueWidth - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	useColor := shouldUseColor(w, forceColor)
	for i, b := range bars {
		length := 0
		if maxValue > 0 && b.Value > 0 {
			length = int(math.Round(b.Value / maxValue * float64(barWidth)))
			if length == 0 {
				length = 1
			}
		}
		bar := strings.Repeat(barChar, length)
		if useColor && length > 0 {
			bar = colorPalette[i%len(colorPalette)].code + bar + colorReset
		}
		label := runewidth.FillRight(truncate(b.Label, labelWidth), labelWidth)
		line := fmt.Sprintf("%s %s%s %s", label, bar, strings.Repeat(" ", barWidth-length), values[i])
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
