package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultBins is the histogram resolution when none is configured.
const DefaultBins = 30

const blockChars = " ▁▂▃▄▅▆▇█"

// Bin is one equal-width histogram bucket covering [Lo, Hi). The last bin
// also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram splits values into n equal-width bins between their min and max.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	lo, hi := seriesMinMaxSingle(values)
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// RenderHistogram draws bins as vertical bars of the given height. Each bin
// gets an equal share of width columns.
func RenderHistogram(w io.Writer, title string, bins []Bin, width, height int, forceColor bool) error {
	if len(bins) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	colWidth := width / len(bins)
	if colWidth < 1 {
		colWidth = 1
	}

	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	topLabel := fmt.Sprintf("%d", maxCount)
	labelWidth := runewidth.StringWidth(topLabel)
	useColor := shouldUseColor(w, forceColor)
	barColor := colorPalette[0].code

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	blocks := []rune(blockChars)
	levels := len(blocks) - 1
	for row := 0; row < height; row++ {
		label := ""
		switch row {
		case 0:
			label = topLabel
		case height - 1:
			label = "0"
		}
		var line strings.Builder
		line.WriteString(runewidth.FillLeft(label, labelWidth))
		line.WriteString(axisSeparator)
		rowFromBottom := height - 1 - row
		for _, b := range bins {
			filled := 0
			if maxCount > 0 {
				filled = int(math.Round(float64(b.Count) / float64(maxCount) * float64(height*levels)))
			}
			part := filled - rowFromBottom*levels
			if part < 0 {
				part = 0
			}
			if part > levels {
				part = levels
			}
			cell := strings.Repeat(string(blocks[part]), colWidth)
			if useColor && part > 0 {
				cell = barColor + cell + colorReset
			}
			line.WriteString(cell)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	axis := fmt.Sprintf("%s%s%s", strings.Repeat(" ", labelWidth), axisSeparator, rangeCaption(bins[0].Lo, bins[len(bins)-1].Hi, colWidth*len(bins)))
	if _, err := fmt.Fprintln(w, axis); err != nil {
		return err
	}
	return nil
}

func seriesMinMaxSingle(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func rangeCaption(lo, hi float64, width int) string {
	left := formatNumber(lo)
	right := formatNumber(hi)
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
