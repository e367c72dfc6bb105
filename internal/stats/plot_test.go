package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotScatter(t *testing.T) {
	var buf bytes.Buffer
	err := PlotScatter(&buf, "Test Plot", "attack", "defense", []Series{
		{Name: "fire", Points: []Point{{X: 0, Y: 0, Label: "a"}, {X: 10, Y: 10, Label: "b"}}},
		{Name: "water", Points: []Point{{X: 5, Y: 5, Label: "c"}}},
		{Name: "empty"},
	}, 10, 4)
	if err != nil {
		t.Fatalf("PlotScatter failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "defense (y) vs attack (x)") {
		t.Fatalf("expected axis caption in output")
	}
	if !strings.Contains(out, "fire (2)") || !strings.Contains(out, "water (1)") {
		t.Fatalf("expected legend entries in output:\n%s", out)
	}
	if strings.Contains(out, "empty") {
		t.Fatalf("series without points should be skipped:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+1+4+1+1 {
		t.Fatalf("expected 8 lines of output, got %d", len(lines))
	}
	top := []rune(lines[2])
	if top[len(top)-1] != brailleFromMask(0x08) {
		t.Fatalf("expected max point in top right cell, got %q", lines[2])
	}
	if !strings.Contains(lines[5], axisSeparator+string(brailleFromMask(0x40))) {
		t.Fatalf("expected min point in bottom left cell, got %q", lines[5])
	}
	if !strings.HasPrefix(lines[2], "   10") {
		t.Fatalf("expected max label on top row, got %q", lines[2])
	}
}

func TestPlotScatterNoPoints(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScatter(&buf, "Empty", "x", "y", nil, 10, 4); err != nil {
		t.Fatalf("PlotScatter failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + displayWidth(axisSeparator)
	total := 80
	if got := PlotWidthFor(total); got != total-axisWidth {
		t.Fatalf("expected width %d, got %d", total-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
