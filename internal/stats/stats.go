// Package stats builds dashboard reports and renders them as terminal text.
package stats

import (
	"fmt"
	"io"
)

const emptyMessage = "No records match the current filters."

// RenderSummary prints the record count and the combat highlights.
func RenderSummary(w io.Writer, report Report) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Records: %d\n", report.Count); err != nil {
		return err
	}
	if report.Count == 0 {
		_, err := fmt.Fprintf(w, "%s\n\n", emptyMessage)
		return err
	}
	for _, h := range report.Highlights {
		if _, err := fmt.Fprintf(w, "%s: %s (%s %d)\n", h.Label, h.Name, h.Field, h.Value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCombat prints the attack/defense scatter and the health histogram.
func RenderCombat(w io.Writer, report Report) error {
	return RenderCombatWithSize(w, report, 0, defaultPlotHeight, false)
}

// RenderCombatWithSize prints the combat section sized to a given total width.
func RenderCombatWithSize(w io.Writer, report Report, totalWidth, height int, useColor bool) error {
	if report.Count == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotScatterWithColor(w, "Attack vs Defense", "attack", "defense", report.Scatter, width, height, useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	title := fmt.Sprintf("Health Distribution (%d bins)", len(report.Health))
	return RenderHistogram(w, title, report.Health, width, height, useColor)
}

// RenderGeography prints regional means, the focused region's top records and
// the category distribution.
func RenderGeography(w io.Writer, report Report) error {
	return RenderGeographyWithSize(w, report, 0, false)
}

// RenderGeographyWithSize prints the geography section sized to a given total width.
func RenderGeographyWithSize(w io.Writer, report Report, totalWidth int, useColor bool) error {
	if report.Count == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}
	means := make([]Bar, 0, len(report.RegionMean))
	for _, g := range report.RegionMean {
		means = append(means, Bar{Label: RegionLabel(g.Key), Value: g.Mean, Note: fmt.Sprintf("(n=%d)", g.Count)})
	}
	if err := RenderBars(w, "Mean Total by Region", means, totalWidth, useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Top %d in %s\n", len(report.Top), RegionLabel(report.Focus)); err != nil {
		return err
	}
	if err := RenderRecordTable(w, report.Top); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	shares := make([]Bar, 0, len(report.Categories))
	for _, c := range report.Categories {
		shares = append(shares, Bar{Label: c.Key, Value: float64(c.Count), Note: fmt.Sprintf("%.1f%%", c.Share*100)})
	}
	return RenderBars(w, "Category Distribution", shares, totalWidth, useColor)
}

// RenderReport prints every section of the report.
func RenderReport(w io.Writer, report Report) error {
	if err := RenderSummary(w, report); err != nil {
		return err
	}
	if report.Count == 0 {
		return nil
	}
	if err := RenderCombat(w, report); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderGeography(w, report)
}
