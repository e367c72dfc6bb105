package dashboard

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dexboard/internal/model"
	"github.com/verte-zerg/dexboard/internal/stats"
)

var recordColumnWidths = []int{16, 10, 12, 6, 7, 5, 6, 5}

func (m *Model) initRecordsTable() {
	m.records = table.New(
		table.WithColumns(recordColumns()),
		table.WithHeight(1),
	)
	m.records.SetStyles(recordsTableStyles())
}

func recordColumns() []table.Column {
	cols := make([]table.Column, len(stats.RecordHeaders))
	for i, title := range stats.RecordHeaders {
		cols[i] = table.Column{Title: title, Width: recordColumnWidths[i]}
	}
	return cols
}

func recordRows(records []model.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row(stats.RecordRow(r)))
	}
	return rows
}

func applyRecordsTable(m *Model, records []model.Record, width, height int, force bool) {
	rows := recordRows(records)
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.recordsLayout.width == width &&
		m.recordsLayout.height == viewportHeight &&
		m.recordsLayout.rowCount == len(rows) {
		return
	}
	m.records.SetRows(rows)
	if m.records.Cursor() >= len(rows) {
		m.records.GotoTop()
	}
	m.recordsLayout.rowCount = len(rows)
	m.recordsLayout.width = 0
	m.setRecordsTableSize(width, height)
}

func (m *Model) setRecordsTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.recordsLayout.width == width && m.recordsLayout.height == viewportHeight {
		return
	}
	m.recordsLayout.width = width
	m.recordsLayout.height = viewportHeight
	m.records.SetWidth(width)
	m.records.SetHeight(viewportHeight)
	viewportHeight = m.adjustRecordsTableHeight(height)
	if m.recordsLayout.height != viewportHeight {
		m.recordsLayout.height = viewportHeight
		m.records.SetHeight(viewportHeight)
	}
}

func recordsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// adjustRecordsTableHeight compensates for the header border so the rendered
// table fills exactly bodyHeight lines.
func (m *Model) adjustRecordsTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.records.Height()
	viewHeight := lipgloss.Height(m.records.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.records.SetHeight(height)
	viewHeight = lipgloss.Height(m.records.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}
