// Package dashboard provides the Bubble Tea dashboard interface.
package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dexboard/internal/engine"
	"github.com/verte-zerg/dexboard/internal/model"
	"github.com/verte-zerg/dexboard/internal/stats"
)

const (
	tabCombat = iota
	tabGeography
	tabData
)

const (
	plotHeight = 10
	minBins    = 5
	maxBins    = 100
	binsStep   = 5
)

// TabNames are the accepted values for Config.View, in tab order.
var TabNames = []string{"combat", "geography", "data"}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	chipStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// Config is the initial dashboard state.
type Config struct {
	Criteria engine.Criteria
	Top      int
	Bins     int
	Region   string
	View     string
}

// Model implements the Bubble Tea dashboard UI.
type Model struct {
	table    *model.Table
	criteria engine.Criteria
	opts     stats.Options

	report stats.Report
	errMsg string

	tabs          []string
	activeTab     int
	viewports     []viewport.Model
	records       table.Model
	recordsLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a dashboard model over a loaded table.
func NewModel(tbl *model.Table, cfg Config) *Model {
	m := &Model{
		table:    tbl,
		criteria: cfg.Criteria,
		opts:     stats.Options{Top: cfg.Top, Bins: cfg.Bins, Region: cfg.Region},
		tabs:     []string{"Combat Explorer", "Geography", "Data"},
	}
	if m.opts.Bins <= 0 {
		m.opts.Bins = stats.DefaultBins
	}
	m.activeTab = tabIndex(cfg.View)
	m.initInputs()
	m.initRecordsTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// Report returns the report currently on screen.
func (m *Model) Report() stats.Report {
	return m.report
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.activeTab == tabData {
			m.records.Focus()
		} else {
			m.records.Blur()
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.opts.Bins = nextBins(m.opts.Bins)
			m.refreshReport()
			return m, nil
		case "-":
			m.opts.Bins = prevBins(m.opts.Bins)
			m.refreshReport()
			return m, nil
		case "]":
			m.cycleRegion(1)
			return m, nil
		case "[":
			m.cycleRegion(-1)
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabData {
				m.records.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabData {
				m.records.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabData {
				var cmd tea.Cmd
				m.records, cmd = m.records.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func tabIndex(name string) int {
	for i, tab := range TabNames {
		if strings.EqualFold(strings.TrimSpace(name), tab) {
			return i
		}
	}
	return tabCombat
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + lipgloss.Height(m.renderFilterSummary())
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setRecordsTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabData {
		m.records.Focus()
	} else {
		m.records.Blur()
	}
}

func (m *Model) cycleRegion(step int) {
	if len(m.report.Regions) == 0 {
		return
	}
	m.opts.Region = stats.NextRegion(m.report.Regions, m.report.Focus, step)
	m.refreshReport()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	chips := []string{
		"regions=" + selectionLabel(m.criteria.Regions),
		"categories=" + selectionLabel(m.criteria.Categories),
		fmt.Sprintf("total=%d..%d", m.criteria.Total.Min, m.criteria.Total.Max),
		fmt.Sprintf("bins=%d", m.opts.Bins),
	}
	if m.report.Focus != "" {
		chips = append(chips, "focus="+m.report.Focus)
	}
	return wrapChips("Filters:", chips, m.width)
}

func selectionLabel(values []string) string {
	if len(values) == 0 {
		return "all"
	}
	return strings.Join(values, ",")
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Bins: -/=  Filters: /  Quit: q"
	switch m.activeTab {
	case tabGeography:
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Region: [/]  Filters: /  Quit: q"
	case tabData:
		help = "Nav: left/right  Rows: up/down/g/G  Filters: /  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabData {
		if m.report.Count == 0 {
			return fitLines(emptyMessage(), m.width, height)
		}
		view := tableMutedStyle.Render(m.records.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.table, m.criteria, m.opts)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to build report.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyRecordsTable(m, m.report.Records, width, bodyHeight, true)
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to build report.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabCombat].SetContent(renderCombat(m.report, width))
	m.viewports[tabGeography].SetContent(renderGeography(m.report, width))
}

func renderCombat(report stats.Report, width int) string {
	if report.Count == 0 {
		return emptyMessage()
	}
	cards := renderMetricCards(report, width)
	var buf bytes.Buffer
	if err := stats.RenderCombatWithSize(&buf, report, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render combat view: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderMetricCards(report stats.Report, width int) string {
	cards := []string{metricCard("Records", fmt.Sprintf("%d", report.Count))}
	for _, h := range report.Highlights {
		cards = append(cards, metricCard(h.Label, fmt.Sprintf("%s (%d)", h.Name, h.Value)))
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderGeography(report stats.Report, width int) string {
	if report.Count == 0 {
		return emptyMessage()
	}
	var buf bytes.Buffer
	if err := stats.RenderGeographyWithSize(&buf, report, width, true); err != nil {
		return fmt.Sprintf("Failed to render geography view: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func emptyMessage() string {
	return "No records match the current filters. Press / to change them."
}

func nextBins(n int) int {
	if n < minBins {
		return minBins
	}
	next := (n/binsStep + 1) * binsStep
	if next > maxBins {
		return maxBins
	}
	return next
}

func prevBins(n int) int {
	if n <= minBins+binsStep {
		return minBins
	}
	if n > maxBins {
		return maxBins
	}
	if n%binsStep == 0 {
		return n - binsStep
	}
	return (n / binsStep) * binsStep
}
