package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/dexboard/internal/engine"
	"github.com/verte-zerg/dexboard/internal/model"
)

const (
	inputRegions = iota
	inputCategories
	inputMinTotal
	inputMaxTotal
)

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Regions: "),
		newFilterInput("Categories: "),
		newFilterInput("Min total: "),
		newFilterInput("Max total: "),
	}
	m.filterInputs[inputRegions].Placeholder = "all"
	m.filterInputs[inputCategories].Placeholder = "all"
	m.setInputsFromCriteria()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromCriteria() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[inputRegions].SetValue(strings.Join(m.criteria.Regions, ", "))
	m.filterInputs[inputCategories].SetValue(strings.Join(m.criteria.Categories, ", "))
	m.filterInputs[inputMinTotal].SetValue(strconv.Itoa(m.criteria.Total.Min))
	m.filterInputs[inputMaxTotal].SetValue(strconv.Itoa(m.criteria.Total.Max))
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "")
	lines = append(lines, headerStyle.Render(optionLine("Regions", m.options(model.FieldRegion), m.width)))
	lines = append(lines, headerStyle.Render(optionLine("Categories", m.options(model.FieldCategory), m.width)))
	bounds := m.table.TotalBounds()
	lines = append(lines, headerStyle.Render(fmt.Sprintf("Total range in data: %d..%d", bounds.Min, bounds.Max)))
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

// options lists the values of field across the whole table so that a
// selection can be widened again after narrowing it.
func (m *Model) options(field model.Field) []string {
	values, err := engine.Values(engine.NewView(m.table.Records()), field)
	if err != nil {
		return nil
	}
	return values
}

func optionLine(label string, values []string, width int) string {
	if len(values) == 0 {
		return label + ": none"
	}
	return truncateLine(label+": "+strings.Join(values, ", "), width)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromCriteria()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		criteria, err := parseCriteria(
			m.filterInputs[inputRegions].Value(),
			m.filterInputs[inputCategories].Value(),
			m.filterInputs[inputMinTotal].Value(),
			m.filterInputs[inputMaxTotal].Value(),
			m.table.TotalBounds(),
		)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.criteria = criteria
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// parseCriteria turns the filter form into criteria. Blank bounds fall back
// to the table bounds.
func parseCriteria(regions, categories, minInput, maxInput string, bounds model.Range) (engine.Criteria, error) {
	total := bounds
	if v := strings.TrimSpace(minInput); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return engine.Criteria{}, fmt.Errorf("invalid min total (use integer)")
		}
		total.Min = parsed
	}
	if v := strings.TrimSpace(maxInput); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return engine.Criteria{}, fmt.Errorf("invalid max total (use integer)")
		}
		total.Max = parsed
	}
	if total.Min > total.Max {
		return engine.Criteria{}, fmt.Errorf("invalid total range (min %d > max %d)", total.Min, total.Max)
	}
	total = total.Clamp(bounds)
	return engine.Criteria{
		Regions:    engine.ParseSelection(regions),
		Categories: engine.ParseSelection(categories),
		Total:      total,
	}, nil
}
