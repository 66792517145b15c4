// Package tui is the terminal form front end. It lays out the add and filter
// fields, the action keys and the expense table, and hands every action to
// form.Handler.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"expenselog/internal/chart"
	"expenselog/internal/form"
	"expenselog/internal/report"
)

const (
	fieldAmount = iota
	fieldCategory
	fieldDate
	fieldNotes
	fieldFilterCategory
	fieldFilterDate
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Amount",
	"Category",
	"Date (YYYY-MM-DD)",
	"Notes",
	"Filter category",
	"Filter date",
}

// validation keys reported by the add action, by input index
var fieldKeys = [fieldCount]string{"amount", "category", "date", "notes", "", "date"}

const helpText = "tab/shift+tab move • enter add or filter • ctrl+l view all • ctrl+s summary\n" +
	"ctrl+g bar chart • ctrl+o pie chart • ctrl+x export CSV • esc quit"

// resultMsg carries the outcome of a form action back into Update.
type resultMsg struct {
	action string
	res    form.Result
}

type Model struct {
	ctx     context.Context
	handler *form.Handler
	inputs  [fieldCount]textinput.Model
	focus   int

	rows        string
	status      string
	failed      bool
	fieldErrors map[string]string
	// errorsFrom is the action that produced fieldErrors
	errorsFrom string
	detail     string
}

func New(ctx context.Context, h *form.Handler) Model {
	m := Model{ctx: ctx, handler: h}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.Width = 32
		m.inputs[i] = ti
	}
	m.inputs[fieldDate].Placeholder = "today"
	m.inputs[fieldNotes].Placeholder = "optional"
	m.inputs[fieldFilterCategory].Placeholder = "any"
	m.inputs[fieldFilterDate].Placeholder = "any"
	m.inputs[fieldAmount].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run("view", m.handler.ViewAll))
}

func (m Model) run(action string, fn func(context.Context) form.Result) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{action: action, res: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			cmd := m.moveFocus(1)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.moveFocus(-1)
			return m, cmd
		case "enter":
			if m.focus <= fieldNotes {
				return m, m.run("add", m.addAction())
			}
			return m, m.run("filter", m.filterAction())
		case "ctrl+l":
			return m, m.run("view", m.handler.ViewAll)
		case "ctrl+s":
			return m, m.run("summary", m.handler.Summary)
		case "ctrl+g":
			return m, m.run("chart", m.chartAction(chart.Bar))
		case "ctrl+o":
			return m, m.run("chart", m.chartAction(chart.Pie))
		case "ctrl+x":
			return m, m.run("export", m.handler.Export)
		}

	case resultMsg:
		m.apply(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) addAction() func(context.Context) form.Result {
	in := form.AddForm{
		Amount:   m.inputs[fieldAmount].Value(),
		Category: m.inputs[fieldCategory].Value(),
		Date:     m.inputs[fieldDate].Value(),
		Notes:    m.inputs[fieldNotes].Value(),
	}
	return func(ctx context.Context) form.Result { return m.handler.Add(ctx, in) }
}

func (m Model) filterAction() func(context.Context) form.Result {
	in := form.FilterForm{
		Category: m.inputs[fieldFilterCategory].Value(),
		Date:     m.inputs[fieldFilterDate].Value(),
	}
	return func(ctx context.Context) form.Result { return m.handler.Filter(ctx, in) }
}

func (m Model) chartAction(kind chart.Kind) func(context.Context) form.Result {
	return func(ctx context.Context) form.Result { return m.handler.Chart(ctx, kind) }
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	return m.inputs[m.focus].Focus()
}

func (m *Model) apply(msg resultMsg) {
	res := msg.res
	m.status = res.Message
	m.failed = res.Failed
	m.fieldErrors = res.FieldErrors
	m.errorsFrom = msg.action
	m.detail = ""

	if msg.action == "summary" && !res.Failed {
		m.detail = res.Message
		m.status = ""
	}
	if res.Rows != nil {
		m.rows = report.Table(res.Rows)
	}
	if res.ClearInputs {
		for i := fieldAmount; i <= fieldNotes; i++ {
			m.inputs[i].Reset()
		}
	}
}

// fieldError returns the inline message for input i, if the last action
// rejected it.
func (m Model) fieldError(i int) string {
	key := fieldKeys[i]
	if key == "" || m.fieldErrors == nil {
		return ""
	}
	isAddField := i <= fieldNotes
	if isAddField != (m.errorsFrom == "add") {
		return ""
	}
	return m.fieldErrors[key]
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Expense Tracker\n\n")

	for i := range m.inputs {
		if i == fieldFilterCategory {
			b.WriteString("\n")
		}
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%-18s %s", cursor, fieldLabels[i]+":", m.inputs[i].View())
		if msg := m.fieldError(i); msg != "" {
			fmt.Fprintf(&b, "  ! %s", msg)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.failed {
			b.WriteString("Error: ")
		}
		b.WriteString(strings.TrimPrefix(m.status, "Error: "))
		b.WriteString("\n\n")
	}
	if m.detail != "" {
		b.WriteString(m.detail)
		b.WriteString("\n")
	}
	b.WriteString(m.rows)
	b.WriteString("\n")
	b.WriteString(helpText)
	b.WriteString("\n")
	return b.String()
}

// Run starts the form and blocks until the user quits.
func Run(ctx context.Context, h *form.Handler) error {
	_, err := tea.NewProgram(New(ctx, h), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
