// Package console is the numbered-menu front end.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"expenselog/internal/chart"
	"expenselog/internal/core"
	"expenselog/internal/form"
	"expenselog/internal/log"
	"expenselog/internal/report"
)

const menuText = `
Expense Tracker
1. Add Expense
2. View All Expenses
3. Filter Expenses
4. Show Summary
5. Bar Chart
6. Pie Chart
7. Export to CSV
8. Exit
`

// errEOF ends the session when input runs out mid-prompt.
var errEOF = errors.New("end of input")

type Menu struct {
	handler *form.Handler
	in      *bufio.Scanner
	out     io.Writer
	logger  *log.Logger
}

func New(h *form.Handler, in io.Reader, out io.Writer, logger *log.Logger) *Menu {
	if logger == nil {
		logger = log.Discard()
	}
	return &Menu{
		handler: h,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger.WithComponent(log.ComponentConsole),
	}
}

// Run shows the menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(m.out, menuText)
		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return m.finish(err)
		}

		switch choice {
		case "1":
			err = m.addExpense(ctx)
		case "2":
			m.viewAll(ctx)
		case "3":
			err = m.filter(ctx)
		case "4":
			m.print(m.handler.Summary(ctx))
		case "5":
			m.print(m.handler.Chart(ctx, chart.Bar))
		case "6":
			m.print(m.handler.Chart(ctx, chart.Pie))
		case "7":
			m.print(m.handler.Export(ctx))
		case "8":
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please enter a number from 1 to 8.")
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, errEOF) {
		m.logger.Debug("Input closed, leaving menu")
		return nil
	}
	return err
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		fmt.Fprintln(m.out)
		return "", errEOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) addExpense(ctx context.Context) error {
	var in form.AddForm
	var err error

	for {
		if in.Amount, err = m.prompt("Enter amount: "); err != nil {
			return err
		}
		if _, perr := core.ParseAmount(in.Amount); perr == nil {
			break
		}
		fmt.Fprintln(m.out, "Invalid amount. Please enter a number.")
	}

	for {
		if in.Category, err = m.prompt("Enter category: "); err != nil {
			return err
		}
		if in.Category != "" {
			break
		}
		fmt.Fprintln(m.out, "Category cannot be empty.")
	}

	if in.Date, err = m.prompt("Enter date (YYYY-MM-DD) or leave blank for today: "); err != nil {
		return err
	}
	if in.Date != "" {
		if _, perr := core.ParseDate(in.Date); perr != nil {
			fmt.Fprintln(m.out, "Invalid date format. Use YYYY-MM-DD.")
			return nil
		}
	}

	if in.Notes, err = m.prompt("Enter notes (optional): "); err != nil {
		return err
	}

	m.print(m.handler.Add(ctx, in))
	return nil
}

func (m *Menu) viewAll(ctx context.Context) {
	res := m.handler.ViewAll(ctx)
	if res.Failed {
		m.print(res)
		return
	}
	m.table(res.Rows, "No expenses recorded.")
}

func (m *Menu) filter(ctx context.Context) error {
	var in form.FilterForm
	var err error

	if in.Category, err = m.prompt("Filter by category (leave blank for any): "); err != nil {
		return err
	}
	if in.Date, err = m.prompt("Filter by date (YYYY-MM-DD, leave blank for any): "); err != nil {
		return err
	}
	if in.Date != "" {
		if _, perr := core.ParseDate(in.Date); perr != nil {
			fmt.Fprintln(m.out, "Invalid date format. Use YYYY-MM-DD.")
			return nil
		}
	}

	res := m.handler.Filter(ctx, in)
	if res.Failed {
		m.print(res)
		return nil
	}
	m.table(res.Rows, "No matching expenses found.")
	return nil
}

func (m *Menu) table(rows []core.Expense, empty string) {
	if len(rows) == 0 {
		fmt.Fprintln(m.out, empty)
		return
	}
	if err := report.WriteTable(m.out, rows); err != nil {
		m.logger.Error("Failed to write table", log.FieldError, err)
	}
}

// print shows an action result. Field errors are listed one per line.
func (m *Menu) print(res form.Result) {
	fmt.Fprintln(m.out, strings.TrimRight(res.Message, "\n"))
	fields := make([]string, 0, len(res.FieldErrors))
	for f := range res.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(m.out, "  %s: %s\n", f, res.FieldErrors[f])
	}
}
