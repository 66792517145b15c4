// Package form implements the actions of the form front end. Every action
// takes the current field values as an explicit struct and returns what the
// screen should show; handlers keep no state between calls.
package form

import (
	"context"
	"errors"
	"fmt"

	"expenselog/internal/chart"
	"expenselog/internal/core"
	"expenselog/internal/export"
	"expenselog/internal/ledger"
	"expenselog/internal/log"
	"expenselog/internal/report"
)

// Ledger is the part of the expense ledger the form drives.
type Ledger interface {
	AddExpense(ctx context.Context, in ledger.AddExpenseInput) (int64, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	Filter(ctx context.Context, f core.Filter) ([]core.Expense, error)
	Summary(ctx context.Context) (core.Summary, error)
	ExportAll(ctx context.Context) ([]core.Expense, error)
}

// ChartRenderer writes a chart file and returns its path.
type ChartRenderer interface {
	RenderFile(dir string, kind chart.Kind, totals []core.CategoryAmount) (string, error)
}

const (
	msgAdded        = "Expense added successfully."
	msgInvalidInput = "Please enter valid input."
	msgNoData       = "No data to plot."
)

// AddForm holds the add-expense fields as typed by the user.
type AddForm struct {
	Amount   string
	Category string
	Date     string
	Notes    string
}

// FilterForm holds the filter fields.
type FilterForm struct {
	Category string
	Date     string
}

// Result is what an action hands back to the screen.
type Result struct {
	Message string
	Failed  bool
	// FieldErrors maps a field name (amount, category, date, notes) to the
	// inline message shown next to it.
	FieldErrors map[string]string
	// Rows, when non-nil, replaces the table contents.
	Rows []core.Expense
	// ClearInputs asks the screen to empty the add-expense fields.
	ClearInputs bool
}

type Handler struct {
	ledger     Ledger
	charts     ChartRenderer
	chartDir   string
	exportPath string
	logger     *log.Logger
}

type Config struct {
	ChartDir   string
	ExportPath string
	Logger     *log.Logger
}

func NewHandler(l Ledger, charts ChartRenderer, cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	exportPath := cfg.ExportPath
	if exportPath == "" {
		exportPath = export.DefaultFilename
	}
	return &Handler{
		ledger:     l,
		charts:     charts,
		chartDir:   cfg.ChartDir,
		exportPath: exportPath,
		logger:     logger.WithComponent(log.ComponentForm),
	}
}

// Add stores a new expense and refreshes the table on success.
func (h *Handler) Add(ctx context.Context, in AddForm) Result {
	_, err := h.ledger.AddExpense(ctx, ledger.AddExpenseInput{
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Notes:    in.Notes,
	})
	if err != nil {
		return h.failure(err)
	}

	rows, err := h.ledger.ListAll(ctx)
	if err != nil {
		return h.failure(err)
	}
	return Result{Message: msgAdded, Rows: rows, ClearInputs: true}
}

// Filter shows the expenses matching the filter fields.
func (h *Handler) Filter(ctx context.Context, in FilterForm) Result {
	rows, err := h.ledger.Filter(ctx, core.Filter{Category: in.Category, Date: in.Date})
	if err != nil {
		return h.failure(err)
	}
	return Result{Message: fmt.Sprintf("%d matching expense(s).", len(rows)), Rows: rows}
}

// ViewAll shows every expense.
func (h *Handler) ViewAll(ctx context.Context) Result {
	rows, err := h.ledger.ListAll(ctx)
	if err != nil {
		return h.failure(err)
	}
	return Result{Rows: rows}
}

// Summary returns the spending summary as the message.
func (h *Handler) Summary(ctx context.Context) Result {
	s, err := h.ledger.Summary(ctx)
	if err != nil {
		return h.failure(err)
	}
	return Result{Message: report.SummaryText(s)}
}

// Chart renders a chart of the given kind into the chart directory.
func (h *Handler) Chart(ctx context.Context, kind chart.Kind) Result {
	s, err := h.ledger.Summary(ctx)
	if err != nil {
		return h.failure(err)
	}
	path, err := h.charts.RenderFile(h.chartDir, kind, s.ByCategory)
	if errors.Is(err, chart.ErrNoData) {
		return Result{Message: msgNoData}
	}
	if err != nil {
		return h.failure(err)
	}
	h.logger.InfoContext(ctx, "Chart rendered", log.FieldOperation, log.OpChart, log.FieldPath, path)
	return Result{Message: fmt.Sprintf("Chart saved to %s", path)}
}

// Export writes every expense to the export file.
func (h *Handler) Export(ctx context.Context) Result {
	rows, err := h.ledger.ExportAll(ctx)
	if err != nil {
		return h.failure(err)
	}
	if err := export.WriteFile(h.exportPath, rows); err != nil {
		return h.failure(err)
	}
	h.logger.InfoContext(ctx, "CSV export complete", log.FieldOperation, log.OpExport,
		log.FieldPath, h.exportPath, log.FieldCount, len(rows))
	return Result{Message: fmt.Sprintf("Data exported to %s", h.exportPath)}
}

func (h *Handler) failure(err error) Result {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Violations))
		for _, v := range verr.Violations {
			fields[v.Field] = v.Reason
		}
		return Result{Message: msgInvalidInput, Failed: true, FieldErrors: fields}
	}

	h.logger.Error("Form action failed", log.FieldError, err)
	return Result{Message: "Error: " + err.Error(), Failed: true}
}
