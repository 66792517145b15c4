package form

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenselog/internal/chart"
	"expenselog/internal/clock"
	"expenselog/internal/core"
	"expenselog/internal/export"
	"expenselog/internal/ledger"
	"expenselog/internal/storage/memory"
)

func newHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	l := ledger.New(memory.New(), ledger.WithClock(clock.FixedDate(2025, time.March, 2)))
	h := NewHandler(l, chart.NewRenderer(chart.SVG, 400, 300), Config{
		ChartDir:   dir,
		ExportPath: filepath.Join(dir, export.DefaultFilename),
	})
	return h, dir
}

func TestAddSuccessRefreshesTable(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()

	res := h.Add(ctx, AddForm{Amount: "12.50", Category: "food", Notes: "lunch"})
	assert.False(t, res.Failed)
	assert.Equal(t, "Expense added successfully.", res.Message)
	assert.True(t, res.ClearInputs)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Food", res.Rows[0].Category)
	assert.Equal(t, "2025-03-02", res.Rows[0].Date)
}

func TestAddReportsFieldErrors(t *testing.T) {
	h, _ := newHandler(t)

	res := h.Add(context.Background(), AddForm{Amount: "abc", Category: " ", Date: "02/03/2025"})
	assert.True(t, res.Failed)
	assert.Equal(t, "Please enter valid input.", res.Message)
	assert.Equal(t, core.ErrInvalidAmount.Error(), res.FieldErrors["amount"])
	assert.Equal(t, core.ErrEmptyCategory.Error(), res.FieldErrors["category"])
	assert.Equal(t, core.ErrInvalidDate.Error(), res.FieldErrors["date"])
	assert.Nil(t, res.Rows)
	assert.False(t, res.ClearInputs)

	all := h.ViewAll(context.Background())
	assert.Empty(t, all.Rows)
}

func TestFilter(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()
	h.Add(ctx, AddForm{Amount: "5", Category: "Food", Date: "2025-01-01"})
	h.Add(ctx, AddForm{Amount: "7", Category: "Rent", Date: "2025-01-01"})
	h.Add(ctx, AddForm{Amount: "9", Category: "Food", Date: "2025-01-02"})

	res := h.Filter(ctx, FilterForm{Category: "FOOD"})
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, "2 matching expense(s).", res.Message)

	res = h.Filter(ctx, FilterForm{Category: "food", Date: "2025-01-02"})
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "9.00", res.Rows[0].Amount.StringFixed(2))

	res = h.Filter(ctx, FilterForm{Category: "Travel"})
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)

	res = h.Filter(ctx, FilterForm{Date: "yesterday"})
	assert.True(t, res.Failed)
	assert.Contains(t, res.FieldErrors, "date")
}

func TestSummary(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()
	h.Add(ctx, AddForm{Amount: "10", Category: "Food"})
	h.Add(ctx, AddForm{Amount: "2.5", Category: "Food"})
	h.Add(ctx, AddForm{Amount: "40", Category: "Rent"})

	res := h.Summary(ctx)
	want := "Total Spent: $52.50\n\nSpending by Category:\nFood: $12.50\nRent: $40.00\n"
	assert.Equal(t, want, res.Message)
}

func TestChart(t *testing.T) {
	h, dir := newHandler(t)
	ctx := context.Background()

	res := h.Chart(ctx, chart.Pie)
	assert.Equal(t, "No data to plot.", res.Message)
	assert.False(t, res.Failed)

	h.Add(ctx, AddForm{Amount: "10", Category: "Food"})
	res = h.Chart(ctx, chart.Bar)
	assert.False(t, res.Failed)
	assert.Equal(t, "Chart saved to "+filepath.Join(dir, "bar_chart.svg"), res.Message)
	assert.FileExists(t, filepath.Join(dir, "bar_chart.svg"))
}

func TestExport(t *testing.T) {
	h, dir := newHandler(t)
	ctx := context.Background()
	h.Add(ctx, AddForm{Amount: "3.10", Category: "Coffee", Date: "2025-02-01"})

	res := h.Export(ctx)
	path := filepath.Join(dir, export.DefaultFilename)
	assert.Equal(t, "Data exported to "+path, res.Message)

	rows, err := export.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee", rows[0].Category)
}

type brokenLedger struct{ *ledger.Ledger }

func (brokenLedger) ListAll(context.Context) ([]core.Expense, error) {
	return nil, core.NewStorageError("list", errors.New("disk I/O error"))
}

func TestStorageFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(brokenLedger{ledger.New(memory.New())}, chart.NewRenderer(chart.PNG, 0, 0), Config{ChartDir: dir})

	res := h.ViewAll(context.Background())
	assert.True(t, res.Failed)
	assert.Equal(t, "Error: storage list: disk I/O error", res.Message)
	assert.Empty(t, res.FieldErrors)

	_, err := os.Stat(filepath.Join(dir, export.DefaultFilename))
	assert.True(t, os.IsNotExist(err))
}
