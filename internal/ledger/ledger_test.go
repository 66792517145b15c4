package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenselog/internal/clock"
	"expenselog/internal/core"
	"expenselog/internal/storage"
	"expenselog/internal/storage/memory"
)

var fixedToday = clock.FixedDate(2025, time.June, 15)

func newSQLiteLedger(t *testing.T) *Ledger {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	l := New(repo, WithClock(fixedToday))
	require.NoError(t, l.Initialize(context.Background()))
	return l
}

// Both repositories must behave the same through the ledger.
func forEachBackend(t *testing.T, fn func(t *testing.T, l *Ledger)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteLedger(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, New(memory.New(), WithClock(fixedToday))) })
}

func add(t *testing.T, l *Ledger, amount, category string) int64 {
	t.Helper()
	id, err := l.AddExpense(context.Background(), AddExpenseInput{Amount: amount, Category: category})
	require.NoError(t, err)
	return id
}

func TestInitializeIsIdempotent(t *testing.T) {
	l := newSQLiteLedger(t)
	require.NoError(t, l.Initialize(context.Background()))
	add(t, l, "1", "Food")
	require.NoError(t, l.Initialize(context.Background()))

	all, err := l.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddExpenseStoresRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		ctx := context.Background()
		before, err := l.ListAll(ctx)
		require.NoError(t, err)

		id, err := l.AddExpense(ctx, AddExpenseInput{
			Amount:   "12.50",
			Category: "Food",
			Date:     "2025-01-03",
			Notes:    "groceries",
		})
		require.NoError(t, err)

		after, err := l.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)

		got := after[len(after)-1]
		assert.Equal(t, id, got.ID)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
		assert.Equal(t, "Food", got.Category)
		assert.Equal(t, "2025-01-03", got.Date)
		assert.Equal(t, "groceries", got.Notes)
	})
}

func TestAddExpenseDefaultsDateToToday(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		add(t, l, "3", "Coffee")
		all, err := l.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "2025-06-15", all[0].Date)
	})
}

func TestAddExpenseCanonicalizesCategory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		add(t, l, "3", "  eating OUT ")
		all, err := l.ListAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Eating out", all[0].Category)
	})
}

func TestAddExpenseAcceptsAnyDecimal(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		add(t, l, "-5", "Refund")
		add(t, l, "0", "Free")
		add(t, l, "7,25", "Food")
		all, err := l.ListAll(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.True(t, all[2].Amount.Equal(decimal.RequireFromString("7.25")))
	})
}

func TestAddExpenseAmountLimits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		ctx := context.Background()
		for _, amount := range []string{"1e400", "-1e400", "1e-400"} {
			_, err := l.AddExpense(ctx, AddExpenseInput{Amount: amount, Category: "Food"})
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr, amount)
			assert.Equal(t, core.ErrInvalidAmount.Error(), verr.Reason("amount"))
		}

		add(t, l, "1e300", "Big")
		add(t, l, "1e-300", "Tiny")

		all, err := l.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("1e300")))
		assert.True(t, all[1].Amount.Equal(decimal.RequireFromString("1e-300")))

		_, err = l.Summary(ctx)
		require.NoError(t, err)
	})
}

func TestAddExpenseValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     AddExpenseInput
		fields []string
	}{
		{"non-numeric amount", AddExpenseInput{Amount: "ten", Category: "Food"}, []string{"amount"}},
		{"missing amount", AddExpenseInput{Category: "Food"}, []string{"amount"}},
		{"empty category", AddExpenseInput{Amount: "1", Category: "   "}, []string{"category"}},
		{"malformed date", AddExpenseInput{Amount: "1", Category: "Food", Date: "15/06/2025"}, []string{"date"}},
		{"impossible date", AddExpenseInput{Amount: "1", Category: "Food", Date: "2025-02-30"}, []string{"date"}},
		{"everything wrong", AddExpenseInput{Amount: "x", Date: "soon"}, []string{"amount", "category", "date"}},
	}

	forEachBackend(t, func(t *testing.T, l *Ledger) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := l.AddExpense(context.Background(), tt.in)

				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, core.ErrValidation)
				got := make([]string, 0, len(verr.Violations))
				for _, v := range verr.Violations {
					got = append(got, v.Field)
				}
				assert.Equal(t, tt.fields, got)
			})
		}

		all, err := l.ListAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all, "rejected input must not be stored")
	})
}

func TestFilter(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		ctx := context.Background()
		first := add(t, l, "10", "Food")
		add(t, l, "800", "Rent")
		third := add(t, l, "5", "Food")

		got, err := l.Filter(ctx, core.Filter{Category: "Food"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0].ID)
		assert.Equal(t, third, got[1].ID)

		got, err = l.Filter(ctx, core.Filter{Category: "food"})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = l.Filter(ctx, core.Filter{Date: "2025-06-15"})
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = l.Filter(ctx, core.Filter{Category: "Travel"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		got, err = l.Filter(ctx, core.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestFilterFoldsASCIICaseOnly(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		ctx := context.Background()
		add(t, l, "10", "Élan")
		add(t, l, "4", "Food")

		got, err := l.Filter(ctx, core.Filter{Category: "élan"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = l.Filter(ctx, core.Filter{Category: "ÉLAN"})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = l.Filter(ctx, core.Filter{Category: "fOOD"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestFilterRejectsMalformedDate(t *testing.T) {
	l := New(memory.New())
	_, err := l.Filter(context.Background(), core.Filter{Date: "June 1"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, core.ErrInvalidDate.Error(), verr.Reason("date"))
}

func TestSummary(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		ctx := context.Background()

		empty, err := l.Summary(ctx)
		require.NoError(t, err)
		assert.True(t, empty.Total.IsZero())
		assert.Empty(t, empty.ByCategory)

		categories := []string{"Food", "Rent", "Travel"}
		total := decimal.Zero
		perCategory := map[string]decimal.Decimal{}
		for i := 0; i < 25; i++ {
			amount := decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2)
			category := categories[i%len(categories)]
			_, err := l.AddExpense(ctx, AddExpenseInput{
				Amount:   amount.StringFixed(2),
				Category: category,
				Notes:    gofakeit.Sentence(4),
			})
			require.NoError(t, err)
			total = total.Add(amount)
			perCategory[category] = perCategory[category].Add(amount)
		}

		s, err := l.Summary(ctx)
		require.NoError(t, err)
		assert.True(t, s.Total.Equal(total), "total %s != %s", s.Total, total)
		require.Len(t, s.ByCategory, len(categories))
		for _, c := range s.ByCategory {
			assert.True(t, c.Amount.Equal(perCategory[c.Name]), "%s: %s != %s", c.Name, c.Amount, perCategory[c.Name])
		}
	})
}

func TestSummaryGroupsByExactCategory(t *testing.T) {
	repo := memory.NewSeeded([]core.Expense{
		{ID: 1, Amount: decimal.NewFromInt(1), Category: "food", Date: "2025-01-01"},
		{ID: 2, Amount: decimal.NewFromInt(2), Category: "Food", Date: "2025-01-01"},
	})
	s, err := New(repo).Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.ByCategory, 2)
}

func TestExportAllMatchesListAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l *Ledger) {
		add(t, l, "1", "A")
		add(t, l, "2", "B")
		listed, err := l.ListAll(context.Background())
		require.NoError(t, err)
		exported, err := l.ExportAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, listed, exported)
	})
}

func TestStorageErrorsPropagate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO expenses").WillReturnError(errors.New("database is locked"))
	mock.ExpectQuery("SELECT (.+) FROM expenses").WillReturnError(errors.New("no such table: expenses"))

	l := New(storage.NewFromDB(db), WithClock(fixedToday))

	_, err = l.AddExpense(context.Background(), AddExpenseInput{Amount: "1", Category: "Food"})
	var serr *core.StorageError
	require.ErrorAs(t, err, &serr)

	_, err = l.Summary(context.Background())
	require.ErrorAs(t, err, &serr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
