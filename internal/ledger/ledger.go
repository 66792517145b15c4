// Package ledger owns the expense records: it validates input, stores it and
// answers the read queries both front ends use.
package ledger

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"expenselog/internal/clock"
	"expenselog/internal/core"
	"expenselog/internal/log"
)

// Repository is the storage the ledger runs on.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, e core.NewExpense) (int64, error)
	List(ctx context.Context, f core.Filter) ([]core.Expense, error)
	Categories(ctx context.Context) ([]string, error)
	RenameCategory(ctx context.Context, rn core.CategoryRename) (int64, error)
	RenameCategories(ctx context.Context, renames []core.CategoryRename) ([]int64, error)
}

// AddExpenseInput is raw user input for a new expense. Amount and Date are
// kept as text so parsing failures surface as validation errors.
type AddExpenseInput struct {
	Amount   string `json:"amount" validate:"required,amount"`
	Category string `json:"category" validate:"required"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes    string `json:"notes"`
}

type filterInput struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type Ledger struct {
	repo     Repository
	clock    clock.Clock
	validate *validator.Validate
	logger   *log.Logger
}

type Option func(*Ledger)

// WithClock sets the time source used for default dates.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger.WithComponent(log.ComponentLedger) }
}

func New(repo Repository, opts ...Option) *Ledger {
	l := &Ledger{
		repo:     repo,
		clock:    clock.System{},
		validate: newValidator(),
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize makes sure the expenses table exists. Safe on every start.
func (l *Ledger) Initialize(ctx context.Context) error {
	if err := l.repo.EnsureSchema(ctx); err != nil {
		l.logger.ErrorContext(ctx, "Schema initialization failed",
			log.NewFields().WithOperation(log.OpInit).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return err
	}
	return nil
}

// AddExpense validates in, stores it and returns the assigned id. A blank
// date means today according to the ledger's clock; the category is stored
// in canonical form.
func (l *Ledger) AddExpense(ctx context.Context, in AddExpenseInput) (int64, error) {
	in.Amount = strings.TrimSpace(in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)

	if err := l.validate.StructCtx(ctx, in); err != nil {
		err = toValidationError(err)
		l.logger.WarnContext(ctx, "Expense rejected",
			log.NewFields().WithOperation(log.OpAdd).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		return 0, err
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		var v core.ValidationError
		v.Add("amount", err.Error())
		return 0, v.OrNil()
	}

	e := core.NewExpense{
		Amount:   amount,
		Category: core.CanonicalCategory(in.Category),
		Date:     in.Date,
		Notes:    in.Notes,
	}
	if e.Date == "" {
		e.Date = clock.Today(l.clock)
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := l.repo.Insert(ctx, e)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to store expense",
			log.NewFields().WithOperation(log.OpAdd).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return 0, err
	}

	l.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithOperation(log.OpAdd).WithExpense(id, amount.String(), e.Category, e.Date).ToSlice()...)
	return id, nil
}

// ListAll returns every expense in insertion order.
func (l *Ledger) ListAll(ctx context.Context) ([]core.Expense, error) {
	return l.repo.List(ctx, core.Filter{})
}

// Filter returns the expenses matching f, in insertion order. Category
// matching ignores case; date matching is exact. Nothing matching is an
// empty result, not an error.
func (l *Ledger) Filter(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Date = strings.TrimSpace(f.Date)

	if err := l.validate.StructCtx(ctx, filterInput{Date: f.Date}); err != nil {
		return nil, toValidationError(err)
	}

	expenses, err := l.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	l.logger.DebugContext(ctx, "Filter applied",
		log.NewFields().WithOperation(log.OpFilter).WithCount(len(expenses)).ToSlice()...)
	return expenses, nil
}

// Summary totals every expense and groups totals by exact category string.
func (l *Ledger) Summary(ctx context.Context) (core.Summary, error) {
	expenses, err := l.repo.List(ctx, core.Filter{})
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(expenses), nil
}

// ExportAll returns the rows to export, in the same order as ListAll.
func (l *Ledger) ExportAll(ctx context.Context) ([]core.Expense, error) {
	return l.ListAll(ctx)
}
