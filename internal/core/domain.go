package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used for storage and filtering.
const DateLayout = "2006-01-02"

type (
	// Expense is a stored ledger record.
	Expense struct {
		ID       int64
		Amount   decimal.Decimal
		Category string
		Date     string // ISO YYYY-MM-DD
		Notes    string
	}

	// NewExpense is an expense that has been validated but not yet stored.
	NewExpense struct {
		Amount   decimal.Decimal
		Category string
		Date     string
		Notes    string
	}

	// Filter narrows a listing. Blank fields place no constraint.
	Filter struct {
		Category string
		Date     string
	}

	// CategoryRename rewrites every row whose category equals From.
	CategoryRename struct {
		From string
		To   string
	}
)

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Category) == "" && strings.TrimSpace(f.Date) == ""
}

// ParseDate checks that s is a real calendar date in ISO form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Validate checks the invariants the store relies on.
func (e NewExpense) Validate() error {
	var v ValidationError
	if strings.TrimSpace(e.Category) == "" {
		v.Add("category", ErrEmptyCategory.Error())
	}
	if _, err := ParseDate(e.Date); err != nil {
		v.Add("date", err.Error())
	}
	return v.OrNil()
}
