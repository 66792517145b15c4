package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Summary is the grand total plus per-category totals of a set of expenses.
type Summary struct {
	Total      decimal.Decimal
	ByCategory []CategoryAmount
}

// Summarize groups expenses by their exact category string and sums amounts.
// Categories are returned in name order.
func Summarize(expenses []Expense) Summary {
	total := decimal.Zero
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		total = total.Add(e.Amount)
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	byCategory := make([]CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		byCategory = append(byCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Name < byCategory[j].Name })

	return Summary{Total: total, ByCategory: byCategory}
}

// Amount returns the total for name, and whether the category is present.
func (s Summary) Amount(name string) (decimal.Decimal, bool) {
	for _, c := range s.ByCategory {
		if c.Name == name {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}
