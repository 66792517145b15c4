// Package report formats ledger data as plain text for the front ends.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"expenselog/internal/core"
)

// SummaryText renders a summary as shown to the user.
func SummaryText(s core.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Spent: %s\n\n", core.FormatAmount(s.Total))
	b.WriteString("Spending by Category:\n")
	for _, c := range s.ByCategory {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, core.FormatAmount(c.Amount))
	}
	return b.String()
}

// WriteTable prints expenses as aligned columns with a header row.
func WriteTable(w io.Writer, expenses []core.Expense) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAmount\tCategory\tDate\tNotes")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, core.FormatAmount(e.Amount), e.Category, e.Date, e.Notes)
	}
	return tw.Flush()
}

// Table returns WriteTable output as a string.
func Table(expenses []core.Expense) string {
	var b strings.Builder
	_ = WriteTable(&b, expenses)
	return b.String()
}
