// Package export serializes ledger rows to CSV and reads such files back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"expenselog/internal/core"
)

// DefaultFilename is where exports go unless configured otherwise.
const DefaultFilename = "expenses_export.csv"

// Header is the first row of every export.
var Header = []string{"ID", "Amount", "Category", "Date", "Notes"}

var ErrBadHeader = errors.New("unexpected CSV header")

// WriteCSV writes the header and one row per expense, in the given order.
// Amounts are written exactly so ReadCSV gets the same values back.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Amount.String(),
			e.Category,
			e.Date,
			e.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates (or truncates) path and writes the export into it.
func WriteFile(path string, expenses []core.Expense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteCSV(f, expenses); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
		}
	}

	var out []core.Expense
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row id %q: %w", rec[0], err)
		}
		amount, err := core.ParseAmount(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d amount %q: %w", id, rec[1], err)
		}
		out = append(out, core.Expense{
			ID:       id,
			Amount:   amount,
			Category: rec[2],
			Date:     rec[3],
			Notes:    rec[4],
		})
	}
	return out, nil
}

// ReadFile loads an export from path.
func ReadFile(path string) ([]core.Expense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
