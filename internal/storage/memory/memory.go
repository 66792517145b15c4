// Package memory is an in-process expense store with the same semantics as
// the SQLite repository, including ASCII-only case folding for category
// filters. Nothing survives the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"expenselog/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewSeeded returns a store preloaded with expenses, keeping their ids.
func NewSeeded(seed []core.Expense) *Store {
	s := New()
	for _, e := range seed {
		s.items = append(s.items, e)
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].ID < s.items[j].ID })
	return s
}

// EnsureSchema is a no-op: there is no schema to create.
func (s *Store) EnsureSchema(context.Context) error {
	return nil
}

func (s *Store) Insert(_ context.Context, e core.NewExpense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, core.Expense{
		ID:       id,
		Amount:   e.Amount,
		Category: e.Category,
		Date:     e.Date,
		Notes:    e.Notes,
	})
	return id, nil
}

func (s *Store) List(_ context.Context, f core.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category := strings.TrimSpace(f.Category)
	date := strings.TrimSpace(f.Date)

	out := []core.Expense{}
	for _, e := range s.items {
		if category != "" && !equalFoldASCII(e.Category, category) {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) Categories(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, e := range s.items {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) RenameCategory(_ context.Context, rn core.CategoryRename) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rename(rn), nil
}

// RenameCategories applies all renames under one lock, so no reader sees a
// partial result.
func (s *Store) RenameCategories(_ context.Context, renames []core.CategoryRename) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make([]int64, 0, len(renames))
	for _, rn := range renames {
		counts = append(counts, s.rename(rn))
	}
	return counts, nil
}

func (s *Store) rename(rn core.CategoryRename) int64 {
	var n int64
	for i := range s.items {
		if s.items[i].Category == rn.From {
			s.items[i].Category = rn.To
			n++
		}
	}
	return n
}

// equalFoldASCII matches SQLite's NOCASE collation: only A-Z and a-z fold.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
