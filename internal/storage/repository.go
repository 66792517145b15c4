package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"expenselog/internal/core"

	_ "modernc.org/sqlite"
)

const expensesTable = "expenses"

//go:embed migrations/*.sql
var schemaFS embed.FS

var expenseColumns = []string{"id", "amount", "category", "date", "notes"}

// ErrNoPath is returned by EnsureSchema for repositories built around an
// existing handle rather than a database file.
var ErrNoPath = errors.New("schema migration requires a database path")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository opens (creating if needed) the database file at dbPath.
// The schema is not touched until EnsureSchema is called.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer, one process: a single connection keeps SQLite happy.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

// NewFromDB wraps an already opened handle.
func NewFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureSchema creates the expenses table when it does not exist yet. An
// existing table with the same layout is adopted as is.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if r.path == "" {
		return core.NewStorageError("migrate", ErrNoPath)
	}
	if err := r.migrateUp(); err != nil {
		return core.NewStorageError("migrate", err)
	}
	slog.DebugContext(ctx, "Schema ensured", "path", r.path)
	return nil
}

// migrateUp applies the embedded migrations. golang-migrate closes the handle
// it is given, so it works on a second connection to the same file rather
// than on r.db.
func (r *SQLiteRepository) migrateUp() error {
	conn, err := sql.Open("sqlite", r.path)
	if err != nil {
		return fmt.Errorf("open %s for migration: %w", r.path, err)
	}
	defer conn.Close()

	source, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	target, err := sqlitemigrate.WithInstance(conn, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case err == nil:
		slog.Info("Expenses schema migrated", "path", r.path)
	case errors.Is(err, migrate.ErrNoChange):
	default:
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Insert stores one expense and returns the id assigned by SQLite.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.NewExpense) (int64, error) {
	query, args, err := sq.Insert(expensesTable).
		Columns("amount", "category", "date", "notes").
		Values(e.Amount.InexactFloat64(), e.Category, e.Date, nullString(e.Notes)).
		ToSql()
	if err != nil {
		return 0, core.NewStorageError("insert", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, core.NewStorageError("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", id,
		"category", e.Category,
		"amount", e.Amount.String(),
		"date", e.Date)

	return id, nil
}

// List returns the expenses matching f in id order. An empty filter lists
// everything. Category comparison ignores ASCII case; date comparison is exact.
func (r *SQLiteRepository) List(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	b := sq.Select(expenseColumns...).From(expensesTable).OrderBy("id ASC")
	if c := strings.TrimSpace(f.Category); c != "" {
		b = b.Where(sq.Expr("category = ? COLLATE NOCASE", c))
	}
	if d := strings.TrimSpace(f.Date); d != "" {
		b = b.Where(sq.Eq{"date": d})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, core.NewStorageError("list", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewStorageError("list", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e      core.Expense
			amount float64
			notes  sql.NullString
		)
		if err := rows.Scan(&e.ID, &amount, &e.Category, &e.Date, &notes); err != nil {
			return nil, core.NewStorageError("list", err)
		}
		if e.Amount, err = core.AmountFromFloat(amount); err != nil {
			return nil, core.NewStorageError("list", fmt.Errorf("expense %d: %w", e.ID, err))
		}
		e.Notes = notes.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list", err)
	}
	return expenses, nil
}

// Categories returns the distinct stored category strings.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("category").Distinct().From(expensesTable).OrderBy("category").ToSql()
	if err != nil {
		return nil, core.NewStorageError("categories", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewStorageError("categories", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, core.NewStorageError("categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("categories", err)
	}
	return categories, nil
}

// RenameCategory rewrites every row in category rn.From and returns how many
// rows changed. The statement commits on its own.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, rn core.CategoryRename) (int64, error) {
	n, err := renameCategory(ctx, r.db, rn)
	if err != nil {
		return 0, core.NewStorageError("rename category", err)
	}
	return n, nil
}

// RenameCategories applies every rename inside one transaction: either all of
// them are committed or none is.
func (r *SQLiteRepository) RenameCategories(ctx context.Context, renames []core.CategoryRename) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.NewStorageError("rename categories", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "Rollback failed", "error", err)
		}
	}()

	counts := make([]int64, 0, len(renames))
	for _, rn := range renames {
		n, err := renameCategory(ctx, tx, rn)
		if err != nil {
			return nil, core.NewStorageError("rename categories", err)
		}
		counts = append(counts, n)
	}

	if err := tx.Commit(); err != nil {
		return nil, core.NewStorageError("rename categories", err)
	}
	return counts, nil
}

func renameCategory(ctx context.Context, ex execer, rn core.CategoryRename) (int64, error) {
	query, args, err := sq.Update(expensesTable).
		Set("category", rn.To).
		Where(sq.Eq{"category": rn.From}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Category renamed", "from", rn.From, "to", rn.To, "rows", n)
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
