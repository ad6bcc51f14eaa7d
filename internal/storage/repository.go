package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an id does not exist for the given owner.
// A foreign owner's transaction is indistinguishable from a missing one.
var ErrNotFound = errors.New("transaction not found")

const transactionColumns = "id, owner_id, description, amount_cents, date, type, category, payment_method, created_at"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create inserts a full record. ID and CreatedAt are expected to be assigned
// by the caller (the service layer) before the insert.
func (r *SQLiteRepository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	query := `
		INSERT INTO transactions (` + transactionColumns + `, description_lc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.OwnerID, t.Description, t.Amount.Cents, t.Date.String(), string(t.Type),
		nullable(t.Category), nullable(t.PaymentMethod), t.CreatedAt.UTC().Format(time.RFC3339),
		strings.ToLower(t.Description),
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner", t.OwnerID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return t, nil
}

// Get returns one transaction by id, scoped to the owner. Returns nil when
// not found.
func (r *SQLiteRepository) Get(ctx context.Context, ownerID, id string) (*core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ? AND id = ?`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// List translates the filter set into predicates against the store and
// returns the owner's matching transactions ordered by date descending, id
// ascending among same-date rows. An absent owner yields an empty list, not
// an error.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string, f core.Filter) ([]core.Transaction, error) {
	if ownerID == "" {
		return []core.Transaction{}, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}

	if !f.DateFrom.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.DateFrom.String())
	}
	if !f.DateTo.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.DateTo.String())
	}
	if f.Description != "" {
		// description_lc is folded with Go's strings.ToLower on write, the
		// same fold Filter.Matches applies. SQLite's lower() is ASCII-only
		// and would miss accented text.
		query += ` AND description_lc LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, escapeLike(strings.ToLower(f.Description)))
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY date DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// ListPeriod returns the owner's transactions inside the period, endpoints
// included. This is the snapshot the aggregation engine consumes.
func (r *SQLiteRepository) ListPeriod(ctx context.Context, ownerID string, p core.Period) ([]core.Transaction, error) {
	return r.List(ctx, ownerID, core.Filter{DateFrom: p.Start, DateTo: p.End})
}

// Update replaces all mutable fields keyed by id; owner is part of the key
// and never changes. Returns ErrNotFound when the row does not exist for the
// owner.
func (r *SQLiteRepository) Update(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	query := `
		UPDATE transactions
		SET description = ?, description_lc = ?, amount_cents = ?, date = ?, type = ?, category = ?, payment_method = ?
		WHERE owner_id = ? AND id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		t.Description, strings.ToLower(t.Description), t.Amount.Cents, t.Date.String(), string(t.Type),
		nullable(t.Category), nullable(t.PaymentMethod),
		t.OwnerID, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, t.OwnerID, t.ID)
}

// Delete removes the row permanently. No soft delete.
func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner", ownerID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		dateStr   string
		typeStr   string
		category  sql.NullString
		payMethod sql.NullString
		createdAt string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Amount.Cents,
		&dateStr, &typeStr, &category, &payMethod, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	t.Date = date
	t.Type = core.TxType(typeStr)
	t.Category = category.String
	t.PaymentMethod = payMethod.String
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// escapeLike escapes LIKE wildcards in user-supplied substrings so they match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
