// Package storage implements the SQLite-backed persistence layer. All
// aggregation happens in core over slices this package loads; queries here
// stay simple per-user scans.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another user; callers deliberately cannot tell the two apart.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
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

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, user core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ? COLLATE NOCASE`, email)
	var user core.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	user.CreatedAt = parseTime(createdAt)
	return user, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
	var user core.User
	var createdAt string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = parseTime(createdAt)
	return user, nil
}

// --- categories ---

func (r *Repository) CreateCategory(ctx context.Context, cat core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		cat.ID, cat.UserID, cat.Name, formatTime(cat.CreatedAt))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *Repository) ListCategoriesByUser(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM categories WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var cat core.Category
		var createdAt string
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.CreatedAt = parseTime(createdAt)
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	var cat core.Category
	var createdAt string
	if err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ErrNotFound
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	cat.CreatedAt = parseTime(createdAt)
	return cat, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, cat core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND user_id = ?`,
		cat.Name, cat.ID, cat.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

// CategoryInUse reports whether any of the user's expenses reference the
// category, which blocks deletion.
func (r *Repository) CategoryInUse(ctx context.Context, userID, categoryID string) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM expenses WHERE user_id = ? AND category_id = ?)`, userID, categoryID)
	var used bool
	if err := row.Scan(&used); err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}
	return used, nil
}

// --- incomes ---

func (r *Repository) CreateIncome(ctx context.Context, inc core.Income) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, amount_cents, date, source, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.UserID, inc.Amount.Cents, inc.Date.String(), inc.Source, inc.Description,
		formatTime(inc.CreatedAt))
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	return nil
}

func (r *Repository) ListIncomesByUser(ctx context.Context, userID string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, date, source, description, created_at
		 FROM incomes WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []core.Income{}
	for rows.Next() {
		inc, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, inc)
	}
	return incomes, rows.Err()
}

func (r *Repository) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, date, source, description, created_at
		 FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	inc, err := scanIncome(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Income{}, ErrNotFound
		}
		return core.Income{}, err
	}
	return inc, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, inc core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET amount_cents = ?, date = ?, source = ?, description = ?
		 WHERE id = ? AND user_id = ?`,
		inc.Amount.Cents, inc.Date.String(), inc.Source, inc.Description, inc.ID, inc.UserID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res)
}

// --- expenses ---

func (r *Repository) CreateExpense(ctx context.Context, exp core.Expense) error {
	receipt := receiptColumns(exp.Receipt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, type, date, category_id, description,
		                       start_date, end_date,
		                       receipt_filename, receipt_original_name, receipt_mime_type, receipt_size,
		                       export_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`,
		exp.ID, exp.UserID, exp.Amount.Cents, string(exp.Type), nullDate(exp.Date), exp.CategoryID,
		exp.Description, nullDate(exp.StartDate), nullDate(exp.EndDate),
		receipt.filename, receipt.originalName, receipt.mimeType, receipt.size,
		formatTime(exp.CreatedAt))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved",
		"id", exp.ID, "type", exp.Type, "amount_cents", exp.Amount.Cents)
	return nil
}

func (r *Repository) ListExpensesByUser(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpense+` WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func (r *Repository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, selectExpense+` WHERE id = ? AND user_id = ?`, id, userID)
	exp, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, err
	}
	return exp, nil
}

// GetExpenseAnyUser loads an expense regardless of owner; the export worker
// uses it when resolving queued events.
func (r *Repository) GetExpenseAnyUser(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, selectExpense+` WHERE id = ?`, id)
	exp, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, err
	}
	return exp, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, exp core.Expense) error {
	receipt := receiptColumns(exp.Receipt)
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, type = ?, date = ?, category_id = ?, description = ?,
		                     start_date = ?, end_date = ?,
		                     receipt_filename = ?, receipt_original_name = ?, receipt_mime_type = ?, receipt_size = ?,
		                     export_status = 'pending'
		 WHERE id = ? AND user_id = ?`,
		exp.Amount.Cents, string(exp.Type), nullDate(exp.Date), exp.CategoryID, exp.Description,
		nullDate(exp.StartDate), nullDate(exp.EndDate),
		receipt.filename, receipt.originalName, receipt.mimeType, receipt.size,
		exp.ID, exp.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// --- export tracking ---

func (r *Repository) ListPendingExport(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		selectExpense+` WHERE export_status = 'pending' ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func (r *Repository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_status = 'synced' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}
	return nil
}

func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET export_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense export error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with export error", "id", id)
	return nil
}

// --- scanning helpers ---

const selectExpense = `SELECT id, user_id, amount_cents, type, date, category_id, description,
       start_date, end_date,
       receipt_filename, receipt_original_name, receipt_mime_type, receipt_size, created_at
  FROM expenses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(row rowScanner) (core.Income, error) {
	var inc core.Income
	var date, createdAt string
	if err := row.Scan(&inc.ID, &inc.UserID, &inc.Amount.Cents, &date, &inc.Source,
		&inc.Description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Income{}, err
		}
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}
	inc.Date, _ = core.ParseDate(date)
	inc.CreatedAt = parseTime(createdAt)
	return inc, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var exp core.Expense
	var typ, createdAt string
	var date, start, end sql.NullString
	var rcptName, rcptOriginal, rcptMime sql.NullString
	var rcptSize sql.NullInt64
	err := row.Scan(&exp.ID, &exp.UserID, &exp.Amount.Cents, &typ, &date, &exp.CategoryID,
		&exp.Description, &start, &end, &rcptName, &rcptOriginal, &rcptMime, &rcptSize, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	exp.Type = core.ExpenseType(typ)
	exp.Date = parseNullDate(date)
	exp.StartDate = parseNullDate(start)
	exp.EndDate = parseNullDate(end)
	exp.CreatedAt = parseTime(createdAt)
	if rcptName.Valid {
		exp.Receipt = &core.Receipt{
			Filename:     rcptName.String,
			OriginalName: rcptOriginal.String,
			MimeType:     rcptMime.String,
			Size:         rcptSize.Int64,
		}
	}
	return exp, nil
}

type receiptCols struct {
	filename     sql.NullString
	originalName sql.NullString
	mimeType     sql.NullString
	size         sql.NullInt64
}

func receiptColumns(receipt *core.Receipt) receiptCols {
	if receipt == nil {
		return receiptCols{}
	}
	return receiptCols{
		filename:     sql.NullString{String: receipt.Filename, Valid: true},
		originalName: sql.NullString{String: receipt.OriginalName, Valid: true},
		mimeType:     sql.NullString{String: receipt.MimeType, Valid: true},
		size:         sql.NullInt64{Int64: receipt.Size, Valid: true},
	}
}

func nullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) core.Date {
	if !s.Valid {
		return core.Date{}
	}
	d, _ := core.ParseDate(s.String)
	return d
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
