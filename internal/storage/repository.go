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

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

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

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = "id, user_id, name, amount, type, category, currency, tx_date"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var date string
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Amount, &t.Type, &t.Category, &t.Currency, &date)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) FindByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY tx_date DESC, id DESC",
		userID)
}

func (r *SQLiteRepository) FindByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND tx_date >= ? AND tx_date <= ? ORDER BY tx_date DESC, id DESC",
		userID, start.Format(dateLayout), end.Format(dateLayout))
}

func (r *SQLiteRepository) FindByUserAndType(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND type = ? COLLATE NOCASE ORDER BY tx_date DESC, id DESC",
		userID, string(typ))
}

func (r *SQLiteRepository) FindRecentByUser(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY tx_date DESC, id DESC LIMIT ?",
		userID, limit)
}

func (r *SQLiteRepository) FindTransactionByID(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find transaction by id: %w", err)
	}
	return t, nil
}

// SaveTransaction inserts new transactions (ID zero) and fully replaces
// existing ones.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO transactions (user_id, name, amount, type, category, currency, tx_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
			t.UserID, t.Name, t.Amount, string(t.Type), t.Category, t.Currency, t.Date.Format(dateLayout))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
		}
		t.ID, err = res.LastInsertId()
		if err != nil {
			return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
		}
		slog.InfoContext(ctx, "Transaction saved", "id", t.ID, "user_id", t.UserID, "type", t.Type)
		return t, nil
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET name = ?, amount = ?, type = ?, category = ?, currency = ?, tx_date = ? WHERE id = ?",
		t.Name, t.Amount, string(t.Type), t.Category, t.Currency, t.Date.Format(dateLayout), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransactionByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrTransactionNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) TransactionExistsByID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM transactions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("transaction exists: %w", err)
	}
	return true, nil
}

const budgetColumns = "id, user_id, category, limit_amount, color, currency, budget_month, budget_year, created_at, updated_at"

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.LimitAmount, &b.Color, &b.Currency,
		&b.Month, &b.Year, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) FindBudgetsByUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? ORDER BY budget_year DESC, budget_month DESC, category",
		userID)
}

func (r *SQLiteRepository) FindBudgetsByUserMonthYear(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	return r.queryBudgets(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? AND budget_month = ? AND budget_year = ? ORDER BY category",
		userID, month, year)
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := time.Now().UTC()
	if b.ID == 0 {
		b.CreatedAt = now
		b.UpdatedAt = now
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO budgets (user_id, category, limit_amount, color, currency, budget_month, budget_year, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			b.UserID, b.Category, b.LimitAmount, b.Color, b.Currency, b.Month, b.Year, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return core.Budget{}, fmt.Errorf("insert budget: %w", err)
		}
		b.ID, err = res.LastInsertId()
		if err != nil {
			return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
		}
		slog.InfoContext(ctx, "Budget saved", "id", b.ID, "user_id", b.UserID, "category", b.Category)
		return b, nil
	}

	b.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		"UPDATE budgets SET category = ?, limit_amount = ?, color = ?, currency = ?, budget_month = ?, budget_year = ?, updated_at = ? WHERE id = ?",
		b.Category, b.LimitAmount, b.Color, b.Currency, b.Month, b.Year, b.UpdatedAt, b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	return b, nil
}

func (r *SQLiteRepository) FindBudgetByID(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget by id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudgetByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrBudgetNotFound
	}
	slog.InfoContext(ctx, "Budget deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) BudgetExistsByID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM budgets WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("budget exists: %w", err)
	}
	return true, nil
}

// UsersWithBudgets lists the users holding at least one budget for the given
// month, for the periodic over-budget alert scan.
func (r *SQLiteRepository) UsersWithBudgets(ctx context.Context, month, year int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT user_id FROM budgets WHERE budget_month = ? AND budget_year = ? ORDER BY user_id",
		month, year)
	if err != nil {
		return nil, fmt.Errorf("query users with budgets: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
