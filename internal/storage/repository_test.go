package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.SaveTransaction(ctx, core.Transaction{
		UserID:   1,
		Name:     "Groceries",
		Amount:   42.50,
		Type:     core.TypeExpense,
		Category: "Food",
		Currency: "USD",
		Date:     date(2026, 6, 10),
	})
	if err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	got, err := repo.FindTransactionByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindTransactionByID: %v", err)
	}
	if got.Name != "Groceries" || got.Amount != 42.50 || got.Category != "Food" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Date.Equal(date(2026, 6, 10)) {
		t.Errorf("Date = %v, want 2026-06-10", got.Date)
	}

	_, err = repo.FindTransactionByID(ctx, 999)
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("missing transaction error = %v, want ErrTransactionNotFound", err)
	}
}

func TestSQLiteTransactionQueries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: 1, Name: "Salary", Amount: 2000, Type: core.TypeIncome, Category: "Salary", Currency: "USD", Date: date(2026, 6, 1)},
		{UserID: 1, Name: "Groceries", Amount: 100, Type: core.TypeExpense, Category: "Food", Currency: "USD", Date: date(2026, 6, 10)},
		{UserID: 1, Name: "Rent", Amount: 900, Type: core.TypeExpense, Category: "Rent", Currency: "USD", Date: date(2026, 6, 20)},
		{UserID: 1, Name: "Groceries", Amount: 80, Type: core.TypeExpense, Category: "Food", Currency: "USD", Date: date(2026, 7, 5)},
		{UserID: 2, Name: "Groceries", Amount: 50, Type: core.TypeExpense, Category: "Food", Currency: "USD", Date: date(2026, 6, 15)},
	}
	for _, tx := range seed {
		if _, err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	t.Run("by user sorted descending", func(t *testing.T) {
		txs, err := repo.FindByUser(ctx, 1)
		if err != nil {
			t.Fatalf("FindByUser: %v", err)
		}
		if len(txs) != 4 {
			t.Fatalf("got %d transactions, want 4", len(txs))
		}
		for i := 1; i < len(txs); i++ {
			if txs[i].Date.After(txs[i-1].Date) {
				t.Errorf("not sorted descending at %d: %v before %v", i, txs[i-1].Date, txs[i].Date)
			}
		}
	})

	t.Run("by date range is inclusive", func(t *testing.T) {
		start, end := core.MonthRange(2026, 6)
		txs, err := repo.FindByUserAndDateRange(ctx, 1, start, end)
		if err != nil {
			t.Fatalf("FindByUserAndDateRange: %v", err)
		}
		if len(txs) != 3 {
			t.Errorf("got %d transactions for June, want 3", len(txs))
		}
	})

	t.Run("by type matches case-insensitively", func(t *testing.T) {
		txs, err := repo.FindByUserAndType(ctx, 1, "EXPENSE")
		if err != nil {
			t.Fatalf("FindByUserAndType: %v", err)
		}
		if len(txs) != 3 {
			t.Errorf("got %d expenses, want 3", len(txs))
		}
	})

	t.Run("recent respects limit", func(t *testing.T) {
		txs, err := repo.FindRecentByUser(ctx, 1, 2)
		if err != nil {
			t.Fatalf("FindRecentByUser: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("got %d transactions, want 2", len(txs))
		}
		if !txs[0].Date.Equal(date(2026, 7, 5)) {
			t.Errorf("most recent = %v, want 2026-07-05", txs[0].Date)
		}
	})
}

func TestSQLiteTransactionUpdateDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.SaveTransaction(ctx, core.Transaction{
		UserID: 1, Name: "Groceries", Amount: 100, Type: core.TypeExpense,
		Category: "Food", Currency: "USD", Date: date(2026, 6, 10),
	})
	if err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}

	saved.Amount = 120
	updated, err := repo.SaveTransaction(ctx, saved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount != 120 {
		t.Errorf("Amount = %v after update, want 120", updated.Amount)
	}

	exists, err := repo.TransactionExistsByID(ctx, saved.ID)
	if err != nil || !exists {
		t.Errorf("TransactionExistsByID = %v, %v; want true, nil", exists, err)
	}

	if err := repo.DeleteTransactionByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteTransactionByID: %v", err)
	}
	if err := repo.DeleteTransactionByID(ctx, saved.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("second delete error = %v, want ErrTransactionNotFound", err)
	}

	missing := core.Transaction{ID: 999, UserID: 1, Name: "Ghost", Amount: 1, Type: core.TypeExpense, Currency: "USD", Date: date(2026, 6, 10)}
	if _, err := repo.SaveTransaction(ctx, missing); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("update missing error = %v, want ErrTransactionNotFound", err)
	}
}

func TestSQLiteBudgetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.SaveBudget(ctx, core.Budget{
		UserID:      1,
		Category:    "Food",
		LimitAmount: 300,
		Color:       "#ff0000",
		Currency:    "USD",
		Month:       6,
		Year:        2026,
	})
	if err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("insert did not assign an id")
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("timestamps not set on insert")
	}

	got, err := repo.FindBudgetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindBudgetByID: %v", err)
	}
	if got.Category != "Food" || got.LimitAmount != 300 || got.Month != 6 || got.Year != 2026 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	// Spent is derived at read time, never persisted.
	if got.Spent != 0 {
		t.Errorf("Spent = %v from storage, want 0", got.Spent)
	}

	saved.LimitAmount = 450
	if _, err := repo.SaveBudget(ctx, saved); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.FindBudgetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindBudgetByID after update: %v", err)
	}
	if got.LimitAmount != 450 {
		t.Errorf("LimitAmount = %v after update, want 450", got.LimitAmount)
	}

	if err := repo.DeleteBudgetByID(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteBudgetByID: %v", err)
	}
	if _, err := repo.FindBudgetByID(ctx, saved.ID); !errors.Is(err, core.ErrBudgetNotFound) {
		t.Errorf("find after delete error = %v, want ErrBudgetNotFound", err)
	}
}

func TestSQLiteBudgetQueries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	seed := []core.Budget{
		{UserID: 1, Category: "Food", LimitAmount: 300, Currency: "USD", Month: 6, Year: 2026},
		{UserID: 1, Category: "Rent", LimitAmount: 900, Currency: "USD", Month: 6, Year: 2026},
		{UserID: 1, Category: "Food", LimitAmount: 350, Currency: "USD", Month: 7, Year: 2026},
		{UserID: 2, Category: "Food", LimitAmount: 200, Currency: "USD", Month: 6, Year: 2026},
	}
	for _, b := range seed {
		if _, err := repo.SaveBudget(ctx, b); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	budgets, err := repo.FindBudgetsByUser(ctx, 1)
	if err != nil {
		t.Fatalf("FindBudgetsByUser: %v", err)
	}
	if len(budgets) != 3 {
		t.Errorf("got %d budgets for user 1, want 3", len(budgets))
	}

	budgets, err = repo.FindBudgetsByUserMonthYear(ctx, 1, 6, 2026)
	if err != nil {
		t.Fatalf("FindBudgetsByUserMonthYear: %v", err)
	}
	if len(budgets) != 2 {
		t.Errorf("got %d budgets for 6/2026, want 2", len(budgets))
	}

	users, err := repo.UsersWithBudgets(ctx, 6, 2026)
	if err != nil {
		t.Fatalf("UsersWithBudgets: %v", err)
	}
	if len(users) != 2 || users[0] != 1 || users[1] != 2 {
		t.Errorf("UsersWithBudgets = %v, want [1 2]", users)
	}

	users, err = repo.UsersWithBudgets(ctx, 1, 2030)
	if err != nil {
		t.Fatalf("UsersWithBudgets empty month: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("UsersWithBudgets for empty month = %v, want none", users)
	}
}
