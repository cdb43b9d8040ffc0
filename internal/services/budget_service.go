package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/rates"
)

// BudgetService owns budget CRUD and the derived spent computation. Spent is
// recomputed on every read and attached to the returned value, never stored.
type BudgetService struct {
	budgets      BudgetStore
	transactions TransactionStore
	converter    *rates.Converter
}

func NewBudgetService(budgets BudgetStore, transactions TransactionStore, converter *rates.Converter) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		transactions: transactions,
		converter:    converter,
	}
}

// ComputeSpent sums a user's expense transactions for a category within one
// calendar month, each converted to USD. Category match is case-insensitive;
// income transactions and other months never count.
func (s *BudgetService) ComputeSpent(ctx context.Context, userID int64, category string, month, year int) (float64, error) {
	start, end := core.MonthRange(year, month)
	txs, err := s.transactions.FindByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("find transactions for spent: %w", err)
	}

	var spent float64
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		if !strings.EqualFold(t.Category, category) {
			continue
		}
		spent += s.converter.Convert(ctx, t.Amount, t.Currency, "USD")
	}
	return spent, nil
}

// attachSpent fills the derived Spent field on each budget in place. The
// slice elements are in-memory views; nothing is written back to the store.
func (s *BudgetService) attachSpent(ctx context.Context, userID int64, budgets []core.Budget) error {
	for i := range budgets {
		spent, err := s.ComputeSpent(ctx, userID, budgets[i].Category, budgets[i].Month, budgets[i].Year)
		if err != nil {
			return err
		}
		budgets[i].Spent = spent
	}
	return nil
}

// BudgetsForUser returns all of a user's budgets with Spent attached.
func (s *BudgetService) BudgetsForUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	budgets, err := s.budgets.FindBudgetsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find budgets: %w", err)
	}
	if err := s.attachSpent(ctx, userID, budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// BudgetsForMonth returns a user's budgets for one month with Spent attached.
func (s *BudgetService) BudgetsForMonth(ctx context.Context, userID int64, month, year int) ([]core.Budget, error) {
	budgets, err := s.budgets.FindBudgetsByUserMonthYear(ctx, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("find budgets for month: %w", err)
	}
	if err := s.attachSpent(ctx, userID, budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// OverspentBudgets returns the current month's budgets whose spending
// exceeds their limit.
func (s *BudgetService) OverspentBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	now := time.Now()
	budgets, err := s.BudgetsForMonth(ctx, userID, int(now.Month()), now.Year())
	if err != nil {
		return nil, err
	}

	var over []core.Budget
	for _, b := range budgets {
		if b.IsOverBudget() {
			over = append(over, b)
		}
	}
	return over, nil
}

// CreateBudget validates the budget and rejects a duplicate for the same
// (user, category, month, year) tuple. Category uniqueness is
// case-insensitive and enforced here, not by the storage schema.
func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	existing, err := s.budgets.FindBudgetsByUserMonthYear(ctx, b.UserID, b.Month, b.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("check existing budgets: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.Category, b.Category) {
			return core.Budget{}, fmt.Errorf("%w for %s in %d/%d",
				core.ErrDuplicateBudget, b.Category, b.Month, b.Year)
		}
	}

	saved, err := s.budgets.SaveBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", saved.ID, "user_id", saved.UserID,
		"category", saved.Category, "month", saved.Month, "year", saved.Year)
	return saved, nil
}

// UpdateBudget fully replaces the mutable fields of an existing budget.
func (s *BudgetService) UpdateBudget(ctx context.Context, id int64, details core.Budget) (core.Budget, error) {
	existing, err := s.budgets.FindBudgetByID(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}

	details.UserID = existing.UserID
	if err := details.Validate(); err != nil {
		return core.Budget{}, err
	}

	existing.Category = details.Category
	existing.LimitAmount = details.LimitAmount
	existing.Color = details.Color
	existing.Currency = details.Currency
	existing.Month = details.Month
	existing.Year = details.Year

	saved, err := s.budgets.SaveBudget(ctx, existing)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save updated budget: %w", err)
	}
	return saved, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, id int64) error {
	exists, err := s.budgets.BudgetExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check budget exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: id %d", core.ErrBudgetNotFound, id)
	}
	return s.budgets.DeleteBudgetByID(ctx, id)
}

// StatusSummary describes the current month's budget situation for a user.
type StatusSummary struct {
	TotalBudgets    int `json:"totalBudgets"`
	OverBudgetCount int `json:"overBudgetCount"`
	CurrentMonth    int `json:"currentMonth"`
	CurrentYear     int `json:"currentYear"`
}

// Status computes the current month's budget count and how many of those
// budgets are over their limit.
func (s *BudgetService) Status(ctx context.Context, userID int64) (StatusSummary, error) {
	now := time.Now()
	summary := StatusSummary{
		CurrentMonth: int(now.Month()),
		CurrentYear:  now.Year(),
	}

	budgets, err := s.BudgetsForMonth(ctx, userID, summary.CurrentMonth, summary.CurrentYear)
	if err != nil {
		return StatusSummary{}, err
	}

	summary.TotalBudgets = len(budgets)
	for _, b := range budgets {
		if b.IsOverBudget() {
			summary.OverBudgetCount++
		}
	}
	return summary, nil
}
