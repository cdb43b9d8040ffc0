package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/rates"
)

// DashboardService aggregates a user's transactions and budgets into
// USD-normalized dashboard figures. All reads are side-effect free and
// freely parallelizable.
type DashboardService struct {
	transactions TransactionStore
	budgets      BudgetStore
	converter    *rates.Converter
}

func NewDashboardService(transactions TransactionStore, budgets BudgetStore, converter *rates.Converter) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		budgets:      budgets,
		converter:    converter,
	}
}

// Summary is the dashboard headline view. Monetary fields are USD, rounded
// to 2 decimals.
type Summary struct {
	Income           float64 `json:"income"`
	Expenses         float64 `json:"expenses"`
	Savings          float64 `json:"savings"`
	MonthlyBudget    float64 `json:"budget"`
	MonthlySpending  float64 `json:"monthlySpending"`
	BudgetUsedPct    float64 `json:"budgetUsed"`
	TransactionCount int     `json:"transactions"`
	Currency         string  `json:"currency"`
}

// SeriesPoint is one month of the budget-vs-spending series.
type SeriesPoint struct {
	Label    string  `json:"label"`
	Budget   float64 `json:"budget"`
	Spending float64 `json:"spending"`
}

func (s *DashboardService) sumConverted(ctx context.Context, txs []core.Transaction, typ core.TransactionType) float64 {
	var total float64
	for _, t := range txs {
		if !typ.Matches(t.Type) {
			continue
		}
		total += s.converter.Convert(ctx, t.Amount, t.Currency, "USD")
	}
	return total
}

func (s *DashboardService) monthlyBudgetTotal(ctx context.Context, userID int64, month, year int) (float64, error) {
	budgets, err := s.budgets.FindBudgetsByUserMonthYear(ctx, userID, month, year)
	if err != nil {
		return 0, fmt.Errorf("find monthly budgets: %w", err)
	}
	var total float64
	for _, b := range budgets {
		total += s.converter.Convert(ctx, b.LimitAmount, b.Currency, "USD")
	}
	return total, nil
}

func (s *DashboardService) monthlySpendingTotal(ctx context.Context, userID int64, month, year int) (float64, error) {
	start, end := core.MonthRange(year, month)
	txs, err := s.transactions.FindByUserAndDateRange(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("find monthly transactions: %w", err)
	}
	return s.sumConverted(ctx, txs, core.TypeExpense), nil
}

// Summary computes lifetime income/expense totals plus the current month's
// budget utilization, everything normalized to USD.
func (s *DashboardService) Summary(ctx context.Context, userID int64) (Summary, error) {
	txs, err := s.transactions.FindByUser(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("find transactions: %w", err)
	}

	income := s.sumConverted(ctx, txs, core.TypeIncome)
	expenses := s.sumConverted(ctx, txs, core.TypeExpense)

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	monthlyBudget, err := s.monthlyBudgetTotal(ctx, userID, month, year)
	if err != nil {
		return Summary{}, err
	}
	monthlySpending, err := s.monthlySpendingTotal(ctx, userID, month, year)
	if err != nil {
		return Summary{}, err
	}

	// Divide-by-zero guard: zero budget reports 0% used no matter the
	// spending.
	var usedPct float64
	if monthlyBudget > 0 {
		usedPct = (monthlySpending / monthlyBudget) * 100
	}

	return Summary{
		Income:           core.Round2(income),
		Expenses:         core.Round2(expenses),
		Savings:          core.Round2(income - expenses),
		MonthlyBudget:    core.Round2(monthlyBudget),
		MonthlySpending:  core.Round2(monthlySpending),
		BudgetUsedPct:    core.Round2(usedPct),
		TransactionCount: len(txs),
		Currency:         "USD",
	}, nil
}

// ExpensesByCategory groups all expense transactions by their category
// string, summing USD-converted amounts. Categories pass through without
// canonicalization.
func (s *DashboardService) ExpensesByCategory(ctx context.Context, userID int64) (map[string]float64, error) {
	expenses, err := s.transactions.FindByUserAndType(ctx, userID, core.TypeExpense)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}

	totals := make(map[string]float64)
	for _, t := range expenses {
		totals[t.Category] += s.converter.Convert(ctx, t.Amount, t.Currency, "USD")
	}
	return totals, nil
}

// BudgetVsSpending returns the trailing six calendar months ending with the
// current one, oldest first. Month arithmetic is anchored to the first of
// the month to avoid end-of-month drift.
func (s *DashboardService) BudgetVsSpending(ctx context.Context, userID int64) ([]SeriesPoint, error) {
	now := time.Now()
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]SeriesPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		m := firstOfCurrent.AddDate(0, -i, 0)
		month, year := int(m.Month()), m.Year()

		budget, err := s.monthlyBudgetTotal(ctx, userID, month, year)
		if err != nil {
			return nil, err
		}
		spending, err := s.monthlySpendingTotal(ctx, userID, month, year)
		if err != nil {
			return nil, err
		}

		points = append(points, SeriesPoint{
			Label:    m.Format("Jan"),
			Budget:   core.Round2(budget),
			Spending: core.Round2(spending),
		})
	}
	return points, nil
}

// RecentTransactions returns the most recent transactions by date,
// descending, without currency conversion.
func (s *DashboardService) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	txs, err := s.transactions.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("find recent transactions: %w", err)
	}
	return txs, nil
}
