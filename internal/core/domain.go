package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

const (
	// BudgetUnder means spent is at or below 80% of the limit.
	BudgetUnder BudgetStatus = "under"
	// BudgetNear means spent is above 80% of the limit but not over it.
	BudgetNear BudgetStatus = "near"
	// BudgetOver means spent exceeds the limit.
	BudgetOver BudgetStatus = "over"
)

type (
	TransactionType string

	BudgetStatus string

	// Money is an immutable (amount, currency) pair. Conversion produces a
	// new value and never mutates the source.
	Money struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}

	Transaction struct {
		ID       int64           `json:"id"`
		UserID   int64           `json:"userId"`
		Name     string          `json:"name"`
		Amount   float64         `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Currency string          `json:"currency"`
		Date     time.Time       `json:"date"`
	}

	Budget struct {
		ID          int64   `json:"id"`
		UserID      int64   `json:"userId"`
		Category    string  `json:"category"`
		LimitAmount float64 `json:"limitAmount"`
		// Spent is derived from transactions at read time and is never
		// persisted.
		Spent     float64   `json:"spent"`
		Color     string    `json:"color"`
		Currency  string    `json:"currency"`
		Month     int       `json:"month"`
		Year      int       `json:"year"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

var (
	ErrInvalidBudget       = errors.New("invalid budget")
	ErrDuplicateBudget     = errors.New("budget already exists")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrProviderUnavailable stays internal to the rate cache; it is absorbed
	// by stale-or-fallback degradation and never reaches callers.
	ErrProviderUnavailable = errors.New("rate provider unavailable")
)

// Round2 rounds to 2 decimal places with half-up semantics.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func NewMoney(amount float64, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Matches compares transaction types case-insensitively.
func (ty TransactionType) Matches(other TransactionType) bool {
	return strings.EqualFold(string(ty), string(other))
}

// IsExpense reports whether the transaction is expense-typed. Type matching
// is case-insensitive because the field arrives from an external store.
func (t Transaction) IsExpense() bool {
	return strings.EqualFold(string(t.Type), string(TypeExpense))
}

func (t Transaction) IsIncome() bool {
	return strings.EqualFold(string(t.Type), string(TypeIncome))
}

func (t Transaction) Validate() error {
	if t.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTransaction)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if !t.IsExpense() && !t.IsIncome() {
		return fmt.Errorf("%w: type must be income or expense", ErrInvalidTransaction)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	return nil
}

// Validate checks the persisted budget fields. Spent is derived and not part
// of validation.
func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidBudget)
	}
	if b.LimitAmount <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidBudget)
	}
	if b.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidBudget)
	}
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidBudget)
	}
	if b.Year < 2000 {
		return fmt.Errorf("%w: year must be 2000 or later", ErrInvalidBudget)
	}
	return nil
}

// PercentUsed returns spent as a percentage of the limit, 0 when the limit
// is not positive.
func (b Budget) PercentUsed() float64 {
	if b.LimitAmount <= 0 {
		return 0
	}
	return (b.Spent / b.LimitAmount) * 100
}

func (b Budget) IsOverBudget() bool {
	return b.Spent > b.LimitAmount
}

func (b Budget) IsNearLimit() bool {
	return b.Spent > b.LimitAmount*0.8 && b.Spent <= b.LimitAmount
}

// Status classifies the budget as under, near, or over its limit.
func (b Budget) Status() BudgetStatus {
	switch {
	case b.IsOverBudget():
		return BudgetOver
	case b.IsNearLimit():
		return BudgetNear
	default:
		return BudgetUnder
	}
}

// MonthRange returns the first and last day of a calendar month in UTC.
func MonthRange(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}
