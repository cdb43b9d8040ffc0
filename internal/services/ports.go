package services

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports for the external stores. The aggregation core is read-only over
// transactions; budgets get full CRUD plus the derived-spent attachment.
type (
	TransactionStore interface {
		FindByUser(ctx context.Context, userID int64) ([]core.Transaction, error)
		FindByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error)
		FindByUserAndType(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error)
		FindRecentByUser(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
		FindTransactionByID(ctx context.Context, id int64) (core.Transaction, error)
		SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransactionByID(ctx context.Context, id int64) error
		TransactionExistsByID(ctx context.Context, id int64) (bool, error)
	}

	BudgetStore interface {
		FindBudgetsByUser(ctx context.Context, userID int64) ([]core.Budget, error)
		FindBudgetsByUserMonthYear(ctx context.Context, userID int64, month, year int) ([]core.Budget, error)
		FindBudgetByID(ctx context.Context, id int64) (core.Budget, error)
		SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudgetByID(ctx context.Context, id int64) error
		BudgetExistsByID(ctx context.Context, id int64) (bool, error)
		UsersWithBudgets(ctx context.Context, month, year int) ([]int64, error)
	}

	// AlertPublisher is the outbound port for over-budget notifications.
	AlertPublisher interface {
		PublishBudgetAlert(ctx context.Context, userID int64, b core.Budget) error
	}
)
