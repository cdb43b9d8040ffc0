package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AlertScanner walks every user with budgets in the current month and
// publishes one alert per over-limit budget. Publish failures are logged and
// do not abort the scan.
type AlertScanner struct {
	budgets   *BudgetService
	store     BudgetStore
	publisher AlertPublisher
}

func NewAlertScanner(budgets *BudgetService, store BudgetStore, publisher AlertPublisher) *AlertScanner {
	return &AlertScanner{
		budgets:   budgets,
		store:     store,
		publisher: publisher,
	}
}

// Scan runs one pass over the current month's budgets and returns the number
// of alerts published.
func (s *AlertScanner) Scan(ctx context.Context) (int, error) {
	now := time.Now()
	users, err := s.store.UsersWithBudgets(ctx, int(now.Month()), now.Year())
	if err != nil {
		return 0, fmt.Errorf("list users with budgets: %w", err)
	}

	published := 0
	for _, userID := range users {
		over, err := s.budgets.OverspentBudgets(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Overspent budget scan failed for user",
				"user_id", userID, "error", err)
			continue
		}

		for _, b := range over {
			if s.publisher == nil {
				slog.WarnContext(ctx, "Alert publisher not available, skipping budget alert",
					"user_id", userID, "budget_id", b.ID)
				continue
			}
			if err := s.publisher.PublishBudgetAlert(ctx, userID, b); err != nil {
				slog.ErrorContext(ctx, "Failed to publish budget alert",
					"user_id", userID, "budget_id", b.ID, "error", err)
				continue
			}
			published++
		}
	}

	slog.InfoContext(ctx, "Budget alert scan completed",
		"users", len(users), "alerts_published", published)
	return published, nil
}
