package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

// TransactionService is the CRUD surface over the transaction store. The
// aggregation core only reads transactions; these writes belong to the
// store's own lifecycle.
type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

func normalizeTransaction(t core.Transaction) core.Transaction {
	t.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(string(t.Type))))
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	if t.Currency == "" {
		t.Currency = "USD"
	}
	return t
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = normalizeTransaction(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.SaveTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return saved, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.FindTransactionByID(ctx, id)
}

func (s *TransactionService) ListByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.FindByUser(ctx, userID)
}

// Update fully replaces the mutable fields of an existing transaction. The
// owning user never changes.
func (s *TransactionService) Update(ctx context.Context, id int64, details core.Transaction) (core.Transaction, error) {
	existing, err := s.store.FindTransactionByID(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	details = normalizeTransaction(details)
	details.ID = existing.ID
	details.UserID = existing.UserID
	if err := details.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.SaveTransaction(ctx, details)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", saved.ID, "user_id", saved.UserID)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	exists, err := s.store.TransactionExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check transaction exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: id %d", core.ErrTransactionNotFound, id)
	}
	return s.store.DeleteTransactionByID(ctx, id)
}
