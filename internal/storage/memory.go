package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
)

// MemoryStore keeps transactions and budgets in process memory. It is the
// default backend and the test double for the SQLite repository.
type MemoryStore struct {
	mu           sync.Mutex
	transactions []core.Transaction
	budgets      []core.Budget
	nextTxID     int64
	nextBudgetID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextTxID: 1, nextBudgetID: 1}
}

func sortByDateDesc(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Date.Equal(ts[j].Date) {
			return ts[i].ID > ts[j].ID
		}
		return ts[i].Date.After(ts[j].Date)
	})
}

func (s *MemoryStore) FindByUser(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (s *MemoryStore) FindByUserAndDateRange(_ context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	sortByDateDesc(out)
	return out, nil
}

func (s *MemoryStore) FindByUserAndType(_ context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID && strings.EqualFold(string(t.Type), string(typ)) {
			out = append(out, t)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (s *MemoryStore) FindRecentByUser(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	all, err := s.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) FindTransactionByID(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *MemoryStore) SaveTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == 0 {
		t.ID = s.nextTxID
		s.nextTxID++
		s.transactions = append(s.transactions, t)
		return t, nil
	}
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *MemoryStore) DeleteTransactionByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (s *MemoryStore) TransactionExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := s.FindTransactionByID(ctx, id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) FindBudgetsByUser(_ context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindBudgetsByUserMonthYear(_ context.Context, userID int64, month, year int) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == month && b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if b.ID == 0 {
		b.ID = s.nextBudgetID
		s.nextBudgetID++
		b.CreatedAt = now
		b.UpdatedAt = now
		s.budgets = append(s.budgets, b)
		return b, nil
	}
	for i := range s.budgets {
		if s.budgets[i].ID == b.ID {
			b.CreatedAt = s.budgets[i].CreatedAt
			b.UpdatedAt = now
			s.budgets[i] = b
			return b, nil
		}
	}
	return core.Budget{}, core.ErrBudgetNotFound
}

func (s *MemoryStore) FindBudgetByID(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrBudgetNotFound
}

func (s *MemoryStore) DeleteBudgetByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.budgets {
		if b.ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return core.ErrBudgetNotFound
}

func (s *MemoryStore) BudgetExistsByID(ctx context.Context, id int64) (bool, error) {
	_, err := s.FindBudgetByID(ctx, id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) UsersWithBudgets(_ context.Context, month, year int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[int64]struct{}{}
	var out []int64
	for _, b := range s.budgets {
		if b.Month != month || b.Year != year {
			continue
		}
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		out = append(out, b.UserID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
