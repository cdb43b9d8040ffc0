package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// BudgetAlertMessage notifies downstream consumers that a budget went over
// its limit. Amounts carry the values computed at scan time; consumers must
// not treat them as live.
type BudgetAlertMessage struct {
	UserID      int64     `json:"userId"`
	BudgetID    int64     `json:"budgetId"`
	Category    string    `json:"category"`
	LimitAmount float64   `json:"limitAmount"`
	Spent       float64   `json:"spent"`
	Currency    string    `json:"currency"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(userID int64, b core.Budget) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		UserID:      userID,
		BudgetID:    b.ID,
		Category:    b.Category,
		LimitAmount: b.LimitAmount,
		Spent:       b.Spent,
		Currency:    b.Currency,
		Month:       b.Month,
		Year:        b.Year,
		Status:      string(b.Status()),
		Timestamp:   time.Now(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
