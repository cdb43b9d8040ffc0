package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limitAmount"`
	Color       string  `json:"color"`
	Currency    string  `json:"currency"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
}

func (req budgetRequest) toBudget(userID int64) core.Budget {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	return core.Budget{
		UserID:      userID,
		Category:    strings.TrimSpace(req.Category),
		LimitAmount: req.LimitAmount,
		Color:       req.Color,
		Currency:    currency,
		Month:       req.Month,
		Year:        req.Year,
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	month := queryInt(r, "month", 0)
	year := queryInt(r, "year", 0)

	var budgets []core.Budget
	if month > 0 && year > 0 {
		budgets, err = s.budgets.BudgetsForMonth(r.Context(), userID, month, year)
	} else {
		budgets, err = s.budgets.BudgetsForUser(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := s.budgets.CreateBudget(r.Context(), req.toBudget(userID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// User is taken from the stored budget; the request cannot reassign it.
	updated, err := s.budgets.UpdateBudget(r.Context(), id, req.toBudget(0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.budgets.DeleteBudget(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	status, err := s.budgets.Status(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
