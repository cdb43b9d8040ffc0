package http

import (
	"net/http"
	"strconv"
	"strings"
)

// handleExchangeRate returns the effective rate between two currencies by
// converting a unit amount.
func (s *Server) handleExchangeRate(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from and to query parameters are required"})
		return
	}

	rate := s.converter.Convert(r.Context(), 1.0, from, to)
	writeJSON(w, http.StatusOK, map[string]any{
		"from": strings.ToUpper(from),
		"to":   strings.ToUpper(to),
		"rate": rate,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount, from, and to query parameters are required"})
		return
	}

	converted := s.converter.Convert(r.Context(), amount, from, to)
	writeJSON(w, http.StatusOK, map[string]any{
		"originalAmount":  amount,
		"fromCurrency":    strings.ToUpper(from),
		"toCurrency":      strings.ToUpper(to),
		"convertedAmount": converted,
		"fromSymbol":      s.converter.SymbolFor(from),
		"toSymbol":        s.converter.SymbolFor(to),
	})
}

func (s *Server) handleAllRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.AllRates(r.Context()))
}

func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	writeJSON(w, http.StatusOK, map[string]string{
		"currency": strings.ToUpper(code),
		"symbol":   s.converter.SymbolFor(code),
	})
}
