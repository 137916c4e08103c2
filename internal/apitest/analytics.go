package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

// SetAnalytics задает тело ответа GET /api/analytics/{period}.
func (s *Server) SetAnalytics(period models.Period, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics[string(period)] = body
}

// SeedTransactions добавляет транзакции, назначая id и порядковый номер.
func (s *Server) SeedTransactions(items ...models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range items {
		tx.ID = s.newID()
		tx.SNo = len(s.transactions) + 1
		s.transactions = append(s.transactions, tx)
	}
}

// Transactions текущее состояние транзакций на сервере.
func (s *Server) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction{}, s.transactions...)
}

func (s *Server) periodAnalytics(w http.ResponseWriter, r *http.Request) {
	period := models.Period(chi.URLParam(r, "period"))
	if !period.Valid() {
		writeError(w, r, http.StatusNotFound, "unknown period")
		return
	}

	s.mu.Lock()
	body, ok := s.analytics[string(period)]
	s.mu.Unlock()
	if !ok {
		body = models.Analytics{TotalAmount: "₹0"}
	}
	render.JSON(w, r, body)
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, r, http.StatusBadRequest, "start and end are required")
		return
	}
	if start > end {
		writeError(w, r, http.StatusBadRequest, "start must not be after end")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.CalendarData{Transactions: []models.Transaction{}}
	var total float64
	for _, tx := range s.transactions {
		day := datePart(tx.Date)
		if day < start || day > end {
			continue
		}
		out.Transactions = append(out.Transactions, tx)
		total += amount(tx.TotalPaid)
	}
	out.TotalSales = len(out.Transactions)
	out.TotalAmount = fmt.Sprintf("₹%.0f", total)
	render.JSON(w, r, out)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updateItem(w, r, s.transactions, func(tx models.Transaction) int64 { return tx.ID }, func(*models.Transaction) {})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = deleteItem(w, r, s.transactions, func(tx models.Transaction) int64 { return tx.ID }, "Transaction not found")
}

func datePart(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// amount разбирает сумму вида "₹1,200.50".
func amount(s string) float64 {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	v, _ := strconv.ParseFloat(clean, 64)
	return v
}

// decode общий разбор тела запроса.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
