package http

import (
	"errors"
	"log/slog"
	"net/http"

	"kaskelas/internal/core"
	"kaskelas/internal/report"
	"kaskelas/internal/store"
)

type expenseRow struct {
	core.Expense
	PrettyDate string
}

type expensesView struct {
	page
	Expenses   []expenseRow
	Categories []core.CategoryAmount
	Total      core.Money
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.store.Snapshot()
		view := expensesView{
			page:       s.newPage(r, "expenses"),
			Categories: core.ExpensesByCategory(snap),
		}
		for _, e := range snap.Expenses {
			view.Expenses = append(view.Expenses, expenseRow{
				Expense:    e,
				PrettyDate: report.FormatLongDate(e.Date),
			})
			view.Total += e.Amount
		}
		s.render(w, r, "expenses.html", view)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		amount, err := parseMoney(r.Form.Get("amount"))
		if err != nil {
			redirectError(w, r, "/expenses", core.ErrInvalidAmount)
			return
		}
		date, err := parseDateField(r.Form, "date")
		if err != nil {
			redirectError(w, r, "/expenses", err)
			return
		}
		e := core.Expense{
			Title:    sanitizeInput(r.Form.Get("title")),
			Amount:   amount,
			Date:     date,
			Category: sanitizeInput(r.Form.Get("category")),
			Note:     sanitizeInput(r.Form.Get("note")),
		}
		added, err := s.store.AddExpense(r.Context(), e)
		if err != nil {
			redirectError(w, r, "/expenses", err)
			return
		}
		slog.InfoContext(r.Context(), "Expense added",
			"expense_id", added.ID, "title", added.Title, "amount", int64(added.Amount))
		seeOther(w, r, "/expenses")

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if !confirmed(r) {
		http.Error(w, "confirmation required", http.StatusBadRequest)
		return
	}

	id := r.Form.Get("id")
	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "expense not found", http.StatusNotFound)
			return
		}
		redirectError(w, r, "/expenses", err)
		return
	}
	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id)
	seeOther(w, r, "/expenses")
}
