package http

import (
	"net/http"

	"kaskelas/internal/core"
	"kaskelas/internal/report"
)

// page carries the fields every template needs.
type page struct {
	Theme  string
	Active string
	Error  string
}

func (s *Server) newPage(r *http.Request, active string) page {
	return page{
		Theme:  s.store.Theme(),
		Active: active,
		Error:  sanitizeInput(r.URL.Query().Get("err")),
	}
}

type dashboardView struct {
	page
	Totals      core.Totals
	Cashflow    []cashflowRow
	Categories  []core.CategoryAmount
	MemberCount int
	Dues        []report.DueRow
}

type cashflowRow struct {
	Label        string
	Income       core.Money
	Expense      core.Money
	IncomeWidth  int
	ExpenseWidth int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sum := s.summary()
	snap := s.store.Snapshot()

	view := dashboardView{
		page:        s.newPage(r, "dashboard"),
		Totals:      sum.Totals,
		Categories:  sum.Categories,
		MemberCount: len(snap.Members),
		Dues:        sum.Dues,
	}

	// Scale the chart bars against the busiest month.
	var max core.Money
	for _, m := range sum.Cashflow {
		if m.Income > max {
			max = m.Income
		}
		if m.Expense > max {
			max = m.Expense
		}
	}
	for _, m := range sum.Cashflow {
		row := cashflowRow{Label: m.Label, Income: m.Income, Expense: m.Expense}
		if max > 0 {
			row.IncomeWidth = int((m.Income*100 + max/2) / max)
			row.ExpenseWidth = int((m.Expense*100 + max/2) / max)
		}
		view.Cashflow = append(view.Cashflow, row)
	}

	s.render(w, r, "dashboard.html", view)
}
