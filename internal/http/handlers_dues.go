package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kaskelas/internal/core"
	"kaskelas/internal/report"
	"kaskelas/internal/store"
)

type duePaymentRow struct {
	Member core.Member
	Paid   bool
}

type dueDetail struct {
	Due        core.Due
	Deadline   string
	Overdue    bool
	Completion core.DueCompletion
	Rows       []duePaymentRow
}

type duesView struct {
	page
	Dues []dueDetail
}

func (s *Server) handleDues(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.store.Snapshot()
		now := time.Now()
		view := duesView{page: s.newPage(r, "dues")}
		for _, d := range snap.Dues {
			detail := dueDetail{
				Due:        d,
				Deadline:   report.FormatLongDate(d.Deadline),
				Overdue:    d.Deadline.Before(now),
				Completion: core.CompletionFor(snap, d.ID),
			}
			for _, m := range snap.Members {
				_, paid := snap.PaymentFor(d.ID, m.ID)
				detail.Rows = append(detail.Rows, duePaymentRow{Member: m, Paid: paid})
			}
			view.Dues = append(view.Dues, detail)
		}
		s.render(w, r, "dues.html", view)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		amount, err := parseMoney(r.Form.Get("amount"))
		if err != nil {
			redirectError(w, r, "/dues", core.ErrInvalidAmount)
			return
		}
		deadline, err := parseDateField(r.Form, "deadline")
		if err != nil {
			redirectError(w, r, "/dues", err)
			return
		}
		d := core.Due{
			Title:    sanitizeInput(r.Form.Get("title")),
			Amount:   amount,
			Deadline: deadline,
			Category: sanitizeInput(r.Form.Get("category")),
		}
		added, err := s.store.AddDue(r.Context(), d)
		if err != nil {
			redirectError(w, r, "/dues", err)
			return
		}
		slog.InfoContext(r.Context(), "Due added", "due_id", added.ID, "title", added.Title, "amount", int64(added.Amount))
		seeOther(w, r, "/dues")

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDueDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := s.store.DeleteDue(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "due not found", http.StatusNotFound)
			return
		}
		redirectError(w, r, "/dues", err)
		return
	}
	slog.InfoContext(r.Context(), "Due deleted", "due_id", id)
	seeOther(w, r, "/dues")
}

func (s *Server) handleDueToggle(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	dueID := r.Form.Get("due_id")
	memberID := r.Form.Get("member_id")
	paid, err := s.store.TogglePayment(r.Context(), dueID, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "due not found", http.StatusNotFound)
			return
		}
		redirectError(w, r, "/dues", err)
		return
	}
	slog.InfoContext(r.Context(), "Payment toggled",
		"due_id", dueID, "member_id", memberID, "paid", paid)
	seeOther(w, r, "/dues")
}
