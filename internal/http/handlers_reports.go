package http

import (
	"errors"
	"net/http"

	"kaskelas/internal/core"
	applog "kaskelas/internal/log"
	"kaskelas/internal/report"
)

var errNothingOwed = errors.New("member has no outstanding debt")

type debtRowView struct {
	Member core.Member
	Debt   core.Money
	Link   string
}

type reportsView struct {
	page
	Summary    report.Summary
	Debts      []debtRowView
	CanExport  bool
	CanRemind  bool
	ExportedOK bool
	RemindedOK bool
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sum := s.summary()
	view := reportsView{
		page:       s.newPage(r, "reports"),
		Summary:    sum,
		CanExport:  s.exporter != nil,
		CanRemind:  s.publisher != nil,
		ExportedOK: r.URL.Query().Get("exported") == "1",
		RemindedOK: r.URL.Query().Get("reminded") == "1",
	}
	for _, d := range sum.Debts {
		view.Debts = append(view.Debts, debtRowView{
			Member: d.Member,
			Debt:   d.Debt,
			Link:   report.WhatsAppLink(d.Member, d.Debt),
		})
	}

	s.render(w, r, "report.html", view)
}

// handleRemind queues a reminder for one indebted member. The wa.me link on
// the page opens immediately; this path hands the same reminder to the
// worker queue for out-of-band dispatch.
func (s *Server) handleRemind(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if s.publisher == nil {
		http.Error(w, "reminder queue not configured", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	memberID := r.Form.Get("member_id")
	snap := s.store.Snapshot()

	var member core.Member
	found := false
	for _, m := range snap.Members {
		if m.ID == memberID {
			member, found = m, true
			break
		}
	}
	if !found {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}

	debt := core.MemberDebtAmount(snap, memberID)
	if debt <= 0 {
		redirectError(w, r, "/reports", errNothingOwed)
		return
	}

	structured := applog.NewStructuredLogger(applog.FromContext(r.Context()))
	if err := s.publisher.PublishReminder(r.Context(), member, debt); err != nil {
		structured.LogError(r.Context(), "Reminder publish failed", err,
			applog.ComponentHTTP, applog.OpRemind,
			applog.NewFields().WithMember(memberID, member.Name))
		redirectError(w, r, "/reports", err)
		return
	}

	structured.LogReminderQueued(r.Context(), memberID, member.Name, int64(debt))
	seeOther(w, r, "/reports?reminded=1")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if s.exporter == nil {
		http.Error(w, "sheets export not configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.exporter.Export(r.Context(), s.summary()); err != nil {
		structured := applog.NewStructuredLogger(applog.FromContext(r.Context()))
		structured.LogError(r.Context(), "Report export failed", err,
			applog.ComponentHTTP, applog.OpExport, applog.NewFields())
		redirectError(w, r, "/reports", err)
		return
	}
	seeOther(w, r, "/reports?exported=1")
}
