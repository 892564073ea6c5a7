package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"kaskelas/internal/core"
	"kaskelas/internal/store"
)

type memberRow struct {
	core.Member
	Debt core.Money
}

type membersView struct {
	page
	Query   string
	Members []memberRow
}

// matchesMember implements the members page search: case-insensitive
// substring match on the name, exact-case substring match on the NIM. An
// empty query matches everyone.
func matchesMember(m core.Member, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) ||
		strings.Contains(m.NIM, query)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.store.Snapshot()
		query := sanitizeInput(r.URL.Query().Get("q"))
		view := membersView{page: s.newPage(r, "members"), Query: query}
		for _, m := range snap.Members {
			if !matchesMember(m, query) {
				continue
			}
			view.Members = append(view.Members, memberRow{
				Member: m,
				Debt:   core.MemberDebtAmount(snap, m.ID),
			})
		}
		s.render(w, r, "members.html", view)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		m := core.Member{
			Name:  sanitizeInput(r.Form.Get("name")),
			NIM:   sanitizeInput(r.Form.Get("nim")),
			Phone: sanitizeInput(r.Form.Get("phone")),
		}
		added, err := s.store.AddMember(r.Context(), m)
		if err != nil {
			redirectError(w, r, "/members", err)
			return
		}
		slog.InfoContext(r.Context(), "Member added", "member_id", added.ID, "name", added.Name)
		seeOther(w, r, "/members")

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMemberUpdate(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	m := core.Member{
		ID:    r.Form.Get("id"),
		Name:  sanitizeInput(r.Form.Get("name")),
		NIM:   sanitizeInput(r.Form.Get("nim")),
		Phone: sanitizeInput(r.Form.Get("phone")),
	}
	if err := s.store.UpdateMember(r.Context(), m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		redirectError(w, r, "/members", err)
		return
	}
	seeOther(w, r, "/members")
}

func (s *Server) handleMemberDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := s.store.DeleteMember(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		redirectError(w, r, "/members", err)
		return
	}
	slog.InfoContext(r.Context(), "Member deleted", "member_id", id)
	seeOther(w, r, "/members")
}

// requirePOST enforces POST-only handlers.
func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// redirectError sends the user back to the page with the failure message in
// the query string.
func redirectError(w http.ResponseWriter, r *http.Request, path string, err error) {
	seeOther(w, r, path+"?err="+url.QueryEscape(err.Error()))
}
