package http

import (
	"log/slog"
	"net/http"
)

// handleTheme flips the display preference between light and dark.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if !requirePOST(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	theme := r.Form.Get("theme")
	if theme == "" {
		// No explicit choice: toggle from the current preference.
		if s.store.Theme() == "light" {
			theme = "dark"
		} else {
			theme = "light"
		}
	}
	if err := s.store.SetTheme(r.Context(), theme); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	back := r.Header.Get("Referer")
	if back == "" {
		back = "/"
	}
	seeOther(w, r, back)
}

// handleReset wipes everything and restores the seed data. It refuses to run
// without the confirm field the UI's dialog sets.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
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

	if err := s.store.Reset(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Reset failed", "error", err)
		redirectError(w, r, "/", err)
		return
	}
	slog.InfoContext(r.Context(), "Fund data reset")
	seeOther(w, r, "/")
}
