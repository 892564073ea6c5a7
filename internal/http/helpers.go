package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kaskelas/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseMoney reads an amount in whole rupiah. Thousands separators and
// stray spaces are tolerated ("20.000", "20 000", "20000").
func parseMoney(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(".", "", ",", "", " ", "", "Rp", "").Replace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return core.Money(n), nil
}

// parseDateField reads a YYYY-MM-DD form value, defaulting to today when
// blank.
func parseDateField(form map[string][]string, key string) (time.Time, error) {
	var raw string
	if vs := form[key]; len(vs) > 0 {
		raw = strings.TrimSpace(vs[0])
	}
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// confirmed reports whether the request carries the confirm field set by the
// UI's confirmation dialog.
func confirmed(r *http.Request) bool {
	return r.Form.Get("confirm") == "yes"
}

// seeOther redirects with 303 so the browser re-GETs after a mutation.
func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
