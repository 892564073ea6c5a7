package report

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"kaskelas/internal/core"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// monthNames are the full Indonesian month names, indexed by time.Month-1.
var monthNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatRupiah renders an amount with Indonesian digit grouping,
// e.g. FormatRupiah(20000) == "Rp20.000".
func FormatRupiah(m core.Money) string {
	return idPrinter.Sprintf("Rp%d", int64(m))
}

// FormatLongDate renders a date the way it appears on printed reports,
// e.g. "2 Januari 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}
