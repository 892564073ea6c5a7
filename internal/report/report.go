// Package report builds the printable fund summary and the WhatsApp
// reminder payloads derived from it.
package report

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"kaskelas/internal/core"
)

type (
	// Summary is everything the printable report page shows.
	Summary struct {
		GeneratedAt string
		Totals      core.Totals
		Debts       []DebtRow
		Cashflow    [12]core.MonthCashflow
		Categories  []core.CategoryAmount
		Dues        []DueRow
	}

	// DebtRow is a debtor with display-ready amounts.
	DebtRow struct {
		Member core.Member
		Debt   core.Money
		Pretty string
	}

	// DueRow is one due with its completion progress.
	DueRow struct {
		Due        core.Due
		Deadline   string
		Overdue    bool
		Completion core.DueCompletion
		Unpaid     []core.Member
	}
)

// BuildSummary assembles the report from a snapshot.
func BuildSummary(s core.Snapshot, now time.Time) Summary {
	sum := Summary{
		GeneratedAt: FormatLongDate(now),
		Totals:      core.ComputeTotals(s),
		Cashflow:    core.MonthlyCashflow(s, now.Year()),
		Categories:  core.ExpensesByCategory(s),
	}
	for _, row := range core.DebtReport(s) {
		sum.Debts = append(sum.Debts, DebtRow{
			Member: row.Member,
			Debt:   row.Debt,
			Pretty: FormatRupiah(row.Debt),
		})
	}
	for _, d := range s.Dues {
		sum.Dues = append(sum.Dues, DueRow{
			Due:        d,
			Deadline:   FormatLongDate(d.Deadline),
			Overdue:    d.Deadline.Before(now),
			Completion: core.CompletionFor(s, d.ID),
			Unpaid:     core.UnpaidMembers(s, d.ID),
		})
	}
	return sum
}

// ReminderMessage is the text sent to a member who owes the fund money.
func ReminderMessage(name string, debt core.Money) string {
	return fmt.Sprintf(
		"Halo %s, diingatkan untuk segera melunasi tunggakan uang kas sebesar %s. Terima kasih.",
		name, FormatRupiah(debt))
}

// NormalizePhone converts a local phone number to the international digits
// WhatsApp expects: a leading "0" becomes "62", then every non-digit is
// dropped.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "0") {
		phone = "62" + phone[1:]
	}
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppLink builds a wa.me deep link that opens a chat with the member,
// reminder text prefilled. Spaces are escaped as %20, not "+", because wa.me
// shows the raw "+" otherwise.
func WhatsAppLink(m core.Member, debt core.Money) string {
	text := strings.ReplaceAll(url.QueryEscape(ReminderMessage(m.Name, debt)), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(m.Phone), text)
}
