package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kaskelas/internal/core"
)

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   core.Money
		want string
	}{
		{0, "Rp0"},
		{500, "Rp500"},
		{20000, "Rp20.000"},
		{1500000, "Rp1.500.000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRupiah(tc.in))
	}
}

func TestFormatLongDate(t *testing.T) {
	d := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2 Januari 2026", FormatLongDate(d))

	d = time.Date(2025, time.August, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "17 Agustus 2025", FormatLongDate(d))
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"081234567890", "6281234567890"},
		{"0812-3456-7890", "6281234567890"},
		{"+62 812 3456 7890", "6281234567890"},
		{"62812", "62812"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestReminderMessage(t *testing.T) {
	got := ReminderMessage("Andi Pratama", 40000)
	want := "Halo Andi Pratama, diingatkan untuk segera melunasi tunggakan uang kas sebesar Rp40.000. Terima kasih."
	assert.Equal(t, want, got)
}

func TestWhatsAppLink(t *testing.T) {
	m := core.Member{Name: "Andi", Phone: "081234567890"}
	link := WhatsAppLink(m, 20000)

	assert.Contains(t, link, "https://wa.me/6281234567890?text=")
	assert.Contains(t, link, "Halo%20Andi")
	assert.NotContains(t, link, "+", "spaces must be escaped as %20, never +")
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	snap := core.Snapshot{
		Members: []core.Member{
			{ID: "m1", Name: "Andi", Phone: "0811"},
			{ID: "m2", Name: "Budi", Phone: "0812"},
		},
		Dues: []core.Due{
			{ID: "d1", Title: "Kas Maret", Amount: 10000, Deadline: now, Category: "Wajib"},
		},
		Payments: []core.Payment{
			{ID: "p1", DueID: "d1", MemberID: "m1", Date: now, Amount: 10000},
		},
		Expenses: []core.Expense{
			{ID: "e1", Title: "Spidol", Amount: 3000, Date: now, Category: "ATK"},
		},
	}

	sum := BuildSummary(snap, now)

	assert.Equal(t, "5 Maret 2026", sum.GeneratedAt)
	assert.Equal(t, core.Money(10000), sum.Totals.Income)
	assert.Equal(t, core.Money(7000), sum.Totals.Balance)
	assert.Equal(t, core.Money(10000), sum.Totals.Arrears)

	// Only Budi owes.
	if assert.Len(t, sum.Debts, 1) {
		assert.Equal(t, "m2", sum.Debts[0].Member.ID)
		assert.Equal(t, "Rp10.000", sum.Debts[0].Pretty)
	}

	if assert.Len(t, sum.Dues, 1) {
		assert.Equal(t, 1, sum.Dues[0].Completion.Paid)
		assert.Equal(t, 50, sum.Dues[0].Completion.Percent)
		assert.False(t, sum.Dues[0].Overdue, "deadline equal to now has not passed")
		if assert.Len(t, sum.Dues[0].Unpaid, 1) {
			assert.Equal(t, "m2", sum.Dues[0].Unpaid[0].ID)
		}
	}

	assert.Equal(t, core.Money(10000), sum.Cashflow[2].Income)
	assert.Equal(t, core.Money(3000), sum.Cashflow[2].Expense)
	if assert.Len(t, sum.Categories, 1) {
		assert.Equal(t, "ATK", sum.Categories[0].Name)
	}
}

func TestBuildSummaryFlagsOverdueDues(t *testing.T) {
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	snap := core.Snapshot{
		Members: []core.Member{{ID: "m1", Name: "Andi"}},
		Dues: []core.Due{
			{ID: "d1", Title: "Kas Februari", Amount: 10000, Deadline: now.AddDate(0, -1, 0), Category: "Wajib"},
			{ID: "d2", Title: "Kas April", Amount: 10000, Deadline: now.AddDate(0, 1, 0), Category: "Wajib"},
		},
	}

	sum := BuildSummary(snap, now)

	if assert.Len(t, sum.Dues, 2) {
		assert.True(t, sum.Dues[0].Overdue, "past deadline")
		assert.False(t, sum.Dues[1].Overdue, "future deadline")
	}
}
