package core

import (
	"sort"
	"time"
)

// MonthLabels are the fixed bucket names for the monthly cashflow series.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

type (
	// Totals are the headline dashboard figures.
	Totals struct {
		Income    Money // sum of all recorded payments
		Expense   Money // sum of all expenses
		Balance   Money // Income - Expense
		Potential Money // sum over dues of amount x current member count
		Arrears   Money // Potential - Income
	}

	// MemberDebt is one row of the debt report.
	MemberDebt struct {
		Member Member
		Debt   Money
	}

	// DueCompletion is the paid/total progress of a single due.
	DueCompletion struct {
		Paid    int
		Total   int
		Percent int // rounded to nearest, ties up
	}

	// MonthCashflow is one bucket of the current-year series.
	MonthCashflow struct {
		Label   string
		Income  Money
		Expense Money
	}

	// CategoryAmount is an expense total grouped by category name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}
)

// ComputeTotals derives the headline figures from the snapshot. The potential
// total multiplies every due by the current member count, so members joined
// after a due was created count as owing it retroactively.
func ComputeTotals(s Snapshot) Totals {
	var t Totals
	for _, p := range s.Payments {
		t.Income += p.Amount
	}
	for _, e := range s.Expenses {
		t.Expense += e.Amount
	}
	for _, d := range s.Dues {
		t.Potential += d.Amount * Money(len(s.Members))
	}
	t.Balance = t.Income - t.Expense
	t.Arrears = t.Potential - t.Income
	return t
}

// MemberDebtAmount sums the amounts of all dues the member has not paid.
func MemberDebtAmount(s Snapshot, memberID string) Money {
	var debt Money
	for _, d := range s.Dues {
		if _, paid := s.PaymentFor(d.ID, memberID); !paid {
			debt += d.Amount
		}
	}
	return debt
}

// DebtReport lists members with outstanding debt, largest first. Members who
// owe nothing are excluded; ties keep insertion order.
func DebtReport(s Snapshot) []MemberDebt {
	var rows []MemberDebt
	for _, m := range s.Members {
		if debt := MemberDebtAmount(s, m.ID); debt > 0 {
			rows = append(rows, MemberDebt{Member: m, Debt: debt})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Debt > rows[j].Debt
	})
	return rows
}

// CompletionFor reports how many members settled the due, as a count and a
// rounded percentage of the current member count.
func CompletionFor(s Snapshot, dueID string) DueCompletion {
	c := DueCompletion{Total: len(s.Members)}
	for _, p := range s.Payments {
		if p.DueID == dueID {
			c.Paid++
		}
	}
	if c.Total > 0 {
		// round half up: floor(paid/total*100 + 0.5)
		c.Percent = (2*c.Paid*100 + c.Total) / (2 * c.Total)
	}
	return c
}

// UnpaidMembers returns the members with no payment recorded for the due.
func UnpaidMembers(s Snapshot, dueID string) []Member {
	var out []Member
	for _, m := range s.Members {
		if _, paid := s.PaymentFor(dueID, m.ID); !paid {
			out = append(out, m)
		}
	}
	return out
}

// MonthlyCashflow buckets payments and expenses of the given year into the
// twelve calendar months. Transactions from other years are excluded.
func MonthlyCashflow(s Snapshot, year int) [12]MonthCashflow {
	var series [12]MonthCashflow
	for i := range series {
		series[i].Label = MonthLabels[i]
	}
	for _, p := range s.Payments {
		if p.Date.Year() == year {
			series[int(p.Date.Month())-1].Income += p.Amount
		}
	}
	for _, e := range s.Expenses {
		if e.Date.Year() == year {
			series[int(e.Date.Month())-1].Expense += e.Amount
		}
	}
	return series
}

// CurrentYearCashflow is MonthlyCashflow for the wall-clock year.
func CurrentYearCashflow(s Snapshot) [12]MonthCashflow {
	return MonthlyCashflow(s, time.Now().Year())
}

// ExpensesByCategory groups expense totals by their category string,
// case-sensitively, in first-seen order. Categories without expenses do not
// appear.
func ExpensesByCategory(s Snapshot) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, e := range s.Expenses {
		if i, ok := idx[e.Category]; ok {
			out[i].Amount += e.Amount
			continue
		}
		idx[e.Category] = len(out)
		out = append(out, CategoryAmount{Name: e.Category, Amount: e.Amount})
	}
	return out
}
