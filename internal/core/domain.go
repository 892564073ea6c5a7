package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Money is an amount in whole rupiah. The fund has no minor units.
	Money int64

	Member struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		NIM   string `json:"nim"`
		Phone string `json:"phone"`
	}

	// Due is a fee every member owes the fund. Immutable once created.
	Due struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		Amount   Money     `json:"amount"`
		Deadline time.Time `json:"deadline"`
		Category string    `json:"category"`
	}

	// Payment records that one member settled one due. Its existence is the
	// sole paid/unpaid signal; Amount is copied from the due at toggle time.
	Payment struct {
		ID       string    `json:"id"`
		DueID    string    `json:"feeId"`
		MemberID string    `json:"studentId"`
		Date     time.Time `json:"date"`
		Amount   Money     `json:"amount"`
	}

	Expense struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		Amount   Money     `json:"amount"`
		Date     time.Time `json:"date"`
		Category string    `json:"category"`
		Note     string    `json:"description,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyCategory = errors.New("empty category")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// NewID returns a fresh opaque identifier for any record.
func NewID() string {
	return uuid.NewString()
}

func (m Money) Validate() error {
	if m < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Member) Validate() error {
	if len(strings.TrimSpace(m.Name)) == 0 {
		return ErrEmptyName
	}
	if len(m.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

func (d Due) Validate() error {
	if len(strings.TrimSpace(d.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(d.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.Deadline.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Snapshot is a consistent view of the four collections, in insertion order.
// The aggregation functions in summary.go derive everything else from it.
type Snapshot struct {
	Members  []Member  `json:"members"`
	Dues     []Due     `json:"dues"`
	Payments []Payment `json:"payments"`
	Expenses []Expense `json:"expenses"`
}

// Clone returns an independent copy; records themselves are value types.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Members:  append([]Member(nil), s.Members...),
		Dues:     append([]Due(nil), s.Dues...),
		Payments: append([]Payment(nil), s.Payments...),
		Expenses: append([]Expense(nil), s.Expenses...),
	}
}

// PaymentFor reports whether the (due, member) pair has a payment recorded.
func (s Snapshot) PaymentFor(dueID, memberID string) (Payment, bool) {
	for _, p := range s.Payments {
		if p.DueID == dueID && p.MemberID == memberID {
			return p, true
		}
	}
	return Payment{}, false
}
