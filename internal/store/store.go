// Package store holds the four fund collections in memory and persists each
// one as a JSON blob after every successful mutation. Mutations that cannot
// be persisted are rolled back and the write error is returned to the
// caller, so a change the user saw confirmed is always durable.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kaskelas/internal/blobstore"
	"kaskelas/internal/core"
	"kaskelas/internal/metrics"
)

// ErrNotFound is returned by mutations referencing an id that is not in the
// collection. The original app swallowed these silently; here the caller
// gets to know.
var ErrNotFound = errors.New("no such record")

// Store is the single authority over the fund's collections.
type Store struct {
	mu    sync.RWMutex
	snap  core.Snapshot
	theme string

	blobs   blobstore.Store
	metrics *metrics.Metrics

	subMu sync.Mutex
	subs  []func()
}

// New hydrates a store from the blob store. Missing member/due blobs fall
// back to seed data (which is persisted immediately); payments and expenses
// default to empty.
func New(ctx context.Context, blobs blobstore.Store, m *metrics.Metrics) (*Store, error) {
	s := &Store{blobs: blobs, metrics: m, theme: "light"}

	seeded := false
	seed := seedSnapshot(time.Now())

	if err := loadCollection(ctx, blobs, blobstore.KeyMembers, &s.snap.Members); err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
		s.snap.Members = seed.Members
		seeded = true
	}
	if err := loadCollection(ctx, blobs, blobstore.KeyDues, &s.snap.Dues); err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
		s.snap.Dues = seed.Dues
		seeded = true
	}
	if err := loadCollection(ctx, blobs, blobstore.KeyPayments, &s.snap.Payments); err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
	}
	if err := loadCollection(ctx, blobs, blobstore.KeyExpenses, &s.snap.Expenses); err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
	}

	if theme, err := blobs.Get(ctx, blobstore.KeyTheme); err == nil {
		if t := string(theme); t == "dark" || t == "light" {
			s.theme = t
		}
	}

	if seeded {
		if err := s.persist(ctx, blobstore.KeyMembers, blobstore.KeyDues); err != nil {
			return nil, fmt.Errorf("persist seed data: %w", err)
		}
		slog.InfoContext(ctx, "Seeded fund data",
			"members", len(s.snap.Members), "dues", len(s.snap.Dues))
	}

	slog.InfoContext(ctx, "Store hydrated",
		"members", len(s.snap.Members),
		"dues", len(s.snap.Dues),
		"payments", len(s.snap.Payments),
		"expenses", len(s.snap.Expenses))

	return s, nil
}

func loadCollection[T any](ctx context.Context, blobs blobstore.Store, key string, into *[]T) error {
	blob, err := blobs.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(blob, into); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Snapshot returns a consistent copy of all four collections.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Subscribe registers fn to run after every successful mutation. Used by the
// HTTP layer to invalidate its dashboard cache.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := append([]func(){}, s.subs...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// persist writes the named collections. Callers hold the write lock.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		var v any
		switch key {
		case blobstore.KeyMembers:
			v = s.snap.Members
		case blobstore.KeyDues:
			v = s.snap.Dues
		case blobstore.KeyPayments:
			v = s.snap.Payments
		case blobstore.KeyExpenses:
			v = s.snap.Expenses
		default:
			return fmt.Errorf("persist: unknown key %q", key)
		}
		blob, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := s.blobs.Put(ctx, key, blob); err != nil {
			s.metrics.IncPersistFailure()
			return err
		}
	}
	return nil
}

// mutate applies fn to the snapshot, persists the affected keys, and rolls
// the in-memory state back if the write fails.
func (s *Store) mutate(ctx context.Context, fn func(*core.Snapshot) error, keys ...string) error {
	s.mu.Lock()
	prev := s.snap.Clone()
	if err := fn(&s.snap); err != nil {
		s.snap = prev
		s.mu.Unlock()
		return err
	}
	if err := s.persist(ctx, keys...); err != nil {
		s.snap = prev
		s.mu.Unlock()
		return fmt.Errorf("persist mutation: %w", err)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddMember appends a new member with a fresh id.
func (s *Store) AddMember(ctx context.Context, m core.Member) (core.Member, error) {
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	m.ID = core.NewID()
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		snap.Members = append(snap.Members, m)
		return nil
	}, blobstore.KeyMembers)
	if err != nil {
		return core.Member{}, err
	}
	s.metrics.IncMutation("member", "add")
	return m, nil
}

// UpdateMember replaces the member with the same id.
func (s *Store) UpdateMember(ctx context.Context, m core.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		for i := range snap.Members {
			if snap.Members[i].ID == m.ID {
				snap.Members[i] = m
				return nil
			}
		}
		return ErrNotFound
	}, blobstore.KeyMembers)
	if err != nil {
		return err
	}
	s.metrics.IncMutation("member", "update")
	return nil
}

// DeleteMember removes the member and every payment they made.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		found := false
		members := snap.Members[:0]
		for _, m := range snap.Members {
			if m.ID == id {
				found = true
				continue
			}
			members = append(members, m)
		}
		if !found {
			return ErrNotFound
		}
		snap.Members = members

		payments := snap.Payments[:0]
		for _, p := range snap.Payments {
			if p.MemberID != id {
				payments = append(payments, p)
			}
		}
		snap.Payments = payments
		return nil
	}, blobstore.KeyMembers, blobstore.KeyPayments)
	if err != nil {
		return err
	}
	s.metrics.IncMutation("member", "delete")
	return nil
}

// AddDue appends a new due with a fresh id. Dues have no update operation.
func (s *Store) AddDue(ctx context.Context, d core.Due) (core.Due, error) {
	if err := d.Validate(); err != nil {
		return core.Due{}, err
	}
	d.ID = core.NewID()
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		snap.Dues = append(snap.Dues, d)
		return nil
	}, blobstore.KeyDues)
	if err != nil {
		return core.Due{}, err
	}
	s.metrics.IncMutation("due", "add")
	return d, nil
}

// DeleteDue removes the due and every payment made against it.
func (s *Store) DeleteDue(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		found := false
		dues := snap.Dues[:0]
		for _, d := range snap.Dues {
			if d.ID == id {
				found = true
				continue
			}
			dues = append(dues, d)
		}
		if !found {
			return ErrNotFound
		}
		snap.Dues = dues

		payments := snap.Payments[:0]
		for _, p := range snap.Payments {
			if p.DueID != id {
				payments = append(payments, p)
			}
		}
		snap.Payments = payments
		return nil
	}, blobstore.KeyDues, blobstore.KeyPayments)
	if err != nil {
		return err
	}
	s.metrics.IncMutation("due", "delete")
	return nil
}

// TogglePayment flips the paid state of (due, member). Marking paid copies
// the due's amount at this moment; marking unpaid removes the payment row.
// Returns the new paid state. A missing due is ErrNotFound.
func (s *Store) TogglePayment(ctx context.Context, dueID, memberID string) (bool, error) {
	var paid bool
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		if existing, ok := snap.PaymentFor(dueID, memberID); ok {
			payments := snap.Payments[:0]
			for _, p := range snap.Payments {
				if p.ID != existing.ID {
					payments = append(payments, p)
				}
			}
			snap.Payments = payments
			paid = false
			return nil
		}

		for _, d := range snap.Dues {
			if d.ID == dueID {
				snap.Payments = append(snap.Payments, core.Payment{
					ID:       core.NewID(),
					DueID:    dueID,
					MemberID: memberID,
					Date:     time.Now(),
					Amount:   d.Amount,
				})
				paid = true
				return nil
			}
		}
		return ErrNotFound
	}, blobstore.KeyPayments)
	if err != nil {
		return false, err
	}
	s.metrics.IncMutation("payment", "toggle")
	return paid, nil
}

// AddExpense appends a new expense with a fresh id.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = core.NewID()
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		snap.Expenses = append(snap.Expenses, e)
		return nil
	}, blobstore.KeyExpenses)
	if err != nil {
		return core.Expense{}, err
	}
	s.metrics.IncMutation("expense", "add")
	return e, nil
}

// DeleteExpense removes the expense by id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(snap *core.Snapshot) error {
		expenses := snap.Expenses[:0]
		found := false
		for _, e := range snap.Expenses {
			if e.ID == id {
				found = true
				continue
			}
			expenses = append(expenses, e)
		}
		if !found {
			return ErrNotFound
		}
		snap.Expenses = expenses
		return nil
	}, blobstore.KeyExpenses)
	if err != nil {
		return err
	}
	s.metrics.IncMutation("expense", "delete")
	return nil
}

// Reset wipes all persisted state and restores the seed data. The
// confirmation contract lives at the HTTP boundary; by the time this runs
// the user has already said yes.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	prev := s.snap.Clone()
	prevTheme := s.theme

	if err := s.blobs.Reset(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset blob store: %w", err)
	}

	s.snap = seedSnapshot(time.Now())
	s.theme = "light"
	if err := s.persist(ctx, blobstore.KeyMembers, blobstore.KeyDues); err != nil {
		s.snap = prev
		s.theme = prevTheme
		s.mu.Unlock()
		return fmt.Errorf("persist seed data: %w", err)
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "All fund data reset to seed state")
	s.notify()
	return nil
}

// Theme returns the persisted display preference, "light" or "dark".
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme persists the display preference.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("unknown theme %q", theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.blobs.Put(ctx, blobstore.KeyTheme, []byte(theme)); err != nil {
		s.metrics.IncPersistFailure()
		return err
	}
	s.theme = theme
	return nil
}
