package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaskelas/internal/blobstore"
	"kaskelas/internal/core"
)

func newTestStore(t *testing.T) (*Store, blobstore.Store) {
	t.Helper()
	blobs := blobstore.NewMemoryStore()
	s, err := New(context.Background(), blobs, nil)
	require.NoError(t, err)
	return s, blobs
}

func TestNewSeedsWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	snap := s.Snapshot()

	assert.Len(t, snap.Members, 3)
	assert.Len(t, snap.Dues, 1)
	assert.Empty(t, snap.Payments)
	assert.Empty(t, snap.Expenses)
	assert.Equal(t, "Kas Januari", snap.Dues[0].Title)
	assert.Equal(t, core.Money(20000), snap.Dues[0].Amount)
}

func TestHydrationReadsBackPersistedState(t *testing.T) {
	ctx := context.Background()
	s, blobs := newTestStore(t)

	m, err := s.AddMember(ctx, core.Member{Name: "Dewi Lestari", NIM: "2023004", Phone: "0813"})
	require.NoError(t, err)

	// A second store over the same blobs sees the member.
	s2, err := New(ctx, blobs, nil)
	require.NoError(t, err)
	snap := s2.Snapshot()
	require.Len(t, snap.Members, 4)
	assert.Equal(t, m.ID, snap.Members[3].ID)
	assert.Equal(t, "Dewi Lestari", snap.Members[3].Name)
}

func TestUpdateMember(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	snap := s.Snapshot()

	changed := snap.Members[0]
	changed.Phone = "089999999999"
	require.NoError(t, s.UpdateMember(ctx, changed))
	assert.Equal(t, "089999999999", s.Snapshot().Members[0].Phone)

	missing := core.Member{ID: "nope", Name: "Ghost"}
	assert.ErrorIs(t, s.UpdateMember(ctx, missing), ErrNotFound)
}

func TestDeleteMemberCascadesPayments(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	snap := s.Snapshot()
	due := snap.Dues[0]
	victim := snap.Members[0]

	_, err := s.TogglePayment(ctx, due.ID, victim.ID)
	require.NoError(t, err)
	_, err = s.TogglePayment(ctx, due.ID, snap.Members[1].ID)
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Payments, 2)

	require.NoError(t, s.DeleteMember(ctx, victim.ID))

	after := s.Snapshot()
	assert.Len(t, after.Members, 2)
	require.Len(t, after.Payments, 1)
	for _, p := range after.Payments {
		assert.NotEqual(t, victim.ID, p.MemberID, "payment referencing deleted member survived")
	}

	assert.ErrorIs(t, s.DeleteMember(ctx, victim.ID), ErrNotFound)
}

func TestDeleteDueCascadesPayments(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	snap := s.Snapshot()
	due := snap.Dues[0]

	for _, m := range snap.Members {
		_, err := s.TogglePayment(ctx, due.ID, m.ID)
		require.NoError(t, err)
	}
	require.Len(t, s.Snapshot().Payments, 3)

	require.NoError(t, s.DeleteDue(ctx, due.ID))

	after := s.Snapshot()
	assert.Empty(t, after.Dues)
	assert.Empty(t, after.Payments)

	// With the due gone its unpaid amounts vanish from every debt figure.
	for _, m := range after.Members {
		assert.Zero(t, core.MemberDebtAmount(after, m.ID))
	}
}

func TestTogglePaymentIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	snap := s.Snapshot()
	due, member := snap.Dues[0], snap.Members[0]

	paid, err := s.TogglePayment(ctx, due.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, paid)

	mid := s.Snapshot()
	p, ok := mid.PaymentFor(due.ID, member.ID)
	require.True(t, ok)
	assert.Equal(t, due.Amount, p.Amount, "payment must copy the due amount at toggle time")
	assert.WithinDuration(t, time.Now(), p.Date, 5*time.Second)

	paid, err = s.TogglePayment(ctx, due.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Empty(t, s.Snapshot().Payments)
}

func TestTogglePaymentUnknownDue(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.TogglePayment(context.Background(), "no-such-due", s.Snapshot().Members[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTogglePaymentKeepsPairUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	snap := s.Snapshot()
	due, member := snap.Dues[0], snap.Members[0]

	for i := 0; i < 5; i++ {
		_, err := s.TogglePayment(ctx, due.ID, member.ID)
		require.NoError(t, err)
	}
	// Odd number of toggles: exactly one payment for the pair.
	count := 0
	for _, p := range s.Snapshot().Payments {
		if p.DueID == due.ID && p.MemberID == member.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e, err := s.AddExpense(ctx, core.Expense{
		Title:    "Beli spidol",
		Amount:   15000,
		Date:     time.Now(),
		Category: "ATK",
		Note:     "untuk presentasi",
	})
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Expenses, 1)

	require.NoError(t, s.DeleteExpense(ctx, e.ID))
	assert.Empty(t, s.Snapshot().Expenses)
	assert.ErrorIs(t, s.DeleteExpense(ctx, e.ID), ErrNotFound)
}

func TestValidationRejectsBadRecords(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddMember(ctx, core.Member{Name: "   "})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = s.AddDue(ctx, core.Due{Title: "Kas", Amount: -1, Deadline: time.Now(), Category: "Wajib"})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = s.AddExpense(ctx, core.Expense{Title: "x", Amount: 1, Category: ""})
	assert.Error(t, err)
}

func TestResetRestoresSeedState(t *testing.T) {
	ctx := context.Background()
	s, blobs := newTestStore(t)

	_, err := s.AddExpense(ctx, core.Expense{Title: "Banner", Amount: 50000, Date: time.Now(), Category: "Event"})
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(ctx, "dark"))

	require.NoError(t, s.Reset(ctx))

	snap := s.Snapshot()
	assert.Len(t, snap.Members, 3)
	assert.Len(t, snap.Dues, 1)
	assert.Empty(t, snap.Expenses)
	assert.Equal(t, "light", s.Theme())

	// A fresh hydration agrees.
	s2, err := New(ctx, blobs, nil)
	require.NoError(t, err)
	assert.Empty(t, s2.Snapshot().Expenses)
}

func TestSubscribeNotifiedOnMutation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	calls := 0
	s.Subscribe(func() { calls++ })

	_, err := s.AddMember(ctx, core.Member{Name: "Eka", NIM: "2023005", Phone: "0814"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// A failed mutation must not notify.
	_, err = s.AddMember(ctx, core.Member{Name: ""})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// failingBlobs wraps a working store but fails every Put after the fuse blows.
type failingBlobs struct {
	blobstore.Store
	fail bool
}

func (f *failingBlobs) Put(ctx context.Context, key string, blob []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, blob)
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	blobs := &failingBlobs{Store: blobstore.NewMemoryStore()}
	s, err := New(ctx, blobs, nil)
	require.NoError(t, err)

	blobs.fail = true
	_, err = s.AddMember(ctx, core.Member{Name: "Fajar", NIM: "2023006", Phone: "0815"})
	require.Error(t, err)

	// The in-memory change was rolled back; the user was told.
	assert.Len(t, s.Snapshot().Members, 3)
}
