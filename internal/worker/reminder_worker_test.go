package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kaskelas/internal/amqp"
)

func TestHandleReminder(t *testing.T) {
	w := NewReminderWorker(5 * time.Second)
	ctx := context.Background()

	t.Run("valid reminder", func(t *testing.T) {
		err := w.HandleReminder(ctx, &amqp.ReminderMessage{
			MemberID:  "m1",
			Name:      "Andi",
			Phone:     "081234567890",
			Debt:      20000,
			Timestamp: time.Now(),
		})
		assert.NoError(t, err)
	})

	t.Run("missing identity is an error", func(t *testing.T) {
		err := w.HandleReminder(ctx, &amqp.ReminderMessage{Phone: "0811", Debt: 1000})
		assert.Error(t, err)
	})

	t.Run("missing phone is dropped without error", func(t *testing.T) {
		err := w.HandleReminder(ctx, &amqp.ReminderMessage{
			MemberID: "m2",
			Name:     "Budi",
			Debt:     5000,
		})
		assert.NoError(t, err)
	})
}
