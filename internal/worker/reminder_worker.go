// Package worker turns queued payment reminders into WhatsApp deep links.
// The worker does not send messages itself; it resolves the link and logs
// it so an operator (or a future gateway) can deliver it.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kaskelas/internal/amqp"
	"kaskelas/internal/core"
	"kaskelas/internal/report"
)

// ReminderWorker consumes payment reminders from AMQP and resolves each one
// to a ready-to-open wa.me link.
type ReminderWorker struct {
	timeout time.Duration
}

func NewReminderWorker(timeout time.Duration) *ReminderWorker {
	return &ReminderWorker{timeout: timeout}
}

// HandleReminder processes a single reminder message.
func (w *ReminderWorker) HandleReminder(ctx context.Context, msg *amqp.ReminderMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if msg.MemberID == "" || msg.Name == "" {
		return fmt.Errorf("reminder missing member identity")
	}
	if msg.Phone == "" {
		// Nothing to dispatch to; dropping is better than requeueing forever.
		slog.WarnContext(ctx, "Reminder for member without phone number, dropping",
			"member_id", msg.MemberID,
			"name", msg.Name)
		return nil
	}

	member := core.Member{ID: msg.MemberID, Name: msg.Name, Phone: msg.Phone}
	link := report.WhatsAppLink(member, msg.Debt)

	slog.InfoContext(ctx, "Payment reminder ready",
		"member_id", msg.MemberID,
		"name", msg.Name,
		"debt", int64(msg.Debt),
		"queued_at", msg.Timestamp.Format(time.RFC3339),
		"link", link)

	return nil
}
