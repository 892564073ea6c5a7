package amqp

import (
	"encoding/json"
	"time"

	"kaskelas/internal/core"
)

// ReminderMessage carries everything the dispatch worker needs to nudge one
// member: identity, phone, and the debt at the moment the reminder was
// queued. The worker does not go back to the store, so a member deleted
// after queueing still gets their last known reminder.
type ReminderMessage struct {
	MemberID  string     `json:"member_id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Debt      core.Money `json:"debt"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewReminderMessage builds a reminder for one indebted member.
func NewReminderMessage(m core.Member, debt core.Money) *ReminderMessage {
	return &ReminderMessage{
		MemberID:  m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Debt:      debt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
