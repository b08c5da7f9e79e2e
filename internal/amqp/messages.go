package amqp

import (
	"encoding/json"
	"time"
)

// ReminderScheduledMessage is published whenever an occasion is added with a
// reminder schedule. The worker only needs enough context to announce the
// reminder, so the payload carries a snapshot rather than a lookup key.
type ReminderScheduledMessage struct {
	OccasionID    string    `json:"occasionId"`
	RecipientName string    `json:"recipientName"`
	OccasionType  string    `json:"occasionType"`
	Date          string    `json:"date"`
	ReminderDates []string  `json:"reminderDates"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewReminderScheduledMessage creates a reminder message for a newly added occasion
func NewReminderScheduledMessage(occasionID, recipientName, occasionType, date string, reminderDates []string) *ReminderScheduledMessage {
	return &ReminderScheduledMessage{
		OccasionID:    occasionID,
		RecipientName: recipientName,
		OccasionType:  occasionType,
		Date:          date,
		ReminderDates: reminderDates,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderScheduledMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderScheduledMessageFromJSON creates a message from JSON bytes
func ReminderScheduledMessageFromJSON(data []byte) (*ReminderScheduledMessage, error) {
	var msg ReminderScheduledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
