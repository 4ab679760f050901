package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// Record kinds carried in change messages.
const (
	KindTransaction = "transaction"
	KindBudget      = "budget"
)

// Change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangedMessage announces that a record touching one period changed.
// Consumers re-read the store; the message carries no record data.
type RecordChangedMessage struct {
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(kind, op, id string, period core.Period) *RecordChangedMessage {
	return &RecordChangedMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Year:      period.Year,
		Month:     period.Month,
		Timestamp: time.Now(),
	}
}

// Period returns the month the change affects.
func (m *RecordChangedMessage) Period() core.Period {
	return core.Period{Month: m.Month, Year: m.Year}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a message from JSON bytes
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
