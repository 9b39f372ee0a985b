package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the expense_events queue.
const (
	EventExpenseCreated = "expense.created"
	EventExpenseUpdated = "expense.updated"
	EventExpenseDeleted = "expense.deleted"
)

// ExpenseEventMessage notifies the worker that a month's spend changed.
// It carries identifiers only, the worker re-reads totals from the store.
type ExpenseEventMessage struct {
	Type      string    `json:"type"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event for the given expense and month.
func NewExpenseEventMessage(eventType string, expenseID, userID int64, year int, month time.Month) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Type:      eventType,
		ExpenseID: expenseID,
		UserID:    userID,
		Year:      year,
		Month:     int(month),
		Timestamp: time.Now(),
	}
}

// Validate checks that the message identifies a real user and month.
func (m *ExpenseEventMessage) Validate() error {
	switch m.Type {
	case EventExpenseCreated, EventExpenseUpdated, EventExpenseDeleted:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	if m.UserID <= 0 {
		return fmt.Errorf("invalid user id %d", m.UserID)
	}
	if m.Month < 1 || m.Month > 12 {
		return fmt.Errorf("invalid month %d", m.Month)
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON parses a message from JSON bytes.
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
