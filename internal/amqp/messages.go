package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried on the transaction events queue.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight change notification. It carries only the
// identifiers; consumers fetch the full transaction from the store, so a stale
// message never overwrites fresher data downstream.
type TransactionEvent struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event for the given transaction and action.
func NewTransactionEvent(id, ownerID, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		OwnerID:   ownerID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
