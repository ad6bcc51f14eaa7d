package amqp

import (
	"testing"
	"time"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	evt := NewTransactionEvent("tx-1", "owner-1", ActionCreated)
	if evt.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}

	body, err := evt.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "tx-1" || got.OwnerID != "owner-1" || got.Action != ActionCreated {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(evt.Timestamp.Truncate(time.Nanosecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, evt.Timestamp)
	}
}

func TestTransactionEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
