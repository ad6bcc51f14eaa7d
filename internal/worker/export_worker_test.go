package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type fakeStore struct {
	tx  *core.Transaction
	err error
}

func (f *fakeStore) Get(ctx context.Context, ownerID, id string) (*core.Transaction, error) {
	return f.tx, f.err
}

type fakeLedger struct {
	appended []core.Transaction
	err      error
}

func (f *fakeLedger) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, tx)
	return "Ledger!A2:H2", nil
}

func sampleTx() *core.Transaction {
	return &core.Transaction{
		ID:          "tx-1",
		OwnerID:     "owner-1",
		Description: "Groceries",
		Amount:      core.Money{Cents: 1250},
		Date:        core.NewDate(2025, 9, 3),
		Type:        core.TypeVariableExpense,
	}
}

func newWorker(store *fakeStore, ledger *fakeLedger) *ExportWorker {
	return NewExportWorker(store, ledger, log.New(log.DefaultConfig()))
}

func TestHandleEventCreatedExports(t *testing.T) {
	ledger := &fakeLedger{}
	w := newWorker(&fakeStore{tx: sampleTx()}, ledger)

	evt := amqp.NewTransactionEvent("tx-1", "owner-1", amqp.ActionCreated)
	if err := w.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("handle created: %v", err)
	}
	if len(ledger.appended) != 1 || ledger.appended[0].ID != "tx-1" {
		t.Fatalf("expected one appended row, got %+v", ledger.appended)
	}
}

func TestHandleEventMissingRowIsSkipped(t *testing.T) {
	ledger := &fakeLedger{}
	w := newWorker(&fakeStore{tx: nil}, ledger)

	evt := amqp.NewTransactionEvent("tx-gone", "owner-1", amqp.ActionCreated)
	if err := w.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("missing row should not be an error: %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatal("nothing should be appended for a missing row")
	}
}

func TestHandleEventStoreErrorPropagates(t *testing.T) {
	w := newWorker(&fakeStore{err: errors.New("db down")}, &fakeLedger{})

	evt := amqp.NewTransactionEvent("tx-1", "owner-1", amqp.ActionCreated)
	if err := w.HandleEvent(context.Background(), evt); err == nil {
		t.Fatal("store errors should propagate so the delivery is requeued")
	}
}

func TestHandleEventLedgerErrorPropagates(t *testing.T) {
	w := newWorker(&fakeStore{tx: sampleTx()}, &fakeLedger{err: errors.New("quota")})

	evt := amqp.NewTransactionEvent("tx-1", "owner-1", amqp.ActionCreated)
	if err := w.HandleEvent(context.Background(), evt); err == nil {
		t.Fatal("ledger errors should propagate")
	}
}

func TestHandleEventNonCreatedActionsAreNoOps(t *testing.T) {
	ledger := &fakeLedger{}
	w := newWorker(&fakeStore{tx: sampleTx()}, ledger)

	for _, action := range []string{amqp.ActionUpdated, amqp.ActionDeleted, "archived"} {
		evt := amqp.NewTransactionEvent("tx-1", "owner-1", action)
		if err := w.HandleEvent(context.Background(), evt); err != nil {
			t.Fatalf("action %q: %v", action, err)
		}
	}
	if len(ledger.appended) != 0 {
		t.Fatal("non-created actions must not touch the ledger")
	}
}
