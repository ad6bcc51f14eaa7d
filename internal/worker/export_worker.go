// Package worker consumes transaction events and exports created
// transactions to the Google Sheets ledger.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// TransactionGetter loads a transaction by owner and id. A nil transaction
// with a nil error means the row no longer exists.
type TransactionGetter interface {
	Get(ctx context.Context, ownerID, id string) (*core.Transaction, error)
}

// LedgerAppender appends one transaction row to the export ledger.
type LedgerAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (string, error)
}

// EventSource delivers transaction events until the context is cancelled.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEvent) error) error
}

type ExportWorker struct {
	store  TransactionGetter
	ledger LedgerAppender
	logger *log.Logger
}

func NewExportWorker(store TransactionGetter, ledger LedgerAppender, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:  store,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes events until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, source EventSource) error {
	return source.ConsumeTransactionEvents(ctx, func(evt *amqp.TransactionEvent) error {
		return w.HandleEvent(ctx, evt)
	})
}

// HandleEvent exports created transactions. Updates and deletions are logged
// only; the ledger is append-only and rows are never rewritten.
func (w *ExportWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	switch evt.Action {
	case amqp.ActionCreated:
		return w.exportCreated(ctx, evt)
	case amqp.ActionUpdated, amqp.ActionDeleted:
		w.logger.InfoContext(ctx, "Skipping non-export action",
			log.FieldTxID, evt.ID,
			log.FieldOperation, evt.Action)
		return nil
	default:
		// Unknown actions are dropped, not requeued: a newer producer may
		// emit actions this worker does not know yet.
		w.logger.WarnContext(ctx, "Dropping event with unknown action",
			log.FieldTxID, evt.ID,
			log.FieldOperation, evt.Action)
		return nil
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, evt *amqp.TransactionEvent) error {
	tx, err := w.store.Get(ctx, evt.OwnerID, evt.ID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", evt.ID, err)
	}
	if tx == nil {
		// Deleted between publish and consume. Nothing to export.
		w.logger.InfoContext(ctx, "Transaction vanished before export",
			log.FieldTxID, evt.ID,
			log.FieldOwnerID, evt.OwnerID)
		return nil
	}

	ref, err := w.ledger.AppendTransaction(ctx, *tx)
	if err != nil {
		return fmt.Errorf("append transaction %s to ledger: %w", evt.ID, err)
	}

	w.logger.InfoContext(ctx, "Exported transaction to ledger",
		log.FieldTxID, tx.ID,
		log.FieldAmountCents, tx.Amount.Cents,
		log.FieldSheetsRef, ref)

	return nil
}
