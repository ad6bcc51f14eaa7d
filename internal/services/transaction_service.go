package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// Event publishing is best effort: the write is committed locally first, and
// a failed publish never fails the request.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create validates the transaction, assigns its identity, and persists it.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, created.ID, created.OwnerID, amqp.ActionCreated)

	return created, nil
}

// Update replaces the mutable fields of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.storage.Update(ctx, t)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, updated.ID, updated.OwnerID, amqp.ActionUpdated)

	return updated, nil
}

// Delete removes a transaction owned by ownerID.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.storage.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.publishEvent(ctx, id, ownerID, amqp.ActionDeleted)

	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, id, ownerID, action string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", "action", action)
		return
	}

	evt := amqp.NewTransactionEvent(id, ownerID, action)
	if err := s.amqpClient.PublishTransactionEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", id,
			"action", action,
			"error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
