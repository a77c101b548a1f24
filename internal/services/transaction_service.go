package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// EventPublisher notifies interested consumers that a user's transaction
// set changed. *amqp.Client satisfies this; tests pass nil or a fake.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService orchestrates transaction writes: validation, the store
// round-trip, and the change notification for the budget alert worker.
type TransactionService struct {
	store     store.TransactionStore
	publisher EventPublisher
}

func NewTransactionService(st store.TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
	}
}

// Create validates and stores a transaction, then publishes a created event.
// Validation failures never reach the store.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.Create(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// The write already succeeded; a lost event only delays the next
	// budget evaluation until the worker's periodic sweep.
	s.publish(ctx, amqp.NewTransactionEvent(created.ID, created.UserID, amqp.ActionCreated))

	return created, nil
}

// Update applies a partial patch. Patched date, type and amount values are
// validated before the store round-trip.
func (s *TransactionService) Update(ctx context.Context, userID, id string, patch store.TransactionPatch) (core.Transaction, error) {
	if patch.Date != nil {
		if err := core.ValidateDate(*patch.Date); err != nil {
			return core.Transaction{}, err
		}
	}
	if patch.Type != nil {
		if err := patch.Type.Validate(); err != nil {
			return core.Transaction{}, err
		}
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	if patch.Category != nil && *patch.Category == "" {
		return core.Transaction{}, core.ErrEmptyCategory
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionEvent(updated.ID, userID, amqp.ActionUpdated))

	return updated, nil
}

// Delete removes a transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.NewTransactionEvent(id, userID, amqp.ActionDeleted))

	return nil
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.TransactionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping notification",
			"transaction_id", ev.TransactionID,
			"action", ev.Action)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", ev.TransactionID,
			"user_id", ev.UserID,
			"action", ev.Action,
			"error", err)
	}
}
