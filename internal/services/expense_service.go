// Package services orchestrates writes that touch more than one
// collaborator: the database row, the receipt file and the event queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/amqp"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
)

// ExpenseStore is the slice of the repository the service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, exp core.Expense) error
	UpdateExpense(ctx context.Context, exp core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
}

// EventPublisher enqueues expense events for the export worker.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id, action string) error
}

// ReceiptRemover deletes stored receipt files.
type ReceiptRemover interface {
	Remove(filename string)
}

type ExpenseService struct {
	store    ExpenseStore
	receipts ReceiptRemover
	events   EventPublisher
}

// NewExpenseService wires the collaborators; events may be nil when no
// queue is configured.
func NewExpenseService(store ExpenseStore, receipts ReceiptRemover, events EventPublisher) *ExpenseService {
	return &ExpenseService{store: store, receipts: receipts, events: events}
}

// Create persists the expense, then enqueues a created event. The event is
// best-effort: the expense is saved either way.
func (s *ExpenseService) Create(ctx context.Context, exp core.Expense) error {
	if err := s.store.CreateExpense(ctx, exp); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, exp.ID, amqp.ActionCreated)
	return nil
}

// Update persists the new state and removes a replaced or detached receipt
// file after the row is safely written.
func (s *ExpenseService) Update(ctx context.Context, exp core.Expense, removedReceipt *core.Receipt) error {
	if err := s.store.UpdateExpense(ctx, exp); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if removedReceipt != nil && s.receipts != nil {
		s.receipts.Remove(removedReceipt.Filename)
	}
	return nil
}

// Delete removes the row, its receipt file, and enqueues a deleted event.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	exp, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	if exp.Receipt != nil && s.receipts != nil {
		s.receipts.Remove(exp.Receipt.Filename)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, id, action); err != nil {
		// The expense is already persisted; the periodic sweep will pick
		// up anything the queue missed.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", action, "error", err)
	}
}
