// Package worker runs the export side of the pipeline: it consumes expense
// events from the queue and sweeps the database for rows that still need
// exporting.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/amqp"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/sheets"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/storage"
)

// ExportStore is the repository slice the worker needs.
type ExportStore interface {
	GetExpenseAnyUser(ctx context.Context, id string) (core.Expense, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.Expense, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

type ExportWorker struct {
	store     ExportStore
	exporter  sheets.ExpenseExporter
	batchSize int
}

func NewExportWorker(store ExportStore, exporter sheets.ExpenseExporter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &ExportWorker{store: store, exporter: exporter, batchSize: batchSize}
}

// HandleEvent processes one queue message. Returning an error requeues the
// message, so transient exporter failures get retried by the broker.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg amqp.ExpenseEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated:
		return w.exportOne(ctx, msg.ID)
	case amqp.ActionDeleted:
		if err := w.exporter.MarkDeleted(ctx, msg.ID); err != nil {
			return fmt.Errorf("mark deleted %s: %w", msg.ID, err)
		}
		return nil
	default:
		// Unknown actions are dropped, requeueing them would loop forever.
		slog.WarnContext(ctx, "Ignoring unknown expense event action",
			"id", msg.ID, "action", msg.Action)
		return nil
	}
}

func (w *ExportWorker) exportOne(ctx context.Context, id string) error {
	exp, err := w.store.GetExpenseAnyUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the event was consumed. Nothing to export.
		slog.InfoContext(ctx, "Expense vanished before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense %s: %w", id, err)
	}

	if err := w.exporter.AppendExpense(ctx, exp); err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("export expense %s: %w", id, err)
	}
	return w.store.MarkExported(ctx, id)
}

// ProcessPending exports one batch of rows whose export_status is still
// pending or error. It is the safety net for events the queue lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping pending exports", "count", len(pending))
	for _, exp := range pending {
		if err := w.exporter.AppendExpense(ctx, exp); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense", "id", exp.ID, "error", err)
			if markErr := w.store.MarkExportError(ctx, exp.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to record export error", "id", exp.ID, "error", markErr)
			}
			continue
		}
		if err := w.store.MarkExported(ctx, exp.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark expense exported", "id", exp.ID, "error", err)
		}
	}
	return nil
}

// RunSweep calls ProcessPending on a fixed interval until the context ends.
func (w *ExportWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}
