// Package sheets defines the outbound export port and hosts its adapters.
package sheets

import (
	"context"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
)

// ExpenseExporter mirrors expense records into an external sheet.
type ExpenseExporter interface {
	// AppendExpense adds one expense as a new row.
	AppendExpense(ctx context.Context, e core.Expense) error
	// MarkDeleted flags the row for a removed expense.
	MarkDeleted(ctx context.Context, expenseID string) error
}
