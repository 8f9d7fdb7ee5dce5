package core

import (
	"fmt"
	"time"
)

type (
	// MonthlyReport is the balance sheet of a single calendar month,
	// including the records that produced the totals.
	MonthlyReport struct {
		Month             string    `json:"month"`
		TotalIncome       Money     `json:"totalIncome"`
		TotalExpenses     Money     `json:"totalExpenses"`
		Balance           Money     `json:"balance"`
		Incomes           []Income  `json:"incomes"`
		OneTimeExpenses   []Expense `json:"oneExpenses"`
		RecurringExpenses []Expense `json:"recurrentExpenses"`
	}

	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// RangeReport covers an arbitrary inclusive date interval. Incomes and
	// one-time expenses are matched at day precision; recurring expenses
	// contribute a flat amount per overlapping month, never prorated by day.
	RangeReport struct {
		Range                  DateRange `json:"range"`
		TotalIncome            Money     `json:"totalIncome"`
		TotalExpenses          Money     `json:"totalExpenses"`
		Balance                Money     `json:"balance"`
		Incomes                []Income  `json:"incomes"`
		OneTimeExpenses        []Expense `json:"oneExpenses"`
		RecurringExpenses      []Expense `json:"recurrentExpenses"`
		RecurrentCountedAmount Money     `json:"recurrentCountedAmount"`
	}

	BudgetAlert struct {
		Alert   bool   `json:"alert"`
		Message string `json:"message"`
	}
)

// MonthlySummary aggregates one user's records for a single month. It takes
// the full collections and filters by owner internally, so callers never
// pre-filter (and can never leak another user's rows by forgetting to).
func MonthlySummary(userID string, period Period, incomes []Income, expenses []Expense) MonthlyReport {
	report := MonthlyReport{
		Month:             period.Key(),
		Incomes:           []Income{},
		OneTimeExpenses:   []Expense{},
		RecurringExpenses: []Expense{},
	}

	for _, inc := range incomes {
		if inc.UserID != userID || PeriodOf(inc.Date) != period {
			continue
		}
		report.Incomes = append(report.Incomes, inc)
		report.TotalIncome = report.TotalIncome.Add(inc.Amount)
	}

	for _, exp := range expenses {
		if exp.UserID != userID {
			continue
		}
		switch {
		case exp.Type == OneTime && PeriodOf(exp.Date) == period:
			report.OneTimeExpenses = append(report.OneTimeExpenses, exp)
			report.TotalExpenses = report.TotalExpenses.Add(exp.Amount)
		case ActiveInMonth(exp, period):
			report.RecurringExpenses = append(report.RecurringExpenses, exp)
			report.TotalExpenses = report.TotalExpenses.Add(exp.Amount)
		}
	}

	report.Balance = report.TotalIncome.Sub(report.TotalExpenses)
	return report
}

// RangeSummary aggregates one user's records over an inclusive date range.
// Both bounds must be present and well-formed; otherwise ErrInvalidRange is
// returned and no partial report is produced. Every recurring expense the
// user owns appears in the report; ones that do not overlap the range simply
// contribute zero months.
func RangeSummary(userID, start, end string, incomes []Income, expenses []Expense) (RangeReport, error) {
	if start == "" || end == "" || !IsValidDateFormat(start) || !IsValidDateFormat(end) {
		return RangeReport{}, ErrInvalidRange
	}
	startDate, _ := ParseDate(start)
	endDate, _ := ParseDate(end)
	fromPeriod := PeriodOf(startDate)
	toPeriod := PeriodOf(endDate)

	report := RangeReport{
		Range:             DateRange{Start: start, End: end},
		Incomes:           []Income{},
		OneTimeExpenses:   []Expense{},
		RecurringExpenses: []Expense{},
	}

	inRange := func(d Date) bool {
		return !d.Time.Before(startDate.Time) && !d.Time.After(endDate.Time)
	}

	for _, inc := range incomes {
		if inc.UserID != userID || !inRange(inc.Date) {
			continue
		}
		report.Incomes = append(report.Incomes, inc)
		report.TotalIncome = report.TotalIncome.Add(inc.Amount)
	}

	for _, exp := range expenses {
		if exp.UserID != userID {
			continue
		}
		switch exp.Type {
		case OneTime:
			if inRange(exp.Date) {
				report.OneTimeExpenses = append(report.OneTimeExpenses, exp)
				report.TotalExpenses = report.TotalExpenses.Add(exp.Amount)
			}
		case Recurring:
			report.RecurringExpenses = append(report.RecurringExpenses, exp)
			months := MonthsInRange(exp, fromPeriod, toPeriod)
			report.RecurrentCountedAmount = report.RecurrentCountedAmount.Add(exp.Amount.Mul(months))
		}
	}

	report.TotalExpenses = report.TotalExpenses.Add(report.RecurrentCountedAmount)
	report.Balance = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// CheckBudget compares the month containing today against its income and
// reports an overage alert when expenses exceed income.
func CheckBudget(userID string, today time.Time, incomes []Income, expenses []Expense) BudgetAlert {
	report := MonthlySummary(userID, PeriodOfTime(today), incomes, expenses)
	if report.TotalExpenses.Cents > report.TotalIncome.Cents {
		over := report.TotalExpenses.Sub(report.TotalIncome)
		return BudgetAlert{
			Alert:   true,
			Message: fmt.Sprintf("You have exceeded your monthly budget by %s $", over),
		}
	}
	return BudgetAlert{Alert: false, Message: "Budget OK"}
}
