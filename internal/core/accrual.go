package core

// ActiveInMonth reports whether a recurring expense accrues in the given
// month. Non-recurring expenses never do. An absent end date means the
// expense stays active in every month from its start month onward.
func ActiveInMonth(e Expense, p Period) bool {
	if e.Type != Recurring {
		return false
	}
	if p.Before(PeriodOf(e.StartDate)) {
		return false
	}
	if !e.EndDate.IsZero() && p.After(PeriodOf(e.EndDate)) {
		return false
	}
	return true
}

// MonthsInRange counts the whole months a recurring expense contributes
// inside the queried period range, both bounds inclusive. The expense's
// total cost over the range is this count times its amount; no per-month
// records are materialized. Day components were already discarded when the
// bounds were reduced to periods.
func MonthsInRange(e Expense, from, to Period) int {
	if e.Type != Recurring {
		return 0
	}
	if start := PeriodOf(e.StartDate); start.After(from) {
		from = start
	}
	if !e.EndDate.IsZero() {
		if end := PeriodOf(e.EndDate); end.Before(to) {
			to = end
		}
	}
	// No overlap, or an inverted expense window stored before write-time
	// validation existed: contribute nothing rather than a negative count.
	if to.Before(from) {
		return 0
	}
	return MonthSpan(from, to)
}
