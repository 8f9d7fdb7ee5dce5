package core

import "testing"

func recurring(start, end string) Expense {
	e := Expense{Type: Recurring, Amount: Money{Cents: 10000}}
	e.StartDate, _ = ParseDate(start)
	if end != "" {
		e.EndDate, _ = ParseDate(end)
	}
	return e
}

func mustPeriod(t *testing.T, s string) Period {
	t.Helper()
	p, err := ParsePeriod(s)
	if err != nil {
		t.Fatalf("ParsePeriod(%q): %v", s, err)
	}
	return p
}

func TestActiveInMonth(t *testing.T) {
	bounded := recurring("2024-03-01", "2024-05-31")
	openEnded := recurring("2024-01-01", "")

	cases := []struct {
		name  string
		e     Expense
		month string
		want  bool
	}{
		{"before start", bounded, "2024-02", false},
		{"first month", bounded, "2024-03", true},
		{"middle month", bounded, "2024-04", true},
		{"last month inclusive", bounded, "2024-05", true},
		{"after end", bounded, "2024-06", false},
		{"open-ended start", openEnded, "2024-01", true},
		{"open-ended far future", openEnded, "2099-12", true},
		{"open-ended before start", openEnded, "2023-12", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActiveInMonth(tc.e, mustPeriod(t, tc.month)); got != tc.want {
				t.Fatalf("ActiveInMonth(%s) = %v, want %v", tc.month, got, tc.want)
			}
		})
	}
}

func TestActiveInMonthIgnoresOneTime(t *testing.T) {
	e := Expense{Type: OneTime, Amount: Money{Cents: 500}}
	e.Date, _ = ParseDate("2024-03-15")
	if ActiveInMonth(e, mustPeriod(t, "2024-03")) {
		t.Fatal("one-time expense must never be active as recurring")
	}
}

func TestMonthsInRange(t *testing.T) {
	cases := []struct {
		name     string
		e        Expense
		from, to string
		want     int
	}{
		{"fully inside year range", recurring("2024-03-01", "2024-05-31"), "2024-01", "2024-12", 3},
		{"open-ended clamps to range end", recurring("2024-01-01", ""), "2024-01", "2024-03", 3},
		{"range before expense", recurring("2024-06-01", "2024-09-30"), "2024-01", "2024-05", 0},
		{"range after expense", recurring("2023-01-01", "2023-06-30"), "2024-01", "2024-12", 0},
		{"partial overlap at start", recurring("2023-11-15", "2024-02-10"), "2024-01", "2024-12", 2},
		{"single month range active", recurring("2024-04-01", ""), "2024-04", "2024-04", 1},
		{"single month range inactive", recurring("2024-05-01", ""), "2024-04", "2024-04", 0},
		{"inverted expense window", recurring("2024-06-01", "2024-02-01"), "2024-01", "2024-12", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthsInRange(tc.e, mustPeriod(t, tc.from), mustPeriod(t, tc.to))
			if got != tc.want {
				t.Fatalf("MonthsInRange = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMonthsInRangeDayComponentsIgnored(t *testing.T) {
	// The expense starts on the 20th; a range starting on the 1st of the
	// same month still counts that whole month.
	e := recurring("2024-03-20", "2024-03-25")
	got := MonthsInRange(e, mustPeriod(t, "2024-03"), mustPeriod(t, "2024-03"))
	if got != 1 {
		t.Fatalf("MonthsInRange = %d, want 1", got)
	}
}

func TestMonthsInRangeZeroForOneTime(t *testing.T) {
	e := Expense{Type: OneTime}
	e.Date, _ = ParseDate("2024-03-15")
	if got := MonthsInRange(e, mustPeriod(t, "2024-01"), mustPeriod(t, "2024-12")); got != 0 {
		t.Fatalf("MonthsInRange = %d, want 0", got)
	}
}
