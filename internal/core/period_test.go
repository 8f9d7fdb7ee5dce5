package core

import "testing"

func TestDateFormatChecks(t *testing.T) {
	cases := []struct {
		in    string
		date  bool
		month bool
	}{
		{"2024-01-15", true, false},
		{"2024-01", false, true},
		{"2024-1-15", false, false},
		{"2024/01/15", false, false},
		{"24-01-15", false, false},
		{"2024-01-15T00:00:00Z", false, false},
		{"", false, false},
		// Shape checks only: a calendar-impossible day still passes.
		{"2024-02-31", true, false},
		{"2024-13", false, true},
	}
	for _, tc := range cases {
		if got := IsValidDateFormat(tc.in); got != tc.date {
			t.Errorf("IsValidDateFormat(%q) = %v, want %v", tc.in, got, tc.date)
		}
		if got := IsValidMonthFormat(tc.in); got != tc.month {
			t.Errorf("IsValidMonthFormat(%q) = %v, want %v", tc.in, got, tc.month)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 1 {
		t.Fatalf("unexpected components: %v", d)
	}
	if _, err := ParseDate("2024-3-1"); err != ErrInvalidDateFormat {
		t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestParseDateNormalizesOverflow(t *testing.T) {
	// Day 31 of February rolls forward, it does not fail.
	d, err := ParseDate("2024-02-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := d.String(); got != "2024-03-02" {
		t.Fatalf("normalized to %q, want 2024-03-02", got)
	}
}

func TestPeriodKeyZeroPadded(t *testing.T) {
	d := NewDate(987, 4, 1)
	if got := PeriodOf(d).Key(); got != "0987-04" {
		t.Fatalf("Key() = %q, want zero-padded 0987-04", got)
	}
}

func TestPeriodOrdering(t *testing.T) {
	a := Period{Year: 2023, Month: 12}
	b := Period{Year: 2024, Month: 1}
	if !a.Before(b) || !b.After(a) {
		t.Fatal("2023-12 must precede 2024-01")
	}
	// Numeric ordering matches the lexicographic order of the keys.
	if (a.Key() < b.Key()) != a.Before(b) {
		t.Fatal("key order and period order disagree")
	}
}

func TestMonthSpan(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2024-01", "2024-01", 1},
		{"2024-01", "2024-12", 12},
		{"2023-11", "2024-02", 4},
		{"2024-05", "2024-03", -1}, // inverted, caller must guard
	}
	for _, tc := range cases {
		a, err := ParsePeriod(tc.a)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", tc.a, err)
		}
		b, err := ParsePeriod(tc.b)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", tc.b, err)
		}
		if got := MonthSpan(a, b); got != tc.want {
			t.Errorf("MonthSpan(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, _ := ParseDate("2024-07-09")
	out, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-07-09"` {
		t.Fatalf("marshal = %s", out)
	}
	var zero Date
	out, _ = zero.MarshalJSON()
	if string(out) != "null" {
		t.Fatalf("zero date must marshal to null, got %s", out)
	}
	var back Date
	if err := back.UnmarshalJSON([]byte("null")); err != nil || !back.IsZero() {
		t.Fatalf("null must unmarshal to zero date (err=%v)", err)
	}
	if err := back.UnmarshalJSON([]byte(`"2024-7-9"`)); err == nil {
		t.Fatal("loose format must be rejected")
	}
}
