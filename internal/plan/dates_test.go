package plan

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, year int, month time.Month, day int) time.Time {
	t.Helper()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func TestNormalize(t *testing.T) {
	noon := time.Date(2025, time.March, 3, 12, 34, 56, 789, time.Local)
	got := Normalize(noon)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("not midnight: %v", got)
	}
	if got.Day() != 3 || got.Month() != time.March {
		t.Fatalf("wrong day: %v", got)
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	d := mustDate(t, 2025, time.March, 3)
	key := DateKey(d)
	if key != "2025-03-03" {
		t.Fatalf("DateKey = %q", key)
	}
	parsed, err := ParseDateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Equal(d) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed, d)
	}
}

func TestAddDaysAcrossMonth(t *testing.T) {
	d := mustDate(t, 2025, time.January, 31)
	next := AddDays(d, 1)
	if DateKey(next) != "2025-02-01" {
		t.Fatalf("AddDays = %q", DateKey(next))
	}
	prev := AddDays(d, -31)
	if DateKey(prev) != "2024-12-31" {
		t.Fatalf("AddDays backward = %q", DateKey(prev))
	}
}

func TestGenerateDates(t *testing.T) {
	start := mustDate(t, 2025, time.March, 1)
	entries := GenerateDates(start, 7)
	if len(entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(entries))
	}
	if entries[0].Key != "2025-03-01" || entries[6].Key != "2025-03-07" {
		t.Fatalf("wrong window: %q .. %q", entries[0].Key, entries[6].Key)
	}
	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.Key] {
			t.Fatalf("duplicate key %q", e.Key)
		}
		seen[e.Key] = true
		if i > 0 && !e.Date.After(entries[i-1].Date) {
			t.Fatal("window not contiguous ascending")
		}
	}
}

func TestFormatPathDate(t *testing.T) {
	d := mustDate(t, 2025, time.March, 3)
	if got := FormatPathDate("2025-03-03", d); got != "March3_2025" {
		t.Fatalf("FormatPathDate = %q", got)
	}
	// Key parsed when no date value supplied.
	if got := FormatPathDate("2025-03-03", time.Time{}); got != "March3_2025" {
		t.Fatalf("FormatPathDate from key = %q", got)
	}
	// Two-digit day.
	if got := FormatPathDate("2025-12-25", time.Time{}); got != "December25_2025" {
		t.Fatalf("FormatPathDate = %q", got)
	}
	// Unparseable key falls back to a sanitized segment.
	if got := FormatPathDate("not a key!", time.Time{}); got != "not_a_key_" {
		t.Fatalf("FormatPathDate fallback = %q", got)
	}
}

func TestParsePathDate(t *testing.T) {
	d, ok := ParsePathDate("March3_2025")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if DateKey(d) != "2025-03-03" {
		t.Fatalf("parsed %q", DateKey(d))
	}
	if _, ok := ParsePathDate("2025-03-03"); ok {
		t.Fatal("date keys are not path segments")
	}
	if _, ok := ParsePathDate("Marzo3_2025"); ok {
		t.Fatal("non-English month should fail")
	}
}

func TestPathDateRoundTrip(t *testing.T) {
	d := mustDate(t, 2025, time.July, 9)
	segment := FormatPathDate(DateKey(d), d)
	parsed, ok := ParsePathDate(segment)
	if !ok {
		t.Fatalf("round trip parse failed for %q", segment)
	}
	if DateKey(parsed) != DateKey(d) {
		t.Fatalf("round trip mismatch: %q", DateKey(parsed))
	}
}

func TestMonthKeyAndLabel(t *testing.T) {
	d := mustDate(t, 2025, time.March, 3)
	if MonthKey(d) != "2025-03" {
		t.Fatalf("MonthKey = %q", MonthKey(d))
	}
	if MonthLabel(d) != "March 2025" {
		t.Fatalf("MonthLabel = %q", MonthLabel(d))
	}
}

func TestFormatLabels(t *testing.T) {
	d := mustDate(t, 2025, time.March, 3)
	if FormatLongDate(d) != "March 3, 2025" {
		t.Fatalf("FormatLongDate = %q", FormatLongDate(d))
	}
	if FormatWeekday(d) != "Monday" {
		t.Fatalf("FormatWeekday = %q", FormatWeekday(d))
	}
	if FormatBadge(d) != "Mar 3" {
		t.Fatalf("FormatBadge = %q", FormatBadge(d))
	}
}
