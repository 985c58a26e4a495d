package plan

import (
	"strings"
	"testing"
)

func TestDeterministicItemIDStable(t *testing.T) {
	a := DeterministicItemID(DayTypeWork, "08:00 – 08:30", "Italian")
	b := DeterministicItemID(DayTypeWork, "08:00 – 08:30", "Italian")
	if a == "" {
		t.Fatal("expected non-empty id")
	}
	if a != b {
		t.Fatalf("id not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "work-") {
		t.Fatalf("id should carry the day type prefix: %q", a)
	}
}

func TestDeterministicItemIDSlug(t *testing.T) {
	id := DeterministicItemID(DayTypeWork, "08:00 – 08:30", "Italian")
	if id != "work-08-00-08-30-italian" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestDeterministicItemIDEmptyParts(t *testing.T) {
	if id := DeterministicItemID(DayTypeWork, "", "Italian"); id != "" {
		t.Fatalf("expected empty id for missing time, got %q", id)
	}
	if id := DeterministicItemID(DayTypeWork, "08:00", ""); id != "" {
		t.Fatalf("expected empty id for missing activity, got %q", id)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := DeterministicItemID(DayTypeOff, "09:00 – 11:30", "A very long activity description that keeps going")
	parts := strings.SplitN(long, "-", 2)
	if len(parts[0]) == 0 {
		t.Fatal("missing prefix")
	}
	// Each slug is capped, so the whole id stays bounded.
	if len(long) > len("off")+2+2*slugMaxLen {
		t.Fatalf("id too long: %q (%d)", long, len(long))
	}
}

func TestNewScheduleItemIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewScheduleItemID(DayTypeWork)
		if seen[id] {
			t.Fatalf("duplicate random id %q", id)
		}
		seen[id] = true
	}
}

func TestNormalizeItemKeepsExplicitID(t *testing.T) {
	item := NormalizeItem(DayTypeWork, ScheduleItem{ID: " custom-1 ", Time: " 08:00 – 08:30 ", Activity: " Italian "})
	if item.ID != "custom-1" {
		t.Fatalf("explicit id should win, got %q", item.ID)
	}
	if item.Time != "08:00 – 08:30" || item.Activity != "Italian" {
		t.Fatalf("fields not trimmed: %+v", item)
	}
}

func TestNormalizeItemDerivesID(t *testing.T) {
	item := NormalizeItem(DayTypeOff, ScheduleItem{Time: "09:00 – 10:00", Activity: "Reading"})
	if item.ID != DeterministicItemID(DayTypeOff, "09:00 – 10:00", "Reading") {
		t.Fatalf("expected deterministic id, got %q", item.ID)
	}
}

func TestNormalizeItemRandomFallback(t *testing.T) {
	item := NormalizeItem(DayTypeOff, ScheduleItem{})
	if item.ID == "" {
		t.Fatal("expected generated id for empty item")
	}
}

func TestSanitizeListDropsInvalid(t *testing.T) {
	list := SanitizeList(DayTypeWork, []ScheduleItem{
		{Time: "08:00 – 08:30", Activity: "Italian"},
		{Time: "", Activity: "No time"},
		{Time: "09:00 – 10:00", Activity: ""},
		{Time: "   ", Activity: "   "},
	})
	if len(list) != 1 {
		t.Fatalf("expected 1 surviving item, got %d", len(list))
	}
	if list[0].Activity != "Italian" {
		t.Fatalf("wrong survivor: %+v", list[0])
	}
}

func TestSanitizeListRegeneratesCollidingIDs(t *testing.T) {
	list := SanitizeList(DayTypeWork, []ScheduleItem{
		{ID: "dup", Time: "08:00 – 08:30", Activity: "First"},
		{ID: "dup", Time: "09:00 – 09:30", Activity: "Second"},
	})
	if len(list) != 2 {
		t.Fatalf("expected both items kept, got %d", len(list))
	}
	if list[0].ID == list[1].ID {
		t.Fatalf("colliding ids not regenerated: %q", list[0].ID)
	}
	if list[0].ID != "dup" {
		t.Fatalf("first occurrence should keep its id, got %q", list[0].ID)
	}
}

func TestScheduleID(t *testing.T) {
	item := ScheduleItem{ID: "work-0800-italian", Time: "08:00 – 08:30", Activity: "Italian"}
	if got := ScheduleID(DayTypeWork, item); got != "work::work-0800-italian" {
		t.Fatalf("ScheduleID = %q", got)
	}
	// Fallback to the time range when the id is missing.
	if got := ScheduleID(DayTypeWork, ScheduleItem{Time: "08:00 – 08:30"}); got != "work::08:00 – 08:30" {
		t.Fatalf("ScheduleID fallback = %q", got)
	}
}

func TestScheduleTimerID(t *testing.T) {
	got := ScheduleTimerID("2025-03-03", "work::abc")
	if got != "schedule-2025-03-03-work::abc" {
		t.Fatalf("ScheduleTimerID = %q", got)
	}
}

func TestDefaultSchedulesSanitized(t *testing.T) {
	schedules := DefaultSchedules()
	for _, dayType := range []DayType{DayTypeWork, DayTypeOff} {
		list := schedules[dayType]
		if len(list) == 0 {
			t.Fatalf("empty default for %s", dayType)
		}
		seen := make(map[string]bool)
		for _, item := range list {
			if item.Time == "" || item.Activity == "" {
				t.Fatalf("default item not sanitized: %+v", item)
			}
			if seen[item.ID] {
				t.Fatalf("duplicate default id %q", item.ID)
			}
			seen[item.ID] = true
			if _, ok := ExtractDurationMinutes(item.Time); !ok {
				t.Fatalf("default time range unparseable: %q", item.Time)
			}
		}
	}
}

func TestValidDayType(t *testing.T) {
	if !ValidDayType("work") || !ValidDayType("off") {
		t.Fatal("work/off should be valid")
	}
	if ValidDayType("weekend") || ValidDayType("") {
		t.Fatal("unknown types should be invalid")
	}
}
