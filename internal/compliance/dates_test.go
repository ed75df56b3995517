package compliance

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	cases := []string{
		"2025-03-14",
		"2025/03/14",
		"3/14/2025",
		"03/14/2025",
		"3-14-2025",
		"Mar 14, 2025",
		"March 14, 2025",
		"14 Mar 2025",
		"2025-03-14 08:15:00",
		"2025-03-14T08:15:00",
		"  2025-03-14  ",
	}

	for _, raw := range cases {
		got, ok := ParseDate(raw)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", raw)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseDateExcelSerial(t *testing.T) {
	// 45731 is 2025-03-15 in the 1900 date system.
	got, ok := ParseDate("45731")
	if !ok {
		t.Fatalf("expected excel serial to parse")
	}
	if got.Year() != 2025 || got.Month() != time.March {
		t.Fatalf("unexpected serial conversion: %s", got)
	}
}

func TestParseDateRejects(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"pending",
		"call the office",
		"2025",   // bare year, not a serial
		"123456", // outside the serial range
		"13/45/2025",
	}

	for _, raw := range cases {
		if _, ok := ParseDate(raw); ok {
			t.Fatalf("ParseDate(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestParseDateTruncatesTime(t *testing.T) {
	got, ok := ParseDate("2025-03-14T23:45:00")
	if !ok {
		t.Fatalf("parse failed")
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected midnight truncation, got %s", got)
	}
}
