package compliance

import (
	"testing"
	"time"

	"compliancehq/pkg/types"
)

var testNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyExpired(t *testing.T) {
	expiry := date(2024, 1, 1)
	got := Classify(&expiry, types.DataStatusVerified, testNow, 30)
	if got != StatusExpired {
		t.Fatalf("expected EXPIRED for past date, got %s", got)
	}

	yesterday := testNow.AddDate(0, 0, -1)
	if got := Classify(&yesterday, types.DataStatusVerified, testNow, 30); got != StatusExpired {
		t.Fatalf("expected EXPIRED for yesterday, got %s", got)
	}
}

func TestClassifySafe(t *testing.T) {
	expiry := testNow.AddDate(0, 0, 45)
	got := Classify(&expiry, types.DataStatusVerified, testNow, 30)
	if got != StatusSafe {
		t.Fatalf("expected SAFE 45 days out with window 30, got %s", got)
	}

	// Exactly at the window boundary is still safe.
	boundary := testNow.AddDate(0, 0, 30)
	if got := Classify(&boundary, types.DataStatusVerified, testNow, 30); got != StatusSafe {
		t.Fatalf("expected SAFE at window boundary, got %s", got)
	}
}

func TestClassifyWarning(t *testing.T) {
	expiry := testNow.AddDate(0, 0, 10)
	got := Classify(&expiry, types.DataStatusVerified, testNow, 30)
	if got != StatusWarning {
		t.Fatalf("expected WARNING 10 days out with window 30, got %s", got)
	}

	// Expiring today is a warning, not expired.
	today := date(2025, 6, 1)
	if got := Classify(&today, types.DataStatusVerified, testNow, 30); got != StatusWarning {
		t.Fatalf("expected WARNING for same-day expiry, got %s", got)
	}

	// One day inside the window.
	edge := testNow.AddDate(0, 0, 29)
	if got := Classify(&edge, types.DataStatusVerified, testNow, 30); got != StatusWarning {
		t.Fatalf("expected WARNING one day inside the window, got %s", got)
	}
}

func TestClassifyMissing(t *testing.T) {
	if got := Classify(nil, types.DataStatusVerified, testNow, 30); got != StatusMissing {
		t.Fatalf("expected MISSING for nil expiry, got %s", got)
	}

	expiry := testNow.AddDate(0, 0, 45)
	if got := Classify(&expiry, types.DataStatusIncomplete, testNow, 30); got != StatusMissing {
		t.Fatalf("expected MISSING for incomplete row regardless of date, got %s", got)
	}
}

func TestClassifyRespectsWindow(t *testing.T) {
	expiry := testNow.AddDate(0, 0, 45)

	if got := Classify(&expiry, types.DataStatusVerified, testNow, 60); got != StatusWarning {
		t.Fatalf("expected WARNING 45 days out with window 60, got %s", got)
	}
	if got := Classify(&expiry, types.DataStatusVerified, testNow, 90); got != StatusWarning {
		t.Fatalf("expected WARNING 45 days out with window 90, got %s", got)
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	// Expiry later today at 23:59 still counts as day zero.
	expiry := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	if got := Classify(&expiry, types.DataStatusVerified, testNow, 30); got != StatusWarning {
		t.Fatalf("expected WARNING for same-day late expiry, got %s", got)
	}
}

func TestClassifyDateString(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"2024-01-01", StatusExpired},
		{"2025-07-16", StatusSafe},    // 45 days out
		{"2025-06-11", StatusWarning}, // 10 days out
		{"", StatusMissing},
		{"not a date", StatusMissing},
		{"13/45/2025", StatusMissing},
	}

	for _, tc := range cases {
		if got := ClassifyDateString(tc.raw, testNow, 30); got != tc.want {
			t.Fatalf("ClassifyDateString(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	if days := DaysUntil(testNow, date(2025, 6, 1)); days != 0 {
		t.Fatalf("expected 0 days for today, got %d", days)
	}
	if days := DaysUntil(testNow, date(2025, 5, 31)); days != -1 {
		t.Fatalf("expected -1 days for yesterday, got %d", days)
	}
	if days := DaysUntil(testNow, date(2025, 7, 1)); days != 30 {
		t.Fatalf("expected 30 days, got %d", days)
	}
}
