package importer

import "testing"

func TestGuessColumnFirstMatch(t *testing.T) {
	headers := []string{"ID", "Company Name", "Worker", "Trade"}

	if got := GuessColumn(headers, NameHints); got != 1 {
		t.Fatalf("expected first matching column 1, got %d", got)
	}
}

func TestGuessColumnCaseInsensitive(t *testing.T) {
	headers := []string{"SUBCONTRACTOR", "INSURANCE EXPIRY DATE"}

	if got := GuessColumn(headers, NameHints); got != 0 {
		t.Fatalf("expected column 0, got %d", got)
	}
	if got := GuessColumn(headers, DateHints); got != 1 {
		t.Fatalf("expected column 1, got %d", got)
	}
}

func TestGuessColumnNoMatch(t *testing.T) {
	headers := []string{"A", "B", "C"}

	if got := GuessColumn(headers, NameHints); got != -1 {
		t.Fatalf("expected -1 for no match, got %d", got)
	}
	if got := GuessColumn(nil, NameHints); got != -1 {
		t.Fatalf("expected -1 for empty headers, got %d", got)
	}
}

func TestGuessMapping(t *testing.T) {
	headers := []string{"Worker Name", "Trade", "Mobile", "Policy Expiration"}

	mapping := GuessMapping(headers)
	if mapping.Name != 0 {
		t.Fatalf("name: expected 0, got %d", mapping.Name)
	}
	if mapping.Trade != 1 {
		t.Fatalf("trade: expected 1, got %d", mapping.Trade)
	}
	if mapping.Phone != 2 {
		t.Fatalf("phone: expected 2, got %d", mapping.Phone)
	}
	if mapping.Date != 3 {
		t.Fatalf("date: expected 3, got %d", mapping.Date)
	}
}

func TestCellValue(t *testing.T) {
	row := []string{" a ", "b"}

	if got := CellValue(row, 0); got != "a" {
		t.Fatalf("expected trimmed cell, got %q", got)
	}
	if got := CellValue(row, 5); got != "" {
		t.Fatalf("expected empty for short row, got %q", got)
	}
	if got := CellValue(row, -1); got != "" {
		t.Fatalf("expected empty for negative index, got %q", got)
	}
}
