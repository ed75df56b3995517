package importer

import (
	"context"
	"errors"
	"testing"

	"compliancehq/pkg/types"
)

type fakeStore struct {
	existing []string
	created  []*types.Subcontractor
	failOn   string
}

func (f *fakeStore) NamesByTenant(_ context.Context, _ string) ([]string, error) {
	return f.existing, nil
}

func (f *fakeStore) CreateSubcontractor(_ context.Context, sub *types.Subcontractor) error {
	if f.failOn != "" && sub.Name == f.failOn {
		return errors.New("write failed")
	}
	f.created = append(f.created, sub)
	return nil
}

var testMapping = ColumnMapping{Name: 0, Date: 1, Trade: 2, Phone: -1}

func TestRunImportsRows(t *testing.T) {
	store := &fakeStore{}
	rows := [][]string{
		{"Name", "Expiry", "Trade"},
		{"Acme Roofing", "2026-01-15", "Roofing"},
		{"Delta Electric", "3/1/2026", "Electrical"},
	}

	result, err := Run(context.Background(), store, "tenant-1", rows, testMapping)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(store.created))
	}

	first := store.created[0]
	if first.TenantID != "tenant-1" {
		t.Fatalf("unexpected tenant: %s", first.TenantID)
	}
	if first.DataStatus != types.DataStatusVerified {
		t.Fatalf("expected verified row, got %s", first.DataStatus)
	}
	if first.InsuranceExpiry == nil {
		t.Fatalf("expected parsed expiry")
	}
	if first.Trade == nil || *first.Trade != "Roofing" {
		t.Fatalf("unexpected trade: %v", first.Trade)
	}
	if first.Phone != nil {
		t.Fatalf("expected nil phone for unmapped column")
	}
}

func TestRunSkipsDuplicates(t *testing.T) {
	store := &fakeStore{existing: []string{"Acme Roofing"}}
	rows := [][]string{
		{"Name", "Expiry"},
		{"acme roofing", "2026-01-15"}, // exists for tenant, case-insensitive
		{"Delta Electric", "2026-02-01"},
		{"Delta Electric", "2026-03-01"}, // duplicate within the file
	}

	result, err := Run(context.Background(), store, "tenant-1", rows, testMapping)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
	if result.SkippedDuplicates != 2 {
		t.Fatalf("expected 2 duplicates skipped, got %d", result.SkippedDuplicates)
	}
	if len(store.created) != 1 || store.created[0].Name != "Delta Electric" {
		t.Fatalf("unexpected writes: %+v", store.created)
	}
}

func TestRunSkipsBlankNames(t *testing.T) {
	store := &fakeStore{}
	rows := [][]string{
		{"Name", "Expiry"},
		{"", "2026-01-15"},
		{"   ", "2026-01-15"},
		{"Delta Electric", "2026-02-01"},
	}

	result, err := Run(context.Background(), store, "tenant-1", rows, testMapping)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.SkippedBlank != 2 {
		t.Fatalf("expected 2 blank rows skipped, got %d", result.SkippedBlank)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
}

func TestRunFlagsUnparseableDates(t *testing.T) {
	store := &fakeStore{}
	rows := [][]string{
		{"Name", "Expiry"},
		{"Acme Roofing", "pending renewal"},
		{"Delta Electric", ""},
	}

	result, err := Run(context.Background(), store, "tenant-1", rows, testMapping)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	if result.Incomplete != 2 {
		t.Fatalf("expected 2 incomplete, got %d", result.Incomplete)
	}

	for _, sub := range store.created {
		if sub.DataStatus != types.DataStatusIncomplete {
			t.Fatalf("expected incomplete status for %s", sub.Name)
		}
		if sub.InsuranceExpiry != nil {
			t.Fatalf("expected nil expiry for %s", sub.Name)
		}
	}
}

func TestRunAbortsOnWriteError(t *testing.T) {
	store := &fakeStore{failOn: "Bravo Plumbing"}
	rows := [][]string{
		{"Name", "Expiry"},
		{"Acme Roofing", "2026-01-15"},
		{"Bravo Plumbing", "2026-01-15"},
		{"Delta Electric", "2026-01-15"},
	}

	result, err := Run(context.Background(), store, "tenant-1", rows, testMapping)
	if err == nil {
		t.Fatalf("expected write error to surface")
	}

	// The failing row aborts the remainder; the first write stands.
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported before abort, got %d", result.Imported)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected no writes after the failure, got %d", len(store.created))
	}
}

func TestRunRequiresNameColumn(t *testing.T) {
	store := &fakeStore{}
	rows := [][]string{
		{"Name", "Expiry"},
		{"Acme Roofing", "2026-01-15"},
	}

	if _, err := Run(context.Background(), store, "tenant-1", rows, ColumnMapping{Name: -1, Date: 1}); err == nil {
		t.Fatalf("expected error for missing name column")
	}
}

func TestRunRejectsHeaderOnlyFile(t *testing.T) {
	store := &fakeStore{}
	rows := [][]string{{"Name", "Expiry"}}

	if _, err := Run(context.Background(), store, "tenant-1", rows, testMapping); err == nil {
		t.Fatalf("expected error for header-only file")
	}
}
