package importer

import (
	"context"
	"fmt"
	"strings"

	"compliancehq/internal/compliance"
	"compliancehq/internal/utils"
	"compliancehq/pkg/types"
)

// SubcontractorWriter is the slice of the store the import loop needs.
type SubcontractorWriter interface {
	NamesByTenant(ctx context.Context, tenantID string) ([]string, error)
	CreateSubcontractor(ctx context.Context, sub *types.Subcontractor) error
}

// Result carries the ad hoc counters surfaced to the user after a run.
type Result struct {
	Imported          int
	SkippedDuplicates int
	SkippedBlank      int
	Incomplete        int
}

// Run walks the data rows of a spreadsheet and writes one subcontractor
// per accepted row. Rows with a blank name are skipped, as is any row
// whose name already exists for the tenant (case-insensitive, including
// earlier rows of the same file). A row whose date fails to parse is
// still written, flagged incomplete. A store write error aborts the
// remaining rows; there is no transaction, rollback, or retry.
func Run(ctx context.Context, store SubcontractorWriter, tenantID string, rows [][]string, mapping ColumnMapping) (Result, error) {
	var result Result

	if len(rows) < 2 {
		return result, fmt.Errorf("spreadsheet has no data rows")
	}
	if mapping.Name < 0 {
		return result, fmt.Errorf("name column is required")
	}

	existing, err := store.NamesByTenant(ctx, tenantID)
	if err != nil {
		return result, fmt.Errorf("load existing subcontractors: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, name := range existing {
		seen[canonicalName(name)] = true
	}

	for _, row := range rows[1:] {
		name := CellValue(row, mapping.Name)
		if name == "" {
			result.SkippedBlank++
			continue
		}

		key := canonicalName(name)
		if seen[key] {
			result.SkippedDuplicates++
			continue
		}

		sub := &types.Subcontractor{
			TenantID:   tenantID,
			Name:       name,
			Trade:      utils.NullableString(CellValue(row, mapping.Trade)),
			Phone:      utils.NullableString(CellValue(row, mapping.Phone)),
			DataStatus: types.DataStatusIncomplete,
		}

		if expiry, ok := compliance.ParseDate(CellValue(row, mapping.Date)); ok {
			sub.InsuranceExpiry = &expiry
			sub.DataStatus = types.DataStatusVerified
		} else {
			result.Incomplete++
		}

		if err := store.CreateSubcontractor(ctx, sub); err != nil {
			return result, fmt.Errorf("import %q: %w", name, err)
		}

		seen[key] = true
		result.Imported++
	}

	return result, nil
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
