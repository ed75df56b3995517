package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"compliancehq/internal/store"
	"compliancehq/internal/utils"
	"compliancehq/pkg/types"

	"github.com/k0kubun/pp"
)

type subcontractorSeed struct {
	Name       string
	Trade      string
	Phone      string
	ExpiryDays int // relative to today; 0 means no expiry on file
	HasExpiry  bool
}

// Demo roster covering all four traffic-light states.
var demoSubcontractors = []subcontractorSeed{
	{Name: "Acme Roofing Ltd", Trade: "Roofing", Phone: "07700 900101", ExpiryDays: 180, HasExpiry: true},
	{Name: "Bright Spark Electrical", Trade: "Electrical", Phone: "07700 900102", ExpiryDays: 95, HasExpiry: true},
	{Name: "Delta Groundworks", Trade: "Groundworks", Phone: "07700 900103", ExpiryDays: 21, HasExpiry: true},
	{Name: "Summit Scaffolding", Trade: "Scaffolding", Phone: "07700 900104", ExpiryDays: 6, HasExpiry: true},
	{Name: "Harbour Plumbing & Heating", Trade: "Plumbing", Phone: "07700 900105", ExpiryDays: -12, HasExpiry: true},
	{Name: "Keystone Brickwork", Trade: "Bricklaying", Phone: "07700 900106", ExpiryDays: -60, HasExpiry: true},
	{Name: "Northside Joinery", Trade: "Joinery", Phone: "07700 900107"},
	{Name: "Vertex Steel Erectors", Trade: "Steelwork", Phone: "07700 900108"},
}

// SeedSubcontractors inserts the demo roster for a tenant, skipping names
// that already exist.
func SeedSubcontractors(ctx context.Context, repo *store.SubcontractorRepository, tenantID string) error {
	existing, err := repo.NamesByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to fetch existing subcontractors: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, name := range existing {
		seen[strings.ToLower(name)] = true
	}

	created := 0
	for _, row := range demoSubcontractors {
		if seen[strings.ToLower(row.Name)] {
			continue
		}

		sub := &types.Subcontractor{
			TenantID:   tenantID,
			Name:       row.Name,
			Trade:      utils.StringPtr(row.Trade),
			Phone:      utils.StringPtr(row.Phone),
			DataStatus: types.DataStatusIncomplete,
		}

		if row.HasExpiry {
			expiry := time.Now().AddDate(0, 0, row.ExpiryDays)
			expiry = time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
			sub.InsuranceExpiry = &expiry
			sub.DataStatus = types.DataStatusVerified
		}

		if err := repo.CreateSubcontractor(ctx, sub); err != nil {
			return fmt.Errorf("failed to seed subcontractor %s: %w", row.Name, err)
		}

		pp.Println(sub.Name, string(sub.DataStatus))
		created++
	}

	fmt.Printf("seeded %d subcontractors (%d already present)\n", created, len(demoSubcontractors)-created)

	return nil
}
