package types

import (
	"errors"
	"time"
)

// DataStatus records whether a subcontractor row carries a validated
// insurance expiry date. A row is verified only when a date was parsed
// successfully; everything else is incomplete and needs manual or
// AI-assisted follow-up.
type DataStatus string

const (
	DataStatusVerified   DataStatus = "verified"
	DataStatusIncomplete DataStatus = "incomplete"
)

var (
	ErrSubcontractorNotFound = errors.New("subcontractor not found")
	ErrDocumentNotFound      = errors.New("document not found")
)

type Subcontractor struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`

	Name            string     `db:"name"`
	Trade           *string    `db:"trade"`
	Phone           *string    `db:"phone"`
	InsuranceExpiry *time.Time `db:"insurance_expiry"`
	DataStatus      DataStatus `db:"data_status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
