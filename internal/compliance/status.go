package compliance

import (
	"time"

	"compliancehq/pkg/types"
)

// Status is the traffic-light classification of a subcontractor's
// insurance currency.
type Status string

const (
	StatusSafe    Status = "SAFE"
	StatusWarning Status = "WARNING"
	StatusExpired Status = "EXPIRED"
	StatusMissing Status = "MISSING"
)

// WindowOptions are the warning windows selectable on the dashboard.
var WindowOptions = []int{30, 60, 90}

// DaysUntil returns the whole-day difference between now and expiry,
// negative when expiry is in the past. Both sides are truncated to
// calendar dates so time-of-day never shifts the classification.
func DaysUntil(now, expiry time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiryDate := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiryDate.Sub(nowDate) / (24 * time.Hour))
}

// Classify maps an expiry date and completeness flag to a traffic-light
// status. Rows without a validated date are always MISSING, regardless of
// any stale date still on the row.
func Classify(expiry *time.Time, dataStatus types.DataStatus, now time.Time, windowDays int) Status {
	if dataStatus != types.DataStatusVerified || expiry == nil {
		return StatusMissing
	}

	days := DaysUntil(now, *expiry)
	switch {
	case days < 0:
		return StatusExpired
	case days < windowDays:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// ClassifyDateString classifies a raw date string as it appears in a
// spreadsheet cell. Unparseable input is MISSING, never an error.
func ClassifyDateString(raw string, now time.Time, windowDays int) Status {
	expiry, ok := ParseDate(raw)
	if !ok {
		return StatusMissing
	}
	return Classify(&expiry, types.DataStatusVerified, now, windowDays)
}

// Label returns the user-facing name for a status.
func (s Status) Label() string {
	switch s {
	case StatusSafe:
		return "Safe"
	case StatusWarning:
		return "Expiring Soon"
	case StatusExpired:
		return "Expired"
	case StatusMissing:
		return "Missing Data"
	}
	return string(s)
}
