package compliance

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateFormats covers the layouts seen across customer spreadsheets.
// Order matters: unambiguous layouts come first.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses a spreadsheet cell into a calendar date. It accepts
// Excel numeric date serials as well as the textual layouts above.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	// Excel numeric date serial (common in XLS/XLSX exports). The range
	// keeps plain years and phone fragments from reading as serials:
	// 20000 is mid-1954, 80000 is early 2119.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return truncate(parsed), true
			}
		}
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return truncate(parsed), true
		}
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return truncate(parsed), true
	}

	return time.Time{}, false
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
