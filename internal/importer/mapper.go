package importer

import "strings"

// Hint keyword sets per target field. GuessColumn only pre-selects a
// default in the mapping form; the user can always override.
var (
	NameHints  = []string{"name", "worker", "company", "sub"}
	DateHints  = []string{"expiry", "expiration", "insurance", "date", "valid"}
	TradeHints = []string{"trade", "role", "skill", "craft"}
	PhoneHints = []string{"phone", "mobile", "contact", "tel"}
)

// GuessColumn returns the index of the first header whose lowercased name
// contains any hint keyword, or -1 when nothing matches. Heuristic only,
// no correctness guarantee.
func GuessColumn(headers []string, hints []string) int {
	for i, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))
		if normalized == "" {
			continue
		}
		for _, hint := range hints {
			if strings.Contains(normalized, hint) {
				return i
			}
		}
	}
	return -1
}

// ColumnMapping holds the resolved column indexes for an import run.
// Trade and Phone are optional; -1 means the column is absent.
type ColumnMapping struct {
	Name  int `form:"name_column"`
	Date  int `form:"date_column"`
	Trade int `form:"trade_column"`
	Phone int `form:"phone_column"`
}

// GuessMapping pre-fills a mapping from the header row.
func GuessMapping(headers []string) ColumnMapping {
	return ColumnMapping{
		Name:  GuessColumn(headers, NameHints),
		Date:  GuessColumn(headers, DateHints),
		Trade: GuessColumn(headers, TradeHints),
		Phone: GuessColumn(headers, PhoneHints),
	}
}
