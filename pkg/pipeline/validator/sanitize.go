package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var limitClause = regexp.MustCompile(`(?i)\blimit\s+(\d+)`)

// EnsureRowLimit is the only sanitizing transform: it appends a LIMIT
// when the query has none, and clamps an existing LIMIT above the
// configured maximum. The table/column set is never touched, so the
// query's meaning is preserved beyond the row bound.
func EnsureRowLimit(query string, maxRows int) (string, bool) {
	m := limitClause.FindStringSubmatch(query)
	if m == nil {
		return strings.TrimSpace(query) + fmt.Sprintf(" LIMIT %d", maxRows), true
	}

	existing, err := strconv.Atoi(m[1])
	if err == nil && existing <= maxRows {
		return query, false
	}
	clamped := limitClause.ReplaceAllString(query, fmt.Sprintf("LIMIT %d", maxRows))
	return clamped, true
}
