package generator

import (
	"errors"
	"regexp"
	"strings"
)

// Extracted is the parsed form of a raw generation response.
type Extracted struct {
	Query       string
	Explanation string
	Confidence  float64
}

var sqlFence = regexp.MustCompile("(?s)```sql\\s*(.*?)```")

// Extract applies the delimiter contract to a raw response: exactly one
// ```sql fenced block. Anything else is an extraction failure.
func Extract(raw string) (*Extracted, error) {
	matches := sqlFence.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, errors.New("response contains no ```sql block")
	}
	if len(matches) > 1 {
		return nil, errors.New("response contains more than one ```sql block")
	}

	query := strings.TrimSpace(matches[0][1])
	if query == "" {
		return nil, errors.New("response contains an empty ```sql block")
	}

	explanation := strings.TrimSpace(sqlFence.ReplaceAllString(raw, ""))

	return &Extracted{
		Query:       query,
		Explanation: explanation,
		Confidence:  selfConfidence(query, explanation),
	}, nil
}

// selfConfidence derives a confidence estimate from the response
// structure alone; nothing has been validated or executed yet.
func selfConfidence(query string, explanation string) float64 {
	confidence := 0.5
	upper := strings.ToUpper(query)
	if strings.HasPrefix(upper, "SELECT") {
		confidence += 0.2
	}
	if explanation != "" {
		confidence += 0.15
	}
	if !strings.Contains(query, ";") {
		confidence += 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

var (
	fromPattern = regexp.MustCompile(`(?i)\bfrom\s+([a-z_][a-z0-9_]*)`)
	joinPattern = regexp.MustCompile(`(?i)\bjoin\s+([a-z_][a-z0-9_]*)`)
)

// ExtractTables returns the distinct tables the query reads from.
func ExtractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, pattern := range []*regexp.Regexp{fromPattern, joinPattern} {
		for _, m := range pattern.FindAllStringSubmatch(sql, -1) {
			name := strings.ToLower(m[1])
			if !seen[name] {
				seen[name] = true
				tables = append(tables, name)
			}
		}
	}
	return tables
}

// EstimateComplexity scores a query's structural cost in [0,1]:
// joins, subqueries and aggregation each push the score up.
func EstimateComplexity(sql string) float64 {
	upper := strings.ToUpper(sql)
	score := 0.1
	score += 0.2 * float64(strings.Count(upper, " JOIN "))
	score += 0.25 * float64(strings.Count(upper, "(SELECT"))
	if strings.Contains(upper, "GROUP BY") {
		score += 0.15
	}
	if strings.Contains(upper, "ORDER BY") {
		score += 0.05
	}
	if score > 1 {
		score = 1
	}
	return score
}
