package validator

import (
	"regexp"
	"strings"
)

// checkSyntax verifies the candidate parses as a single read-only
// statement form: starts with SELECT, balanced quoting and parentheses,
// no trailing garbage.
func checkSyntax(query string) []Violation {
	var violations []Violation

	if query == "" {
		return []Violation{{
			RuleID:   "syntax-empty",
			Severity: SeverityBlocking,
			Detail:   "empty query",
		}}
	}

	upper := strings.ToUpper(query)
	if !strings.HasPrefix(upper, "SELECT") {
		violations = append(violations, Violation{
			RuleID:   "syntax-not-select",
			Severity: SeverityBlocking,
			Detail:   "statement does not start with SELECT",
		})
	}

	if strings.Count(query, "'")%2 != 0 {
		violations = append(violations, Violation{
			RuleID:   "syntax-unbalanced-quotes",
			Severity: SeverityBlocking,
			Detail:   "unbalanced single quotes",
		})
	}
	if strings.Count(query, "(") != strings.Count(query, ")") {
		violations = append(violations, Violation{
			RuleID:   "syntax-unbalanced-parens",
			Severity: SeverityBlocking,
			Detail:   "unbalanced parentheses",
		})
	}

	return violations
}

// Verbs that modify data or schema, or escape the read-only surface.
// Any word-boundary occurrence is rejected unconditionally, including
// inside subqueries the syntax check might miss.
var forbiddenVerbs = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE",
	"GRANT", "REVOKE", "COPY", "EXECUTE", "CALL", "MERGE", "VACUUM",
	"REINDEX", "CLUSTER", "LISTEN", "NOTIFY", "PREPARE", "DEALLOCATE",
	"DO", "SET", "RESET", "INTO",
}

var verbPatterns = buildVerbPatterns()

func buildVerbPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(forbiddenVerbs))
	for _, verb := range forbiddenVerbs {
		patterns[verb] = regexp.MustCompile(`(?i)\b` + verb + `\b`)
	}
	return patterns
}

// checkCommandWhitelist enforces retrieval-only: no mutating or DDL
// verbs, no statement separators, no command chaining. The verb scan
// runs over the literal-stripped text so a filter like
// ILIKE '%update%' is not mistaken for the verb.
func checkCommandWhitelist(query string) []Violation {
	var violations []Violation

	if strings.Contains(query, ";") {
		violations = append(violations, Violation{
			RuleID:   "whitelist-separator",
			Severity: SeverityBlocking,
			Detail:   "statement separator present",
		})
	}

	stripped := stripStringLiterals(query)
	for _, verb := range forbiddenVerbs {
		if verbPatterns[verb].MatchString(stripped) {
			violations = append(violations, Violation{
				RuleID:   "whitelist-verb",
				Severity: SeverityBlocking,
				Detail:   "forbidden verb: " + strings.ToLower(verb),
			})
		}
	}

	return violations
}

// Known unsafe constructs: tautologies, comment-based truncation,
// stacked statements and out-of-band function calls. Matches are
// rejected regardless of any other score.
var injectionPatterns = []struct {
	ruleID  string
	pattern *regexp.Regexp
	detail  string
}{
	{"injection-tautology", regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`), "always-true tautology"},
	{"injection-tautology", regexp.MustCompile(`(?i)\bor\s+'[^']*'\s*=\s*'[^']*'`), "quoted tautology"},
	{"injection-tautology", regexp.MustCompile(`(?i)\bor\s+true\b`), "boolean tautology"},
	{"injection-comment", regexp.MustCompile(`--`), "line comment truncation"},
	{"injection-comment", regexp.MustCompile(`/\*`), "block comment"},
	{"injection-stacked", regexp.MustCompile(`;\s*\S`), "stacked statement"},
	{"injection-oob", regexp.MustCompile(`(?i)\b(pg_sleep|pg_read_file|pg_ls_dir|pg_terminate_backend|dblink|lo_import|lo_export|set_config|current_setting)\s*\(`), "out-of-band function call"},
	{"injection-union", regexp.MustCompile(`(?i)\bunion\b(\s+all)?\s+select\b`), "union-based extraction"},
	{"injection-hex", regexp.MustCompile(`(?i)0x[0-9a-f]{8,}`), "long hex literal"},
}

func checkInjectionPatterns(query string) []Violation {
	var violations []Violation
	for _, p := range injectionPatterns {
		if p.pattern.MatchString(query) {
			violations = append(violations, Violation{
				RuleID:   p.ruleID,
				Severity: SeverityBlocking,
				Detail:   p.detail,
			})
		}
	}
	return violations
}

// columnRef is a column mention, optionally qualified.
type columnRef struct {
	Table  string
	Column string
}

// Words that look like identifiers but are SQL keywords or functions the
// scope check must skip.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "as": true, "on": true, "join": true, "inner": true,
	"left": true, "right": true, "outer": true, "full": true, "cross": true,
	"group": true, "by": true, "order": true, "having": true, "limit": true,
	"offset": true, "asc": true, "desc": true, "distinct": true, "in": true,
	"is": true, "null": true, "like": true, "ilike": true, "between": true,
	"case": true, "when": true, "then": true, "else": true, "end": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"now": true, "interval": true, "date_trunc": true, "extract": true,
	"coalesce": true, "nullif": true, "cast": true, "true": true,
	"false": true, "year": true, "month": true, "week": true, "day": true,
	"exists": true, "all": true, "any": true, "using": true, "epoch": true,
	"current_date": true, "current_timestamp": true, "date_part": true,
	"lower": true, "upper": true, "trim": true, "length": true, "round": true,
	"to_char": true, "over": true, "partition": true, "row_number": true,
	"rank": true, "dense_rank": true,
}

var identifierPattern = regexp.MustCompile(`([a-z_][a-z0-9_]*)(\.([a-z_][a-z0-9_]*))?`)

// extractColumnRefs pulls candidate column references out of the query,
// skipping keywords, string literals, table names and declared aliases.
func extractColumnRefs(query string) []columnRef {
	stripped := stripStringLiterals(strings.ToLower(query))

	tables := make(map[string]bool)
	aliases := make(map[string]bool)
	// Capture "from t [as] a" and "join t [as] a" alias declarations,
	// plus "expr as alias" output names.
	tableClause := regexp.MustCompile(`\b(?:from|join)\s+([a-z_][a-z0-9_]*)(?:\s+(?:as\s+)?([a-z_][a-z0-9_]*))?`)
	for _, m := range tableClause.FindAllStringSubmatch(stripped, -1) {
		tables[m[1]] = true
		if m[2] != "" && !sqlKeywords[m[2]] {
			aliases[m[2]] = true
		}
	}
	asClause := regexp.MustCompile(`\bas\s+([a-z_][a-z0-9_]*)`)
	for _, m := range asClause.FindAllStringSubmatch(stripped, -1) {
		aliases[m[1]] = true
	}

	var refs []columnRef
	seen := make(map[string]bool)
	for _, m := range identifierPattern.FindAllStringSubmatch(stripped, -1) {
		first, qualified := m[1], m[3]
		if qualified != "" {
			key := first + "." + qualified
			if seen[key] {
				continue
			}
			seen[key] = true
			table := first
			if aliases[first] && !tables[first] {
				table = "" // alias qualifier, resolve globally
			}
			refs = append(refs, columnRef{Table: table, Column: qualified})
			continue
		}
		if sqlKeywords[first] || tables[first] || aliases[first] || seen[first] {
			continue
		}
		seen[first] = true
		refs = append(refs, columnRef{Column: first})
	}
	return refs
}

var stringLiteral = regexp.MustCompile(`'[^']*'`)

func stripStringLiterals(query string) string {
	return stringLiteral.ReplaceAllString(query, "''")
}
