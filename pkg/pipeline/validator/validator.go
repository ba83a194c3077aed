package validator

import (
	"regexp"
	"strings"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/pipeline/generator"
	"maintenance-qa-be/pkg/schema"
)

// Generated SQL arrives with arbitrary whitespace, newlines included, so
// structural counts match on word boundaries rather than literal spacing.
var (
	joinKeyword    = regexp.MustCompile(`(?i)\bjoin\b`)
	subqueryOpen   = regexp.MustCompile(`(?i)\(\s*select\b`)
	windowFunction = regexp.MustCompile(`(?i)\bover\s*\(`)
)

// Outcome of validating one candidate.
type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
	OutcomeSanitized Outcome = "sanitized"
)

// Severity of a rule violation. A single blocking violation rejects the
// candidate outright.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// Violation records one rule hit. Detail is for the operator log only;
// it is never shown to the end user.
type Violation struct {
	RuleID   string
	Severity Severity
	Detail   string
}

// Verdict is the validator's decision. A rejected verdict is terminal
// for the candidate; it must never reach execution.
type Verdict struct {
	Outcome        Outcome
	Violations     []Violation
	SanitizedQuery string // set only when Outcome == OutcomeSanitized
}

// Query returns the text that may run: the sanitized form when present,
// the original otherwise. Callers must check Outcome first.
func (v Verdict) Query(original string) string {
	if v.Outcome == OutcomeSanitized {
		return v.SanitizedQuery
	}
	return original
}

// Tier is the configured strictness level.
type Tier string

const (
	TierStrict     Tier = "strict"
	TierModerate   Tier = "moderate"
	TierPermissive Tier = "permissive"
)

func ParseTier(s string) Tier {
	switch strings.ToLower(s) {
	case "moderate":
		return TierModerate
	case "permissive":
		return TierPermissive
	default:
		return TierStrict
	}
}

type Config struct {
	Tier          Tier
	MaxJoins      int
	MaxSubqueries int
	MaxRows       int
}

// Validator decides, before any execution, whether a candidate query may
// run. All checks run; blocking violations reject, warnings may trigger
// sanitization.
type Validator struct {
	catalog *schema.Catalog
	cfg     Config
	log     logger.ILogger
}

func New(catalog *schema.Catalog, cfg Config, log logger.ILogger) *Validator {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	return &Validator{catalog: catalog, cfg: cfg, log: log}
}

// Validate runs the full check pipeline over the candidate.
func (v *Validator) Validate(candidate *generator.Candidate) Verdict {
	query := strings.TrimSpace(candidate.Query)

	var violations []Violation
	violations = append(violations, checkSyntax(query)...)
	violations = append(violations, checkCommandWhitelist(query)...)
	violations = append(violations, v.checkSchemaScope(query)...)
	violations = append(violations, checkInjectionPatterns(query)...)
	violations = append(violations, v.checkComplexity(query)...)
	violations = append(violations, v.checkTier(query)...)

	for _, violation := range violations {
		if violation.Severity == SeverityBlocking {
			v.log.Warn("validator", "candidate rejected", map[string]interface{}{
				"rule":   violation.RuleID,
				"detail": violation.Detail,
			})
			return Verdict{Outcome: OutcomeRejected, Violations: violations}
		}
	}

	sanitized, changed := EnsureRowLimit(query, v.cfg.MaxRows)
	if changed {
		violations = append(violations, Violation{
			RuleID:   "row-limit-injected",
			Severity: SeverityWarning,
			Detail:   "query carried no row bound; limit added",
		})
		return Verdict{
			Outcome:        OutcomeSanitized,
			Violations:     violations,
			SanitizedQuery: sanitized,
		}
	}

	return Verdict{Outcome: OutcomeApproved, Violations: violations}
}

func (v *Validator) checkSchemaScope(query string) []Violation {
	var violations []Violation

	tables := generator.ExtractTables(query)
	if len(tables) == 0 {
		violations = append(violations, Violation{
			RuleID:   "schema-no-table",
			Severity: SeverityBlocking,
			Detail:   "query references no table",
		})
		return violations
	}
	for _, table := range tables {
		if !v.catalog.HasTable(table) {
			violations = append(violations, Violation{
				RuleID:   "schema-unknown-table",
				Severity: SeverityBlocking,
				Detail:   "table not in allow-list: " + table,
			})
		}
	}

	for _, ref := range extractColumnRefs(query) {
		if ref.Table != "" {
			// Qualified by a real table name; aliases resolve below.
			if v.catalog.HasTable(ref.Table) && !v.catalog.HasColumn(ref.Table, ref.Column) {
				violations = append(violations, Violation{
					RuleID:   "schema-unknown-column",
					Severity: SeverityBlocking,
					Detail:   "column not on table: " + ref.Table + "." + ref.Column,
				})
			} else if !v.catalog.HasTable(ref.Table) && !v.catalog.ColumnKnown(ref.Column) {
				// Qualifier is an alias; fall back to a global column check.
				violations = append(violations, Violation{
					RuleID:   "schema-unknown-column",
					Severity: SeverityBlocking,
					Detail:   "column not in schema: " + ref.Column,
				})
			}
		} else if !v.catalog.ColumnKnown(ref.Column) {
			violations = append(violations, Violation{
				RuleID:   "schema-unknown-column",
				Severity: SeverityBlocking,
				Detail:   "column not in schema: " + ref.Column,
			})
		}
	}

	return violations
}

func (v *Validator) checkComplexity(query string) []Violation {
	var violations []Violation

	joins := len(joinKeyword.FindAllString(query, -1))
	if joins > v.cfg.MaxJoins {
		violations = append(violations, Violation{
			RuleID:   "complexity-joins",
			Severity: SeverityBlocking,
			Detail:   "join count exceeds limit",
		})
	}

	subqueries := len(subqueryOpen.FindAllString(query, -1))
	if subqueries > v.cfg.MaxSubqueries {
		violations = append(violations, Violation{
			RuleID:   "complexity-subqueries",
			Severity: SeverityBlocking,
			Detail:   "subquery count exceeds limit",
		})
	}

	return violations
}

func (v *Validator) checkTier(query string) []Violation {
	var violations []Violation

	switch v.cfg.Tier {
	case TierStrict:
		if subqueryOpen.MatchString(query) {
			violations = append(violations, Violation{
				RuleID:   "tier-subquery",
				Severity: SeverityBlocking,
				Detail:   "subqueries not allowed at strict tier",
			})
		}
		if windowFunction.MatchString(query) {
			violations = append(violations, Violation{
				RuleID:   "tier-analytic",
				Severity: SeverityBlocking,
				Detail:   "window functions not allowed at strict tier",
			})
		}
		if len(joinKeyword.FindAllString(query, -1)) > 2 {
			violations = append(violations, Violation{
				RuleID:   "tier-joins",
				Severity: SeverityBlocking,
				Detail:   "more than two joins not allowed at strict tier",
			})
		}
	case TierModerate:
		if windowFunction.MatchString(query) {
			violations = append(violations, Violation{
				RuleID:   "tier-analytic",
				Severity: SeverityBlocking,
				Detail:   "window functions not allowed at moderate tier",
			})
		}
	case TierPermissive:
		// Analytic functions and subqueries pass; complexity limits above
		// still apply.
	}

	return violations
}
