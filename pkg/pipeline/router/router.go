package router

import (
	"fmt"
	"regexp"
	"strings"

	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/rules"
)

// Route selects which generation strategy handles a question.
type Route string

const (
	RouteDeterministic Route = "deterministic"
	RouteGenerated     Route = "generated"
	RouteHybrid        Route = "hybrid"
)

// Decision is the routing outcome for one question. Created per question
// and discarded after use.
type Decision struct {
	Route      Route
	Confidence float64
	PatternID  string // empty when no pattern matched
	Rationale  string
}

// Config carries the routing thresholds. All scores are in [0,1].
type Config struct {
	ComplexityThreshold float64 // above this, always generate
	PatternThreshold    float64 // pattern confidence needed for the deterministic route
}

// Router classifies questions. It is pure: no I/O, no shared state
// beyond the immutable pattern registry, so one instance serves all
// requests concurrently.
type Router struct {
	registry *rules.Registry
	cfg      Config
}

func New(registry *rules.Registry, cfg Config) *Router {
	return &Router{registry: registry, cfg: cfg}
}

// Decide computes a complexity score and probes the pattern registry.
// Policy: low complexity + confident pattern -> deterministic;
// high complexity -> generated; otherwise hybrid.
func (r *Router) Decide(q question.Question) Decision {
	complexity := Complexity(q.Normalized)
	match, matched := r.registry.Match(q.Normalized)

	if matched && complexity < r.cfg.ComplexityThreshold && match.Confidence >= r.cfg.PatternThreshold {
		return Decision{
			Route:      RouteDeterministic,
			Confidence: match.Confidence,
			PatternID:  match.PatternID,
			Rationale:  fmt.Sprintf("pattern %s matched with confidence %.2f, complexity %.2f", match.PatternID, match.Confidence, complexity),
		}
	}

	if complexity >= r.cfg.ComplexityThreshold {
		return Decision{
			Route:      RouteGenerated,
			Confidence: complexity,
			Rationale:  fmt.Sprintf("complexity %.2f above threshold %.2f", complexity, r.cfg.ComplexityThreshold),
		}
	}

	decision := Decision{
		Route:      RouteHybrid,
		Confidence: 1 - complexity,
		Rationale:  fmt.Sprintf("no confident pattern (matched=%v), complexity %.2f", matched, complexity),
	}
	if matched {
		decision.PatternID = match.PatternID
		decision.Confidence = match.Confidence
	}
	return decision
}

var (
	entityWords = []string{
		"equipamento", "equipamentos", "equipment", "asset", "ativos",
		"transformador", "transformadores", "transformer", "bomba", "pump",
		"motor", "motores", "gerador", "compressor",
		"ordem", "ordens", "work order", "work orders",
		"manutencao", "manutenção", "maintenance", "tecnico", "técnico", "technician",
	}
	metricWords = []string{
		"custo", "cost", "duracao", "duração", "duration", "tempo", "time",
		"quantidade", "count", "total", "media", "média", "average", "percent",
	}
	aggregationWords = []string{
		"quantos", "quantas", "how many", "soma", "sum", "media", "média",
		"average", "maximo", "máximo", "max", "minimo", "mínimo", "min",
		"total", "por", "per", "group", "agrupado",
	}
	temporalPattern = regexp.MustCompile(
		`(\d{4})|(ultim\p{L}*|última|last|past|desde|since|entre|between|mes|mês|month|semana|week|ano|year|hoje|today|ontem|yesterday)`)
)

// Complexity scores structural features of the normalized question:
// distinct entities, metrics, temporal ranges, aggregation verbs.
// It is intentionally cheap; this gates everything downstream.
func Complexity(normalized string) float64 {
	padded := " " + normalized + " "

	entities := 0
	for _, w := range entityWords {
		if strings.Contains(padded, " "+w+" ") {
			entities++
		}
	}
	metrics := 0
	for _, w := range metricWords {
		if strings.Contains(padded, " "+w+" ") {
			metrics++
		}
	}
	aggregations := 0
	for _, w := range aggregationWords {
		if strings.Contains(padded, " "+w+" ") {
			aggregations++
		}
	}
	temporal := 0.0
	if temporalPattern.MatchString(normalized) {
		temporal = 1.0
	}

	// Weighted sum clamped to [0,1]. A single entity with one aggregation
	// verb stays simple; stacked entities, metrics and time ranges push
	// the score toward the generation path.
	score := 0.18*float64(max(entities-1, 0)) +
		0.15*float64(metrics) +
		0.10*float64(max(aggregations-1, 0)) +
		0.20*temporal

	wordCount := len(strings.Fields(normalized))
	if wordCount > 12 {
		score += 0.15
	}
	if score > 1 {
		score = 1
	}
	return score
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
