package generator

import (
	"sort"
	"strings"
)

// Example is a worked question/query pair injected into the prompt.
type Example struct {
	Question string
	SQL      string
}

var workedExamples = []Example{
	{
		Question: "How many pumps are operational?",
		SQL:      "SELECT COUNT(*) AS total FROM equipment WHERE type = 'pump' AND status = 'operational'",
	},
	{
		Question: "Quantas ordens de serviço estão abertas?",
		SQL:      "SELECT COUNT(*) AS total FROM work_orders WHERE status = 'open'",
	},
	{
		Question: "What was the total maintenance cost per equipment type last year?",
		SQL:      "SELECT e.type, SUM(wo.cost) AS total_cost FROM work_orders wo JOIN equipment e ON e.id = wo.equipment_id WHERE wo.opened_at >= NOW() - INTERVAL '1 year' GROUP BY e.type ORDER BY total_cost DESC",
	},
	{
		Question: "Qual técnico realizou mais intervenções este mês?",
		SQL:      "SELECT technician, COUNT(*) AS interventions FROM maintenance_logs WHERE performed_at >= date_trunc('month', NOW()) GROUP BY technician ORDER BY interventions DESC LIMIT 5",
	},
	{
		Question: "Which high criticality equipment has open work orders?",
		SQL:      "SELECT e.code, e.name, wo.priority, wo.opened_at FROM equipment e JOIN work_orders wo ON wo.equipment_id = e.id WHERE e.criticality = 'high' AND wo.status = 'open' ORDER BY wo.opened_at",
	},
	{
		Question: "Qual a duração média das reparações?",
		SQL:      "SELECT AVG(duration_min) AS avg_duration_min FROM maintenance_logs WHERE action = 'repair'",
	},
}

// SelectExamples picks the n worked examples most similar to the
// question by token overlap. Ties break on declaration order so the
// prompt is stable for identical input.
func SelectExamples(normalizedQuestion string, n int) []Example {
	if n <= 0 || n > len(workedExamples) {
		n = len(workedExamples)
	}

	qTokens := exampleTokens(normalizedQuestion)
	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, len(workedExamples))
	for i, ex := range workedExamples {
		exTokens := exampleTokens(strings.ToLower(ex.Question))
		shared := 0
		for t := range qTokens {
			if exTokens[t] {
				shared++
			}
		}
		ranked[i] = scored{idx: i, score: shared}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]Example, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, workedExamples[r.idx])
	}
	return out
}

func exampleTokens(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, f := range strings.Fields(text) {
		token := strings.Trim(f, "?.,;:!'\"")
		if len(token) > 2 {
			tokens[token] = true
		}
	}
	return tokens
}
