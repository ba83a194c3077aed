package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a registered deterministic question shape. Regex runs over
// the normalized question form (lowercased, punctuation stripped).
type Pattern struct {
	ID         string
	Regex      *regexp.Regexp
	Confidence float64
	Build      func(groups []string) (sql string, explanation string)
}

// Match is the outcome of probing the registry with a question.
type Match struct {
	PatternID   string
	Confidence  float64
	SQL         string
	Explanation string
}

// Registry holds the known deterministic patterns in probe order.
type Registry struct {
	patterns []Pattern
}

func NewRegistry(patterns []Pattern) *Registry {
	return &Registry{patterns: patterns}
}

// Match probes patterns in order and returns the first hit.
func (r *Registry) Match(normalized string) (*Match, bool) {
	for _, p := range r.patterns {
		groups := p.Regex.FindStringSubmatch(normalized)
		if groups == nil {
			continue
		}
		sql, explanation := p.Build(groups)
		if sql == "" {
			continue
		}
		return &Match{
			PatternID:   p.ID,
			Confidence:  p.Confidence,
			SQL:         sql,
			Explanation: explanation,
		}, true
	}
	return nil, false
}

// equipment type vocabulary, Portuguese and English surface forms
var equipmentTypes = map[string]string{
	"transformador":  "transformer",
	"transformadores": "transformer",
	"transformer":    "transformer",
	"transformers":   "transformer",
	"bomba":          "pump",
	"bombas":         "pump",
	"pump":           "pump",
	"pumps":          "pump",
	"motor":          "motor",
	"motores":        "motor",
	"motors":         "motor",
	"gerador":        "generator",
	"geradores":      "generator",
	"generator":      "generator",
	"generators":     "generator",
	"compressor":     "compressor",
	"compressores":   "compressor",
	"compressors":    "compressor",
}

var statusWords = map[string]string{
	"operacional":     "operational",
	"operacionais":    "operational",
	"operational":     "operational",
	"em manutencao":   "maintenance",
	"em manutenção":   "maintenance",
	"manutencao":      "maintenance",
	"manutenção":      "maintenance",
	"maintenance":     "maintenance",
	"desativado":      "decommissioned",
	"desativados":     "decommissioned",
	"decommissioned":  "decommissioned",
}

// EquipmentType maps a surface form to the canonical type value.
func EquipmentType(word string) (string, bool) {
	t, ok := equipmentTypes[strings.TrimSpace(word)]
	return t, ok
}

// StatusValue maps a surface form to the canonical status value.
func StatusValue(word string) (string, bool) {
	s, ok := statusWords[strings.TrimSpace(word)]
	return s, ok
}

// Maintenance returns the default registry for the maintenance domain.
func Maintenance() *Registry {
	return NewRegistry([]Pattern{
		{
			ID:         "count_equipment_type_status",
			Regex:      regexp.MustCompile(`^(?:quantos|quantas|how many) (\p{L}+) (?:estao|estão|are) (\p{L}+)$`),
			Confidence: 0.95,
			Build: func(g []string) (string, string) {
				eqType, okType := EquipmentType(g[1])
				status, okStatus := StatusValue(g[2])
				if !okType || !okStatus {
					return "", ""
				}
				return fmt.Sprintf(
						"SELECT COUNT(*) AS total FROM equipment WHERE type = '%s' AND status = '%s'",
						eqType, status),
					fmt.Sprintf("Counts equipment of type %s with status %s.", eqType, status)
			},
		},
		{
			ID:         "count_equipment_status",
			Regex:      regexp.MustCompile(`^(?:quantos|quantas|how many) (?:equipamentos|equipment|assets|ativos) (?:estao|estão|are) (\p{L}+)$`),
			Confidence: 0.95,
			Build: func(g []string) (string, string) {
				status, ok := StatusValue(g[1])
				if !ok {
					return "", ""
				}
				return fmt.Sprintf(
						"SELECT COUNT(*) AS total FROM equipment WHERE status = '%s'", status),
					fmt.Sprintf("Counts equipment with status %s.", status)
			},
		},
		{
			ID:         "count_equipment",
			Regex:      regexp.MustCompile(`^(?:quantos|quantas|how many) (?:equipamentos|equipment|assets|ativos)(?: existem| are there| exist)?$`),
			Confidence: 0.9,
			Build: func(g []string) (string, string) {
				return "SELECT COUNT(*) AS total FROM equipment",
					"Counts all registered equipment."
			},
		},
		{
			ID:         "open_work_orders",
			Regex:      regexp.MustCompile(`(?:ordens de servico abertas|ordens abertas|open work orders|work orders open)`),
			Confidence: 0.9,
			Build: func(g []string) (string, string) {
				return "SELECT id, equipment_id, description, priority, opened_at FROM work_orders WHERE status = 'open' ORDER BY opened_at DESC",
					"Lists work orders that are still open, newest first."
			},
		},
		{
			ID:         "count_open_work_orders",
			Regex:      regexp.MustCompile(`^(?:quantas|how many) (?:ordens de servico|ordens|work orders) (?:estao|estão|are) (?:abertas|open)$`),
			Confidence: 0.95,
			Build: func(g []string) (string, string) {
				return "SELECT COUNT(*) AS total FROM work_orders WHERE status = 'open'",
					"Counts work orders that are still open."
			},
		},
		{
			ID:         "last_maintenance_by_code",
			Regex:      regexp.MustCompile(`(?:ultima manutencao|última manutenção|last maintenance) (?:do|da|de|of|for)? ?(?:equipamento|equipment)? ?([a-z]{2,4} ?\d{2,6})$`),
			Confidence: 0.85,
			Build: func(g []string) (string, string) {
				code := strings.ToUpper(strings.ReplaceAll(g[1], " ", "-"))
				return fmt.Sprintf(
						"SELECT ml.performed_at, ml.action, ml.technician, ml.notes FROM maintenance_logs ml JOIN work_orders wo ON wo.id = ml.work_order_id JOIN equipment e ON e.id = wo.equipment_id WHERE e.code = '%s' ORDER BY ml.performed_at DESC LIMIT 1",
						code),
					fmt.Sprintf("Finds the most recent maintenance intervention for equipment %s.", code)
			},
		},
	})
}
