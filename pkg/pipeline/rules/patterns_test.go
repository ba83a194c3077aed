package rules

import (
	"strings"
	"testing"
)

func TestMaintenanceRegistryMatches(t *testing.T) {
	registry := Maintenance()

	tests := []struct {
		name       string
		normalized string
		patternID  string
		sqlPart    string
	}{
		{
			"count by type and status pt",
			"quantos transformadores estão operacionais",
			"count_equipment_type_status",
			"type = 'transformer' AND status = 'operational'",
		},
		{
			"count by type and status en",
			"how many pumps are maintenance",
			"count_equipment_type_status",
			"type = 'pump' AND status = 'maintenance'",
		},
		{
			"count by status",
			"quantos equipamentos estão operacionais",
			"count_equipment_status",
			"status = 'operational'",
		},
		{
			"count all equipment",
			"quantos equipamentos existem",
			"count_equipment",
			"COUNT(*) AS total FROM equipment",
		},
		{
			"open work orders",
			"ordens de servico abertas",
			"open_work_orders",
			"status = 'open'",
		},
		{
			"count open work orders",
			"quantas ordens estão abertas",
			"count_open_work_orders",
			"COUNT(*) AS total FROM work_orders",
		},
		{
			"last maintenance by code",
			"última manutenção do equipamento tr 001",
			"last_maintenance_by_code",
			"e.code = 'TR-001'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := registry.Match(tt.normalized)
			if !ok {
				t.Fatalf("no match for %q", tt.normalized)
			}
			if m.PatternID != tt.patternID {
				t.Errorf("pattern = %s, want %s", m.PatternID, tt.patternID)
			}
			if !strings.Contains(m.SQL, tt.sqlPart) {
				t.Errorf("sql %q does not contain %q", m.SQL, tt.sqlPart)
			}
			if m.Confidence <= 0 || m.Confidence > 1 {
				t.Errorf("confidence out of range: %f", m.Confidence)
			}
			if m.Explanation == "" {
				t.Error("explanation is empty")
			}
		})
	}
}

func TestMaintenanceRegistryNoMatch(t *testing.T) {
	registry := Maintenance()

	for _, q := range []string{
		"what is the meaning of life",
		"quantos foobars estão operacionais", // unknown vocabulary
		"",
	} {
		if m, ok := registry.Match(q); ok {
			t.Errorf("unexpected match for %q: %s", q, m.PatternID)
		}
	}
}

func TestVocabulary(t *testing.T) {
	if v, ok := EquipmentType("bombas"); !ok || v != "pump" {
		t.Errorf("EquipmentType(bombas) = %q, %v", v, ok)
	}
	if v, ok := StatusValue("operacionais"); !ok || v != "operational" {
		t.Errorf("StatusValue(operacionais) = %q, %v", v, ok)
	}
	if _, ok := EquipmentType("nave"); ok {
		t.Error("EquipmentType(nave) should not match")
	}
}
