package generator

import (
	"reflect"
	"testing"
)

func TestExtractSingleFence(t *testing.T) {
	raw := "Here is the query.\n```sql\nSELECT COUNT(*) AS total FROM equipment\n```\nIt counts equipment."

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got.Query != "SELECT COUNT(*) AS total FROM equipment" {
		t.Errorf("query = %q", got.Query)
	}
	if got.Explanation == "" {
		t.Error("explanation should keep the surrounding prose")
	}
	if got.Confidence <= 0.5 || got.Confidence > 0.95 {
		t.Errorf("confidence = %f", got.Confidence)
	}
}

func TestExtractRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no fence", "SELECT * FROM equipment"},
		{"wrong language tag", "```python\nprint('hi')\n```"},
		{"two fences", "```sql\nSELECT 1\n```\n```sql\nSELECT 2\n```"},
		{"empty fence", "```sql\n\n```"},
		{"empty response", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := Extract(tt.raw); err == nil {
				t.Errorf("expected error, got query %q", got.Query)
			}
		})
	}
}

func TestExtractTables(t *testing.T) {
	sql := "SELECT e.code, COUNT(*) FROM equipment e JOIN work_orders wo ON wo.equipment_id = e.id LEFT JOIN maintenance_logs ml ON ml.work_order_id = wo.id GROUP BY e.code"

	got := ExtractTables(sql)
	want := []string{"equipment", "work_orders", "maintenance_logs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTables = %v, want %v", got, want)
	}
}

func TestEstimateComplexity(t *testing.T) {
	simple := EstimateComplexity("SELECT COUNT(*) FROM equipment")
	joined := EstimateComplexity("SELECT e.code FROM equipment e JOIN work_orders wo ON wo.equipment_id = e.id GROUP BY e.code ORDER BY e.code")

	if simple >= joined {
		t.Errorf("simple %f should score below joined %f", simple, joined)
	}
	if joined > 1 {
		t.Errorf("complexity above 1: %f", joined)
	}
}
