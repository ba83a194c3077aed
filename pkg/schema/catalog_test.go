package schema

import (
	"reflect"
	"strings"
	"testing"
)

func TestCatalogLookups(t *testing.T) {
	c := NewCatalog(MaintenanceTables())

	if !c.HasTable("equipment") || !c.HasTable("WORK_ORDERS") {
		t.Error("allow-listed tables not found")
	}
	if c.HasTable("users") {
		t.Error("users should not be allow-listed")
	}
	if !c.HasColumn("equipment", "status") {
		t.Error("equipment.status missing")
	}
	if c.HasColumn("equipment", "cost") {
		t.Error("cost is not an equipment column")
	}
	if !c.ColumnKnown("performed_at") {
		t.Error("performed_at should resolve globally")
	}
	if c.ColumnKnown("password") {
		t.Error("password should not resolve")
	}
}

func TestCatalogTableNamesSorted(t *testing.T) {
	c := NewCatalog(MaintenanceTables())

	want := []string{"equipment", "maintenance_logs", "work_orders"}
	if got := c.TableNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("TableNames = %v", got)
	}
}

func TestCatalogVersionTracksStructure(t *testing.T) {
	c := NewCatalog(MaintenanceTables())
	v1 := c.Version()
	if v1 == "" {
		t.Fatal("empty version")
	}

	// Same structure, same version.
	c.Replace(MaintenanceTables())
	if c.Version() != v1 {
		t.Error("version changed without a structural change")
	}

	// Adding a column must change the version.
	tables := MaintenanceTables()
	tables[0].Columns = append(tables[0].Columns, Column{Name: "serial_number", Type: "varchar"})
	c.Replace(tables)
	if c.Version() == v1 {
		t.Error("version did not change after column addition")
	}
	if !c.HasColumn("equipment", "serial_number") {
		t.Error("new column not visible")
	}
}

func TestPromptDescriptionListsAllTables(t *testing.T) {
	c := NewCatalog(MaintenanceTables())
	desc := c.PromptDescription()

	for _, table := range []string{"equipment", "work_orders", "maintenance_logs"} {
		if !strings.Contains(desc, table) {
			t.Errorf("description missing table %s", table)
		}
	}
}

func TestSchemaFacts(t *testing.T) {
	c := NewCatalog(MaintenanceTables())
	facts := c.SchemaFacts()

	if len(facts) != 3 {
		t.Fatalf("got %d facts", len(facts))
	}
	if !strings.Contains(facts[0], "table equipment") {
		t.Errorf("first fact = %q", facts[0])
	}
}
