package schema

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Column describes a single column of an allowed table.
type Column struct {
	Name        string
	Type        string
	Description string
}

// Table describes an allowed table with its columns.
type Table struct {
	Name        string
	Description string
	Columns     []Column
}

// Catalog is the versioned schema description shared by the validator
// (allow-list), the generator (prompt description) and the retriever
// (schema facts). Reads are concurrent; Replace swaps the whole catalog.
type Catalog struct {
	mu      sync.RWMutex
	tables  map[string]Table
	columns map[string]map[string]bool
	version string
}

func NewCatalog(tables []Table) *Catalog {
	c := &Catalog{}
	c.Replace(tables)
	return c
}

// Replace installs a new table set and recomputes the version. A version
// change implicitly invalidates every cache fingerprint derived from it.
func (c *Catalog) Replace(tables []Table) {
	tableMap := make(map[string]Table, len(tables))
	colMap := make(map[string]map[string]bool, len(tables))
	for _, t := range tables {
		name := strings.ToLower(t.Name)
		tableMap[name] = t
		cols := make(map[string]bool, len(t.Columns))
		for _, col := range t.Columns {
			cols[strings.ToLower(col.Name)] = true
		}
		colMap[name] = cols
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = tableMap
	c.columns = colMap
	c.version = computeVersion(tables)
}

// Version returns a stable hash of the table/column structure.
func (c *Catalog) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// HasTable reports whether a table is in the allow-list.
func (c *Catalog) HasTable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[strings.ToLower(name)]
	return ok
}

// HasColumn reports whether a column exists on an allowed table.
func (c *Catalog) HasColumn(table, column string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cols, ok := c.columns[strings.ToLower(table)]
	if !ok {
		return false
	}
	return cols[strings.ToLower(column)]
}

// ColumnKnown reports whether any allowed table carries the column.
// Used when a query references a column without qualifying the table.
func (c *Catalog) ColumnKnown(column string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	column = strings.ToLower(column)
	for _, cols := range c.columns {
		if cols[column] {
			return true
		}
	}
	return false
}

// TableNames returns the allowed table names sorted.
func (c *Catalog) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the full table descriptions sorted by name.
func (c *Catalog) Tables() []Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Table, 0, len(names))
	for _, name := range names {
		out = append(out, c.tables[name])
	}
	return out
}

// PromptDescription renders a compact schema description for the
// generation prompt.
func (c *Catalog) PromptDescription() string {
	var b strings.Builder
	for _, t := range c.Tables() {
		b.WriteString(t.Name)
		if t.Description != "" {
			b.WriteString(" -- ")
			b.WriteString(t.Description)
		}
		b.WriteString("\n")
		for _, col := range t.Columns {
			b.WriteString("  ")
			b.WriteString(col.Name)
			b.WriteString(" ")
			b.WriteString(col.Type)
			if col.Description != "" {
				b.WriteString(" -- ")
				b.WriteString(col.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SchemaFacts renders one fact string per table for the retriever index.
func (c *Catalog) SchemaFacts() []string {
	tables := c.Tables()
	facts := make([]string, 0, len(tables))
	for _, t := range tables {
		cols := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			cols = append(cols, col.Name)
		}
		facts = append(facts, fmt.Sprintf("table %s (%s): %s",
			t.Name, strings.Join(cols, ", "), t.Description))
	}
	return facts
}

func computeVersion(tables []Table) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		cols := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			cols = append(cols, strings.ToLower(col.Name)+":"+strings.ToLower(col.Type))
		}
		sort.Strings(cols)
		parts = append(parts, strings.ToLower(t.Name)+"{"+strings.Join(cols, ",")+"}")
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return fmt.Sprintf("%x", sum[:8])
}
