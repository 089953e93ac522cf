package results

import "fmt"

// Table is a small column-oriented table addressed by column name. It
// backs the experiment metadata of a run: one row per experiment, one
// column per parameter plus the scenario, policy and model columns.
type Table struct {
	names   []string
	columns map[string][]any
}

// NewTable creates a table with the given columns, each preallocated
// to rows entries.
func NewTable(names []string, rows int) *Table {
	t := &Table{
		names:   append([]string(nil), names...),
		columns: make(map[string][]any, len(names)),
	}
	for _, name := range t.names {
		t.columns[name] = make([]any, rows)
	}
	return t
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.names) == 0 {
		return 0
	}
	return len(t.columns[t.names[0]])
}

// Column returns the values of one column.
func (t *Table) Column(name string) ([]any, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("table has no column %q", name)
	}
	return col, nil
}

// Set assigns one cell.
func (t *Table) Set(name string, row int, value any) error {
	col, ok := t.columns[name]
	if !ok {
		return fmt.Errorf("table has no column %q", name)
	}
	if row < 0 || row >= len(col) {
		return fmt.Errorf("row %d out of range for column %q", row, name)
	}
	col[row] = value
	return nil
}

// Row returns one row as a name-to-value map.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.names))
	for _, name := range t.names {
		row[name] = t.columns[name][i]
	}
	return row
}
