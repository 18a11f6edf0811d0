package table

import (
	"fmt"
)

// Dataset is an immutable tabular view: an ordered header list plus rows.
// Every row holds a Value for every header (missing cells are Null, never
// omitted). Construction validates the shape; rule evaluation only reads.
type Dataset struct {
	headers []string
	index   map[string]int
	rows    [][]Value
}

// NewDataset builds a Dataset from raw rows keyed by header name.
//
// Shape errors (the only errors allowed to abort an evaluation run):
//   - empty or duplicate header names
//   - a row carrying a key not present in headers
//
// Missing keys are filled with Null.
func NewDataset(headers []string, rows []map[string]any) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("dataset requires at least one header")
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			return nil, fmt.Errorf("header %d is empty", i)
		}
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("duplicate header %q", h)
		}
		index[h] = i
	}

	built := make([][]Value, len(rows))
	for r, raw := range rows {
		row := make([]Value, len(headers))
		for i := range row {
			row[i] = Null{}
		}
		for key, cell := range raw {
			i, ok := index[key]
			if !ok {
				return nil, fmt.Errorf("row %d: key %q not in headers", r, key)
			}
			v, err := FromAny(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", r, key, err)
			}
			row[i] = v
		}
		built[r] = row
	}

	hdrs := make([]string, len(headers))
	copy(hdrs, headers)

	return &Dataset{headers: hdrs, index: index, rows: built}, nil
}

// Headers returns the ordered header names. The slice is a copy.
func (d *Dataset) Headers() []string {
	out := make([]string, len(d.headers))
	copy(out, d.headers)
	return out
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return len(d.rows)
}

// HasColumn reports whether name is a known header.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column extracts the value sequence for one header, in row order.
// Returns false if the header does not exist. The slice is a copy:
// evaluators may not reach the backing rows.
func (d *Dataset) Column(name string) ([]Value, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	col := make([]Value, len(d.rows))
	for r, row := range d.rows {
		col[r] = row[i]
	}
	return col, true
}
