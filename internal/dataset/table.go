package dataset

import (
	"fmt"
	"math"
	"reflect"
)

// Column is one named column of a Table.
// Values is nil when the column holds any non-numeric cell.
type Column struct {
	Name    string
	Numeric bool
	Values  []float64 // NaN marks a missing cell
}

// Table is a column-oriented view of a tabular dataset.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	return t.rows
}

// Names returns the column names in source order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Builder accumulates rows into a Table.
type Builder struct {
	table *Table
}

// NewBuilder creates a builder for the given header.
// Duplicate names are suffixed with ".1", ".2", ... in order of appearance.
func NewBuilder(header []string) *Builder {
	t := &Table{
		columns: make([]*Column, len(header)),
		index:   make(map[string]int, len(header)),
	}
	seen := make(map[string]int, len(header))
	for i, name := range header {
		unique := name
		if n, dup := seen[name]; dup {
			for {
				unique = fmt.Sprintf("%s.%d", name, n)
				n++
				if _, taken := t.index[unique]; !taken {
					break
				}
			}
			seen[name] = n
		} else {
			seen[name] = 1
		}
		t.columns[i] = &Column{Name: unique, Numeric: true}
		t.index[unique] = i
	}
	return &Builder{table: t}
}

// Append adds one row. Cells are matched to columns by position; missing
// trailing cells are treated as missing values.
//
// nil and nil pointers are missing values. Integers, floats and bools are
// numeric. Anything else (strings, times, ...) makes its column non-numeric.
func (b *Builder) Append(cells []any) error {
	t := b.table
	if len(cells) > len(t.columns) {
		return fmt.Errorf("row %d: got %d cells, header has %d columns", t.rows+1, len(cells), len(t.columns))
	}
	for i, col := range t.columns {
		var cell any
		if i < len(cells) {
			cell = cells[i]
		}
		if !col.Numeric {
			continue
		}
		v, numeric := cellValue(cell)
		if !numeric {
			col.Numeric = false
			col.Values = nil
			continue
		}
		col.Values = append(col.Values, v)
	}
	t.rows++
	return nil
}

// Table returns the accumulated table.
func (b *Builder) Table() *Table {
	return b.table
}

// cellValue converts a driver or parser value to float64.
// Missing values return (NaN, true).
func cellValue(cell any) (float64, bool) {
	if cell == nil {
		return math.NaN(), true
	}
	v := reflect.ValueOf(cell)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return math.NaN(), true
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Compact returns a table without the numeric columns whose cells are all
// missing. Database sources use it so that a column the stored schema
// always carries, but the ingested data never filled, reads as absent.
func (t *Table) Compact() *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: t.rows}
	for _, c := range t.columns {
		if c.Numeric && allMissing(c.Values) {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}

func allMissing(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
