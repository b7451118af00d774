// Package data holds the in-memory tabular container shared by the
// preparation pipelines together with its file readers and writers.
package data

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownColumn   = errors.New("data: unknown column")
	ErrDuplicateColumn = errors.New("data: duplicate column")
	ErrLengthMismatch  = errors.New("data: length mismatch")
	ErrNotNumeric      = errors.New("data: value is not numeric")
)

// Dataset is an ordered sequence of rows over a fixed, ordered set of
// named columns. Storage is columnar.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]Value
	rows  int
}

// New returns an empty dataset with the given columns.
func New(names ...string) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(names))}
	for _, n := range names {
		if _, ok := d.index[n]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		d.index[n] = len(d.names)
		d.names = append(d.names, n)
		d.cols = append(d.cols, nil)
	}
	return d, nil
}

// FromRows builds a dataset from row-major values.
func FromRows(names []string, rows [][]Value) (*Dataset, error) {
	d, err := New(names...)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := d.AppendRow(r...); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Names returns a copy of the column names in order.
func (d *Dataset) Names() []string { return append([]string(nil), d.names...) }

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Has reports whether the column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// AppendRow appends one row; vals must be in column order.
func (d *Dataset) AppendRow(vals ...Value) error {
	if len(vals) != len(d.names) {
		return fmt.Errorf("%w: row has %d values, dataset has %d columns", ErrLengthMismatch, len(vals), len(d.names))
	}
	for j, v := range vals {
		d.cols[j] = append(d.cols[j], v)
	}
	d.rows++
	return nil
}

// Row returns a copy of row i in column order.
func (d *Dataset) Row(i int) []Value {
	out := make([]Value, len(d.cols))
	for j := range d.cols {
		out[j] = d.cols[j][i]
	}
	return out
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]Value, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return append([]Value(nil), d.cols[j]...), nil
}

// At returns the value at row i of the named column. It panics on an
// unknown column or out-of-range row, like slice indexing.
func (d *Dataset) At(i int, name string) Value {
	j, ok := d.index[name]
	if !ok {
		panic(fmt.Sprintf("data: unknown column %q", name))
	}
	return d.cols[j][i]
}

// Set overwrites a single cell.
func (d *Dataset) Set(i int, name string, v Value) error {
	j, ok := d.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if i < 0 || i >= d.rows {
		return fmt.Errorf("data: row %d out of range [0,%d)", i, d.rows)
	}
	d.cols[j][i] = v
	return nil
}

// SetColumn replaces the named column, or appends it when absent.
func (d *Dataset) SetColumn(name string, vals []Value) error {
	if len(d.names) > 0 && len(vals) != d.rows {
		return fmt.Errorf("%w: column %q has %d values, dataset has %d rows", ErrLengthMismatch, name, len(vals), d.rows)
	}
	cp := append([]Value(nil), vals...)
	if j, ok := d.index[name]; ok {
		d.cols[j] = cp
		return nil
	}
	d.index[name] = len(d.names)
	d.names = append(d.names, name)
	d.cols = append(d.cols, cp)
	d.rows = len(vals)
	return nil
}

// Floats returns the named column as float64 with missing values as NaN.
// Any categorical or boolean value yields ErrNotNumeric.
func (d *Dataset) Floats(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, d.rows)
	for i, v := range d.cols[j] {
		switch v.Kind() {
		case Missing:
			out[i] = math.NaN()
		case Numeric:
			out[i], _ = v.Float()
		default:
			return nil, fmt.Errorf("%w: column %q row %d holds %s value %q", ErrNotNumeric, name, i, v.Kind(), v.String())
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		names: append([]string(nil), d.names...),
		index: make(map[string]int, len(d.index)),
		cols:  make([][]Value, len(d.cols)),
		rows:  d.rows,
	}
	for k, v := range d.index {
		c.index[k] = v
	}
	for j := range d.cols {
		c.cols[j] = append([]Value(nil), d.cols[j]...)
	}
	return c
}

// Equal reports whether both datasets have the same columns in the same
// order and equal values in every cell.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.rows != o.rows || len(d.names) != len(o.names) {
		return false
	}
	for j, n := range d.names {
		if o.names[j] != n {
			return false
		}
		for i := range d.cols[j] {
			if !d.cols[j][i].Equal(o.cols[j][i]) {
				return false
			}
		}
	}
	return true
}
