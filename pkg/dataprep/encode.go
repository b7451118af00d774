package dataprep

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Ryuk2git/econprep/pkg/data"
)

var (
	// ErrMixedColumn is returned for feature columns that cannot be
	// categorized: numeric values mixed with labels, or boolean values.
	ErrMixedColumn = errors.New("dataprep: column cannot be categorized")
	// ErrUnknownCode is returned when decoding meets a code that has no
	// label in the column's mapping.
	ErrUnknownCode = errors.New("dataprep: code missing from category mapping")
)

// CategoryMapping is a bijection between integer codes 0..n-1 and the
// distinct labels of one column, in sorted label order.
type CategoryMapping struct {
	labels []string
	codes  map[string]int
}

// NewCategoryMapping builds a mapping from the distinct values of labels.
func NewCategoryMapping(labels []string) *CategoryMapping {
	uniq := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		uniq[l] = struct{}{}
	}
	m := &CategoryMapping{
		labels: make([]string, 0, len(uniq)),
		codes:  make(map[string]int, len(uniq)),
	}
	for l := range uniq {
		m.labels = append(m.labels, l)
	}
	sort.Strings(m.labels)
	for i, l := range m.labels {
		m.codes[l] = i
	}
	return m
}

func (m *CategoryMapping) Len() int { return len(m.labels) }

// Labels returns the labels indexed by code.
func (m *CategoryMapping) Labels() []string { return append([]string(nil), m.labels...) }

func (m *CategoryMapping) Code(label string) (int, bool) {
	c, ok := m.codes[label]
	return c, ok
}

func (m *CategoryMapping) Label(code int) (string, bool) {
	if code < 0 || code >= len(m.labels) {
		return "", false
	}
	return m.labels[code], true
}

// LabelEncode encodes categories as integers.
func LabelEncode(labels []string) ([]int, *CategoryMapping) {
	m := NewCategoryMapping(labels)
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = m.codes[l]
	}
	return out, m
}

// Encoding holds the mappings of every column rewritten by EncodeCategorical.
type Encoding struct {
	Columns  []string
	Mappings map[string]*CategoryMapping
}

// EncodeCategorical replaces the labels of every categorical column among
// columns with their integer codes, in place. Numeric and all-missing
// columns are left untouched; missing cells stay missing.
func EncodeCategorical(d *data.Dataset, columns []string) (*Encoding, error) {
	enc := &Encoding{Mappings: make(map[string]*CategoryMapping)}
	schema := d.Schema()
	for _, name := range columns {
		if !d.Has(name) {
			return nil, fmt.Errorf("%w: %q", data.ErrUnknownColumn, name)
		}
		switch t := schema.TypeOf(name); t {
		case data.TypeNumeric, data.TypeEmpty:
			continue
		case data.TypeCategorical:
		default:
			return nil, fmt.Errorf("%w: %q is %s", ErrMixedColumn, name, t)
		}
		col, _ := d.Column(name)
		labels := make([]string, 0, len(col))
		for _, v := range col {
			if l, ok := v.Label(); ok {
				labels = append(labels, l)
			}
		}
		m := NewCategoryMapping(labels)
		for i, v := range col {
			if l, ok := v.Label(); ok {
				code, _ := m.Code(l)
				col[i] = data.Num(float64(code))
			}
		}
		if err := d.SetColumn(name, col); err != nil {
			return nil, err
		}
		enc.Columns = append(enc.Columns, name)
		enc.Mappings[name] = m
	}
	return enc, nil
}

// Decode restores the labels of every encoded column, in place.
func (e *Encoding) Decode(d *data.Dataset) error {
	for _, name := range e.Columns {
		m := e.Mappings[name]
		col, err := d.Column(name)
		if err != nil {
			return err
		}
		for i, v := range col {
			if v.IsMissing() {
				continue
			}
			f, ok := v.Float()
			if !ok || f != math.Trunc(f) {
				return fmt.Errorf("%w: column %q row %d holds %q", ErrUnknownCode, name, i, v.String())
			}
			label, ok := m.Label(int(f))
			if !ok {
				return fmt.Errorf("%w: column %q row %d code %d", ErrUnknownCode, name, i, int(f))
			}
			col[i] = data.Cat(label)
		}
		if err := d.SetColumn(name, col); err != nil {
			return err
		}
	}
	return nil
}
