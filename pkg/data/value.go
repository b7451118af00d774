package data

import (
	"math"
	"strconv"
)

// Kind enumerates the value kinds a Dataset cell can hold.
type Kind uint8

const (
	Missing Kind = iota
	Numeric
	Categorical
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Boolean:
		return "boolean"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// NA returns a missing value.
func NA() Value { return Value{} }

// Num returns a numeric value. NaN is normalised to missing.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: Numeric, num: f}
}

// Cat returns a categorical label.
func Cat(s string) Value { return Value{kind: Categorical, str: s} }

// Flag returns a boolean value.
func Flag(b bool) Value { return Value{kind: Boolean, b: b} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == Missing }

// Float returns the numeric payload; ok is false for non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != Numeric {
		return math.NaN(), false
	}
	return v.num, true
}

// Label returns the categorical payload; ok is false for non-categorical values.
func (v Value) Label() (s string, ok bool) {
	if v.kind != Categorical {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean payload; ok is false for non-boolean values.
func (v Value) Bool() (b, ok bool) {
	if v.kind != Boolean {
		return false, false
	}
	return v.b, true
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Numeric:
		return v.num == o.num
	case Categorical:
		return v.str == o.str
	case Boolean:
		return v.b == o.b
	}
	return true
}

// String renders the value the way it is written to text files. Missing
// renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case Numeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Categorical:
		return v.str
	case Boolean:
		return strconv.FormatBool(v.b)
	}
	return ""
}
