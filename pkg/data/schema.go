package data

// ColumnType is the type of a column inferred from its non-missing values.
type ColumnType uint8

const (
	TypeEmpty ColumnType = iota // only missing values
	TypeNumeric
	TypeCategorical
	TypeBoolean
	TypeMixed
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeCategorical:
		return "categorical"
	case TypeBoolean:
		return "boolean"
	case TypeMixed:
		return "mixed"
	}
	return "empty"
}

// Schema describes the structure of a dataset.
type Schema struct {
	Names []string
	Types []ColumnType
}

// TypeOf returns the inferred type of the named column, TypeEmpty if absent.
func (s Schema) TypeOf(name string) ColumnType {
	for i, n := range s.Names {
		if n == name {
			return s.Types[i]
		}
	}
	return TypeEmpty
}

// Schema infers the column types of d.
func (d *Dataset) Schema() Schema {
	s := Schema{Names: d.Names(), Types: make([]ColumnType, len(d.cols))}
	for j, col := range d.cols {
		s.Types[j] = inferType(col)
	}
	return s
}

func inferType(col []Value) ColumnType {
	t := TypeEmpty
	for _, v := range col {
		var vt ColumnType
		switch v.Kind() {
		case Missing:
			continue
		case Numeric:
			vt = TypeNumeric
		case Categorical:
			vt = TypeCategorical
		case Boolean:
			vt = TypeBoolean
		}
		if t == TypeEmpty {
			t = vt
		} else if t != vt {
			return TypeMixed
		}
	}
	return t
}
