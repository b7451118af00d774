package inflation

import (
	"errors"
	"fmt"
)

var (
	ErrBaseYearMissing = errors.New("inflation: base year not in series")
	ErrZeroIndex       = errors.New("inflation: zero index value")
	ErrEmptySeries     = errors.New("inflation: no observations")
)

// Row is one output line: the index of a year and the factor that converts
// money of that year into money of the base year.
type Row struct {
	Year   int
	Index  float64
	Factor float64
}

// Factors computes Index(base)/Index(year) for every observation. obs must
// be sorted by year; the first observation of baseYear is the reference.
func Factors(obs []Observation, baseYear int) ([]Row, error) {
	if len(obs) == 0 {
		return nil, ErrEmptySeries
	}
	base, found := 0.0, false
	for _, o := range obs {
		if o.Year == baseYear {
			base, found = o.Index, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %d (series covers %d-%d)", ErrBaseYearMissing, baseYear, obs[0].Year, obs[len(obs)-1].Year)
	}
	rows := make([]Row, len(obs))
	for i, o := range obs {
		if o.Index == 0 {
			return nil, fmt.Errorf("%w: year %d", ErrZeroIndex, o.Year)
		}
		rows[i] = Row{Year: o.Year, Index: o.Index, Factor: base / o.Index}
	}
	return rows, nil
}
