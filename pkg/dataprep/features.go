package dataprep

import (
	"fmt"

	"github.com/Ryuk2git/econprep/pkg/data"
)

// FeatureColumns returns names minus the excluded ones, order preserved.
func FeatureColumns(names []string, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := skip[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// FeatureSelect extracts the given rows and columns of an encoded dataset
// as a float matrix. Missing cells become NaN.
func FeatureSelect(d *data.Dataset, columns []string, rows []int) ([][]float64, error) {
	cols := make([][]float64, len(columns))
	for j, name := range columns {
		f, err := d.Floats(name)
		if err != nil {
			return nil, fmt.Errorf("dataprep: feature %q: %w", name, err)
		}
		cols[j] = f
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		selected := make([]float64, len(columns))
		for j := range columns {
			selected[j] = cols[j][r]
		}
		out[i] = selected
	}
	return out, nil
}
