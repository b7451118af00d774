package stats

import (
	"errors"
	"math"
)

// DefaultFence is Tukey's inner fence multiplier.
const DefaultFence = 1.5

// ErrNoObservations is returned when quartiles are requested for a column
// without a single non-missing value.
var ErrNoObservations = errors.New("stats: no non-missing values")

// Bounds holds the quartiles of a column and the inclusive fence pair
// derived from them.
type Bounds struct {
	Q1, Q3 float64
	IQR    float64
	Lower  float64
	Upper  float64
}

// Contains reports whether v lies inside the inclusive fences.
func (b Bounds) Contains(v float64) bool { return v >= b.Lower && v <= b.Upper }

// IQRBounds computes Q1, Q3 and the fences Q1-k*IQR, Q3+k*IQR over the
// non-NaN values of x.
func IQRBounds(x []float64, k float64) (Bounds, error) {
	obs := Present(x)
	if len(obs) == 0 {
		return Bounds{}, ErrNoObservations
	}
	q1 := Percentile(obs, 25)
	q3 := Percentile(obs, 75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - k*iqr,
		Upper: q3 + k*iqr,
	}, nil
}

// OutlierMask flags every present value outside b. NaN is never an outlier.
func OutlierMask(x []float64, b Bounds) []bool {
	mask := make([]bool, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		mask[i] = !b.Contains(v)
	}
	return mask
}

// DetectOutliers combines IQRBounds and OutlierMask.
func DetectOutliers(x []float64, k float64) ([]bool, Bounds, error) {
	b, err := IQRBounds(x, k)
	if err != nil {
		return nil, Bounds{}, err
	}
	return OutlierMask(x, b), b, nil
}
