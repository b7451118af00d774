package dataprep

import (
	"errors"
	"fmt"
	"math"

	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/model"
)

// ErrBadEstimate is returned when a predictor yields the wrong number of
// estimates or a non-finite one.
var ErrBadEstimate = errors.New("dataprep: predictor returned an unusable estimate")

// Partition splits row indices by whether the target is observed.
type Partition struct {
	Train   []int
	Predict []int
}

// SplitByTarget puts rows with a present target in Train and rows with a
// NaN target in Predict, both in row order.
func SplitByTarget(target []float64) Partition {
	var p Partition
	for i, v := range target {
		if math.IsNaN(v) {
			p.Predict = append(p.Predict, i)
		} else {
			p.Train = append(p.Train, i)
		}
	}
	return p
}

// Degenerate reports whether either side is empty, in which case no model
// may be fitted.
func (p Partition) Degenerate() bool { return len(p.Train) == 0 || len(p.Predict) == 0 }

// ImputeRegression fits reg on the rows of d whose target is present and
// writes its estimates into the target of the remaining rows. Features must
// already be numeric. It reports whether the model ran; a degenerate
// partition leaves d untouched.
func ImputeRegression(d *data.Dataset, target string, features []string, reg model.Regressor) (Partition, bool, error) {
	y, err := d.Floats(target)
	if err != nil {
		return Partition{}, false, err
	}
	p := SplitByTarget(y)
	if p.Degenerate() {
		return p, false, nil
	}

	xTrain, err := FeatureSelect(d, features, p.Train)
	if err != nil {
		return p, false, err
	}
	yTrain := make([]float64, len(p.Train))
	for i, r := range p.Train {
		yTrain[i] = y[r]
	}
	xPredict, err := FeatureSelect(d, features, p.Predict)
	if err != nil {
		return p, false, err
	}

	predictor, err := reg.Fit(xTrain, yTrain)
	if err != nil {
		return p, false, fmt.Errorf("dataprep: fit: %w", err)
	}
	est := predictor.Predict(xPredict)
	if len(est) != len(p.Predict) {
		return p, true, fmt.Errorf("%w: got %d estimates for %d rows", ErrBadEstimate, len(est), len(p.Predict))
	}
	for i, r := range p.Predict {
		if math.IsNaN(est[i]) || math.IsInf(est[i], 0) {
			return p, true, fmt.Errorf("%w: row %d estimate %v", ErrBadEstimate, r, est[i])
		}
	}
	for i, r := range p.Predict {
		if err := d.Set(r, target, data.Num(est[i])); err != nil {
			return p, true, err
		}
	}
	return p, true, nil
}
