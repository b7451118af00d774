// Package model provides supervised regressors behind a small capability
// interface: a Regressor fits training data and returns a Predictor.
package model

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSeed seeds every source of randomness unless overridden.
const DefaultSeed int64 = 42

var (
	ErrEmpty            = errors.New("model: empty training set")
	ErrLengthMismatch   = errors.New("model: X and y length mismatch")
	ErrInconsistentRows = errors.New("model: inconsistent number of features in X rows")
	ErrNonFiniteTarget  = errors.New("model: non-finite target value")
)

// Regressor fits a Predictor from X (n x p) and y (n).
// Missing feature values must be math.NaN().
type Regressor interface {
	Fit(X [][]float64, y []float64) (Predictor, error)
}

// Predictor maps feature rows to numeric estimates.
type Predictor interface {
	Predict(X [][]float64) []float64
}

// RegressorFunc adapts a function to Regressor.
type RegressorFunc func(X [][]float64, y []float64) (Predictor, error)

func (f RegressorFunc) Fit(X [][]float64, y []float64) (Predictor, error) { return f(X, y) }

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(X [][]float64) []float64

func (f PredictorFunc) Predict(X [][]float64) []float64 { return f(X) }

// checkTrainingSet validates shapes and returns the number of features.
func checkTrainingSet(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	if len(y) != len(X) {
		return 0, fmt.Errorf("%w: %d rows, %d targets", ErrLengthMismatch, len(X), len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return 0, fmt.Errorf("%w: row %d has %d, want %d", ErrInconsistentRows, i, len(X[i]), p)
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return 0, fmt.Errorf("%w: row %d", ErrNonFiniteTarget, i)
		}
	}
	return p, nil
}
