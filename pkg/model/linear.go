package model

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/Ryuk2git/econprep/pkg/stats"
)

// DefaultRidge is the penalty added to the normal equations so that
// collinear or constant features still yield a solution.
const DefaultRidge = 1e-8

// LinearRegression fits y = b + w·x by ridge-stabilised least squares.
// Missing feature values are replaced by the training column mean.
type LinearRegression struct {
	Ridge float64
}

// LinearModel is a fitted LinearRegression.
type LinearModel struct {
	W     []float64 // weights
	B     float64   // bias
	means []float64 // fill values for missing features
}

// NewLinearRegression returns a linear regressor; ridge <= 0 selects DefaultRidge.
func NewLinearRegression(ridge float64) *LinearRegression {
	if ridge <= 0 {
		ridge = DefaultRidge
	}
	return &LinearRegression{Ridge: ridge}
}

// Fit solves (AᵀA + λI)β = Aᵀy where A is X with a leading column of ones.
// The intercept is not penalised.
func (m *LinearRegression) Fit(X [][]float64, y []float64) (Predictor, error) {
	p, err := checkTrainingSet(X, y)
	if err != nil {
		return nil, err
	}
	n := len(X)
	means := columnMeans(X, p)

	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			if math.IsNaN(v) {
				v = means[j]
			}
			a.Set(i, j+1, v)
		}
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 1; j <= p; j++ {
		ata.Set(j, j, ata.At(j, j)+m.Ridge)
	}
	var aty mat.VecDense
	aty.MulVec(a.T(), yv)

	var beta mat.VecDense
	if err := beta.SolveVec(&ata, &aty); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
		// ill-conditioned but solved
	}

	lm := &LinearModel{W: make([]float64, p), B: beta.AtVec(0), means: means}
	for j := 0; j < p; j++ {
		lm.W[j] = beta.AtVec(j + 1)
	}
	return lm, nil
}

// Predict returns predictions for rows in X, split across CPU cores.
func (lm *LinearModel) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	pred := make([]float64, len(X))
	var wg sync.WaitGroup

	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		s := w * rowsPerWorker
		e := min(s+rowsPerWorker, len(X))
		if s >= e {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				sum := lm.B
				for j, v := range X[i] {
					if math.IsNaN(v) {
						v = lm.means[j]
					}
					sum += lm.W[j] * v
				}
				pred[i] = sum
			}
		}(s, e)
	}
	wg.Wait()
	return pred
}

// columnMeans averages the present values of each column; all-missing
// columns get 0.
func columnMeans(X [][]float64, p int) []float64 {
	means := make([]float64, p)
	col := make([]float64, 0, len(X))
	for j := 0; j < p; j++ {
		col = col[:0]
		for i := range X {
			col = append(col, X[i][j])
		}
		means[j] = stats.Mean(stats.Present(col))
	}
	return means
}
