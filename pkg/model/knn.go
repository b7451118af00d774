package model

import (
	"runtime"
	"sort"
	"sync"

	"github.com/Ryuk2git/econprep/pkg/stats"
)

// KNN regresses on the mean target of the K nearest training rows.
// Features are standardised on the training set before distances are
// taken; missing values sit at the column mean.
type KNN struct {
	K int
}

// KNNModel is a fitted KNN.
type KNNModel struct {
	k      int
	scaler *stats.StandardScaler
	X      [][]float64
	y      []float64
}

// NewKNN creates and returns a new KNN regressor.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the scaled training data and targets.
func (m *KNN) Fit(X [][]float64, y []float64) (Predictor, error) {
	if _, err := checkTrainingSet(X, y); err != nil {
		return nil, err
	}
	scaler := stats.NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}
	return &KNNModel{
		k:      min(max(m.K, 1), len(X)),
		scaler: scaler,
		X:      scaled,
		y:      append([]float64(nil), y...),
	}, nil
}

// Predict finds the K nearest neighbours of each row in parallel.
func (m *KNNModel) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	scaled := m.scaler.Transform(X)
	out := make([]float64, len(X))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.predictSingle(scaled[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// predictSingle keeps a small sorted slice of the nearest rows seen so far.
// Ties keep the earlier training row.
func (m *KNNModel) predictSingle(xi []float64) float64 {
	type neighbour struct {
		d float64
		v float64
	}
	nbrs := make([]neighbour, 0, m.k+1)
	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		if len(nbrs) == m.k && d >= nbrs[len(nbrs)-1].d {
			continue
		}
		pos := sort.Search(len(nbrs), func(a int) bool { return nbrs[a].d > d })
		nbrs = append(nbrs, neighbour{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = neighbour{d: d, v: m.y[j]}
		if len(nbrs) > m.k {
			nbrs = nbrs[:m.k]
		}
	}
	sum := 0.0
	for _, n := range nbrs {
		sum += n.v
	}
	return sum / float64(len(nbrs))
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
