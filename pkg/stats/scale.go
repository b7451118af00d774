package stats

import (
	"errors"
	"math"
)

// StandardScaler centers each column on its mean and scales it to unit
// variance. NaN entries are ignored while fitting and mapped to 0 (the
// column mean) by Transform.
type StandardScaler struct {
	Mean []float64
	Std  []float64
	fit  bool
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("scaler: empty X")
	}
	c := len(X[0])
	s.Mean = make([]float64, c)
	s.Std = make([]float64, c)
	col := make([]float64, 0, len(X))
	for j := 0; j < c; j++ {
		col = col[:0]
		for i := range X {
			if v := X[i][j]; !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		s.Mean[j] = Mean(col)
		s.Std[j] = Std(col)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	s.fit = true
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if !s.fit {
		return X
	}
	Y := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, len(s.Mean))
		for j := range row {
			v := X[i][j]
			if math.IsNaN(v) {
				continue
			}
			row[j] = (v - s.Mean[j]) / s.Std[j]
		}
		Y[i] = row
	}
	return Y
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X), nil
}
