package pipeline

import (
	mstats "github.com/aclements/go-moremath/stats"

	"github.com/Ryuk2git/econprep/pkg/stats"
)

// Summary describes the present values of a column.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	Max    float64
}

// Summarize ignores NaN values. An all-missing input gives a zero Summary.
func Summarize(x []float64) Summary {
	obs := stats.Present(x)
	if len(obs) == 0 {
		return Summary{}
	}
	s := mstats.Sample{Xs: obs}
	s.Sort()
	lo, hi := s.Bounds()
	sum := Summary{
		Count:  len(obs),
		Mean:   s.Mean(),
		Min:    lo,
		Median: s.Quantile(0.5),
		Max:    hi,
	}
	if len(obs) > 1 {
		sum.StdDev = s.StdDev()
	}
	return sum
}

// Report describes one imputation run.
type Report struct {
	RunID          string
	Target         string
	OutlierColumn  string
	ImputedColumn  string
	Rows           int
	MissingAtStart int
	Outliers       int
	Imputed        int // rows whose target was written by the model
	Train          int
	Predict        int
	ModelRan       bool
	Bounds         stats.Bounds
	Encoded        []string // feature columns that were label-encoded
	Before         Summary  // present target values of the input
	After          Summary
}

func newReport(s *State) (*Report, error) {
	after, err := s.Data.Floats(s.Config.Target)
	if err != nil {
		return nil, err
	}
	r := &Report{
		RunID:          s.RunID,
		Target:         s.Config.Target,
		OutlierColumn:  s.Config.OutlierColumn,
		ImputedColumn:  s.Config.ImputedColumn,
		Rows:           s.Data.Len(),
		MissingAtStart: s.missingAtStart,
		Train:          len(s.Partition.Train),
		Predict:        len(s.Partition.Predict),
		ModelRan:       s.ModelRan,
		Bounds:         s.Bounds,
		Before:         Summarize(s.before),
		After:          Summarize(after),
	}
	for _, o := range s.Outlier {
		if o {
			r.Outliers++
		}
	}
	if s.ModelRan {
		r.Imputed = r.Predict
	}
	if s.Encoding != nil {
		r.Encoded = append([]string(nil), s.Encoding.Columns...)
	}
	return r, nil
}
