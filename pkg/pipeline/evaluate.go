package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/dataprep"
	"github.com/Ryuk2git/econprep/pkg/loader"
	"github.com/Ryuk2git/econprep/pkg/model"
)

// Score holds the regression metrics of one held-out fold.
type Score struct {
	N    int
	RMSE float64
	MAE  float64
	R2   float64
}

// Evaluation is the outcome of Imputer.Evaluate.
type Evaluation struct {
	RunID string
	Folds []Score
	Mean  Score
}

// Evaluate cross-validates the imputer's regressor on the rows whose target
// survives outlier nulling, with features encoded exactly as Run encodes
// them. ds is not modified.
func (im *Imputer) Evaluate(ctx context.Context, ds *data.Dataset, folds int, seed int64) (*Evaluation, error) {
	if err := im.cfg.validate(); err != nil {
		return nil, err
	}
	s := &State{RunID: newRunID(), Config: im.cfg, Data: ds.Clone()}
	log := im.log.With().Str("run_id", s.RunID).Str("target", im.cfg.Target).Logger()
	steps := im.Steps()[:3]
	if err := NewPipeline(log, steps...).Run(ctx, s); err != nil {
		return nil, err
	}

	y, err := s.Data.Floats(s.Config.Target)
	if err != nil {
		return nil, err
	}
	p := dataprep.SplitByTarget(y)
	X, err := dataprep.FeatureSelect(s.Data, s.Features, p.Train)
	if err != nil {
		return nil, err
	}
	yTrain := make([]float64, len(p.Train))
	for i, r := range p.Train {
		yTrain[i] = y[r]
	}

	split, err := loader.KFoldSplit(len(X), folds, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{RunID: s.RunID}
	for f := range split {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		train := loader.TrainIndices(split, f)
		pred, err := im.reg.Fit(rows(X, train), pick(yTrain, train))
		if err != nil {
			return nil, fmt.Errorf("pipeline: fold %d: %w", f, err)
		}
		truth := pick(yTrain, split[f])
		est := pred.Predict(rows(X, split[f]))
		sc := Score{
			N:    len(truth),
			RMSE: model.RMSE(truth, est),
			MAE:  model.MAE(truth, est),
			R2:   model.R2(truth, est),
		}
		ev.Folds = append(ev.Folds, sc)
		log.Debug().Int("fold", f).Float64("rmse", sc.RMSE).Float64("mae", sc.MAE).Float64("r2", sc.R2).Msg("fold scored")
	}
	for _, sc := range ev.Folds {
		ev.Mean.N += sc.N
		ev.Mean.RMSE += sc.RMSE
		ev.Mean.MAE += sc.MAE
		ev.Mean.R2 += sc.R2
	}
	k := float64(len(ev.Folds))
	ev.Mean.RMSE /= k
	ev.Mean.MAE /= k
	ev.Mean.R2 /= k
	log.Info().Int("folds", len(ev.Folds)).Float64("rmse", ev.Mean.RMSE).Float64("r2", ev.Mean.R2).Msg("evaluation finished")
	return ev, nil
}

func rows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, r := range idx {
		out[i] = X[r]
	}
	return out
}

func pick(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
