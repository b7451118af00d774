package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/dataprep"
	"github.com/Ryuk2git/econprep/pkg/model"
	"github.com/Ryuk2git/econprep/pkg/stats"
)

var (
	// ErrTargetNotNumeric is returned when the target column holds a
	// categorical or boolean value.
	ErrTargetNotNumeric = errors.New("pipeline: target column is not numeric")
	// ErrNoObservations is returned when the target has no present value.
	ErrNoObservations = stats.ErrNoObservations
	ErrNoTarget       = errors.New("pipeline: no target column configured")
	ErrFlagCollision  = errors.New("pipeline: flag column collides with target")
)

// Config names the target and the flag columns added to the output.
type Config struct {
	Target        string
	OutlierColumn string  // default "<target>_outlier"
	ImputedColumn string  // default "<target>_imputed"
	Fence         float64 // IQR multiplier, default 1.5
}

func (c Config) withDefaults() Config {
	if c.OutlierColumn == "" {
		c.OutlierColumn = c.Target + "_outlier"
	}
	if c.ImputedColumn == "" {
		c.ImputedColumn = c.Target + "_imputed"
	}
	if c.Fence <= 0 {
		c.Fence = stats.DefaultFence
	}
	return c
}

func (c Config) validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}
	if c.OutlierColumn == c.Target || c.ImputedColumn == c.Target || c.OutlierColumn == c.ImputedColumn {
		return fmt.Errorf("%w: %q, %q, %q", ErrFlagCollision, c.Target, c.OutlierColumn, c.ImputedColumn)
	}
	return nil
}

// State is what the steps of one run share.
type State struct {
	RunID   string
	Config  Config
	Data    *data.Dataset
	Outlier []bool
	Bounds  stats.Bounds

	Features  []string
	Encoding  *dataprep.Encoding
	Partition dataprep.Partition
	ModelRan  bool

	missingAtStart int
	before         []float64
}

// Imputer replaces outlying and missing target values with regression
// estimates learned from the remaining rows.
type Imputer struct {
	cfg Config
	reg model.Regressor
	log zerolog.Logger
}

func NewImputer(cfg Config, reg model.Regressor, log zerolog.Logger) *Imputer {
	return &Imputer{cfg: cfg.withDefaults(), reg: reg, log: log}
}

// Steps returns the stages Run executes, in order.
func (im *Imputer) Steps() []Step {
	return []Step{
		NewStep("detect", detectStep),
		NewStep("null-and-flag", nullAndFlagStep),
		NewStep("encode", encodeStep),
		NewStep("impute", im.imputeStep),
		NewStep("decode", decodeStep),
	}
}

// Run processes a clone of ds and returns it along with a report. The
// output has the input's rows and columns plus the two flag columns.
func (im *Imputer) Run(ctx context.Context, ds *data.Dataset) (*data.Dataset, *Report, error) {
	if err := im.cfg.validate(); err != nil {
		return nil, nil, err
	}
	s := &State{RunID: newRunID(), Config: im.cfg, Data: ds.Clone()}
	log := im.log.With().Str("run_id", s.RunID).Str("target", im.cfg.Target).Logger()
	log.Info().Int("rows", ds.Len()).Int("columns", len(ds.Names())).Msg("imputation started")

	if err := NewPipeline(log, im.Steps()...).Run(ctx, s); err != nil {
		return nil, nil, err
	}

	rep, err := newReport(s)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Int("outliers", rep.Outliers).
		Int("missing_at_start", rep.MissingAtStart).
		Int("imputed", rep.Imputed).
		Bool("model_ran", rep.ModelRan).
		Float64("lower", rep.Bounds.Lower).
		Float64("upper", rep.Bounds.Upper).
		Msg("imputation finished")
	return s.Data, rep, nil
}

func targetFloats(d *data.Dataset, target string) ([]float64, error) {
	y, err := d.Floats(target)
	if errors.Is(err, data.ErrNotNumeric) {
		return nil, fmt.Errorf("%w: %v", ErrTargetNotNumeric, err)
	}
	return y, err
}

func detectStep(_ context.Context, s *State) error {
	y, err := targetFloats(s.Data, s.Config.Target)
	if err != nil {
		return err
	}
	mask, b, err := stats.DetectOutliers(y, s.Config.Fence)
	if err != nil {
		return fmt.Errorf("target %q: %w", s.Config.Target, err)
	}
	s.Outlier, s.Bounds = mask, b
	s.before = stats.Present(y)
	s.missingAtStart = len(y) - len(s.before)
	return nil
}

func nullAndFlagStep(_ context.Context, s *State) error {
	n := s.Data.Len()
	outFlags := make([]data.Value, n)
	impFlags := make([]data.Value, n)
	for i := 0; i < n; i++ {
		if s.Outlier[i] {
			if err := s.Data.Set(i, s.Config.Target, data.NA()); err != nil {
				return err
			}
		}
		outFlags[i] = data.Flag(s.Outlier[i])
		impFlags[i] = data.Flag(s.Data.At(i, s.Config.Target).IsMissing())
	}
	if err := s.Data.SetColumn(s.Config.OutlierColumn, outFlags); err != nil {
		return err
	}
	return s.Data.SetColumn(s.Config.ImputedColumn, impFlags)
}

func encodeStep(_ context.Context, s *State) error {
	s.Features = dataprep.FeatureColumns(s.Data.Names(), s.Config.Target, s.Config.OutlierColumn, s.Config.ImputedColumn)
	enc, err := dataprep.EncodeCategorical(s.Data, s.Features)
	if err != nil {
		return err
	}
	s.Encoding = enc
	return nil
}

func (im *Imputer) imputeStep(_ context.Context, s *State) error {
	p, ran, err := dataprep.ImputeRegression(s.Data, s.Config.Target, s.Features, im.reg)
	s.Partition, s.ModelRan = p, ran
	if err != nil {
		return err
	}
	if !ran {
		im.log.Warn().
			Int("train", len(p.Train)).
			Int("predict", len(p.Predict)).
			Msg("empty partition, model not fitted")
	}
	return nil
}

func decodeStep(_ context.Context, s *State) error {
	return s.Encoding.Decode(s.Data)
}

func newRunID() string { return uuid.NewString() }
