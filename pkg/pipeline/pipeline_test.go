package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ryuk2git/econprep/pkg/data"
	"github.com/Ryuk2git/econprep/pkg/model"
)

func column(vals ...any) []data.Value {
	out := make([]data.Value, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			out[i] = data.NA()
		case int:
			out[i] = data.Num(float64(x))
		case float64:
			out[i] = data.Num(x)
		case string:
			out[i] = data.Cat(x)
		}
	}
	return out
}

func frame(t *testing.T, names []string, cols ...[]data.Value) *data.Dataset {
	t.Helper()
	d, err := data.New()
	require.NoError(t, err)
	for i, name := range names {
		require.NoError(t, d.SetColumn(name, cols[i]))
	}
	return d
}

func forest(t *testing.T) model.Regressor {
	t.Helper()
	reg, err := model.New(model.KindForest, model.Params{Seed: model.DefaultSeed, Trees: 20})
	require.NoError(t, err)
	return reg
}

func neverCalled(t *testing.T) model.Regressor {
	return model.RegressorFunc(func(X [][]float64, y []float64) (model.Predictor, error) {
		t.Errorf("regressor fitted on %d rows", len(X))
		return nil, errors.New("unexpected fit")
	})
}

func TestPipelineStepOrder(t *testing.T) {
	im := NewImputer(Config{Target: "Price"}, neverCalled(t), zerolog.Nop())
	var names []string
	for _, s := range im.Steps() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"detect", "null-and-flag", "encode", "impute", "decode"}, names)
}

func TestPipelineStopsOnFirstError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	p := NewPipeline(zerolog.Nop(),
		NewStep("a", func(context.Context, *State) error { ran = append(ran, "a"); return nil }),
		NewStep("b", func(context.Context, *State) error { ran = append(ran, "b"); return boom }),
		NewStep("c", func(context.Context, *State) error { ran = append(ran, "c"); return nil }),
	)
	err := p.Run(context.Background(), &State{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, []string{"a", "b", "c"}, p.Steps())
}

func TestPipelineHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := frame(t, []string{"f", "Price"}, column(1, 2, 3), column(1, 2, nil))
	_, _, err := NewImputer(Config{Target: "Price"}, neverCalled(t), zerolog.Nop()).Run(ctx, d)
	require.ErrorIs(t, err, context.Canceled)
}

func TestImputerReplacesOutlier(t *testing.T) {
	d := frame(t, []string{"f", "Price"},
		column(1, 2, 3, 4, 5),
		column(10, 12, 11, 13, 1000),
	)
	out, rep, err := NewImputer(Config{Target: "Price"}, forest(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Outliers)
	assert.Equal(t, 1, rep.Imputed)
	assert.True(t, rep.ModelRan)
	assert.NotEmpty(t, rep.RunID)

	est, ok := out.At(4, "Price").Float()
	require.True(t, ok)
	assert.NotEqual(t, 1000.0, est)
	assert.False(t, math.IsNaN(est))

	flagged, _ := out.At(4, "Price_outlier").Bool()
	assert.True(t, flagged)
	imputed, _ := out.At(4, "Price_imputed").Bool()
	assert.True(t, imputed)
	for i := 0; i < 4; i++ {
		flagged, _ := out.At(i, "Price_outlier").Bool()
		assert.False(t, flagged, "row %d", i)
	}

	// the caller's dataset is untouched
	orig, _ := d.At(4, "Price").Float()
	assert.Equal(t, 1000.0, orig)
	assert.False(t, d.Has("Price_outlier"))
}

func TestImputerKeepsTrainRows(t *testing.T) {
	d := frame(t, []string{"f", "t"},
		column(1, 2, 3, 4),
		column(10, 20, 30, nil),
	)
	out, rep, err := NewImputer(Config{Target: "t"}, forest(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Outliers)
	assert.Equal(t, 1, rep.MissingAtStart)
	assert.Equal(t, 3, rep.Train)
	assert.Equal(t, 1, rep.Predict)

	got, err := out.Floats("t")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, got[:3])
	assert.False(t, math.IsNaN(got[3]))
	assert.False(t, math.IsInf(got[3], 0))

	imputed, _ := out.At(3, "t_imputed").Bool()
	assert.True(t, imputed)
	assert.Equal(t, []string{"f", "t", "t_outlier", "t_imputed"}, out.Names())
}

func TestImputerEmptyPredictSkipsModel(t *testing.T) {
	d := frame(t, []string{"Color", "Price"},
		column("red", "blue", "red", "green"),
		column(1, 2, 3, 4),
	)
	out, rep, err := NewImputer(Config{Target: "Price"}, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.False(t, rep.ModelRan)
	assert.Equal(t, 0, rep.Imputed)

	in, _ := d.Column("Price")
	got, _ := out.Column("Price")
	assert.Equal(t, in, got)
	colors, _ := out.Column("Color")
	assert.Equal(t, column("red", "blue", "red", "green"), colors)
}

func TestImputerSingleObservation(t *testing.T) {
	d := frame(t, []string{"f", "Price"}, column(1, 2), column(5, nil))
	out, rep, err := NewImputer(Config{Target: "Price"}, forest(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, rep.ModelRan)
	got, _ := out.At(1, "Price").Float()
	assert.Equal(t, 5.0, got)

	empty := frame(t, []string{"f", "Price"}, column(1, 2), column(nil, nil))
	_, _, err = NewImputer(Config{Target: "Price"}, neverCalled(t), zerolog.Nop()).Run(context.Background(), empty)
	require.ErrorIs(t, err, ErrNoObservations)
}

func TestImputerDecodesCategoricalFeatures(t *testing.T) {
	d := frame(t, []string{"Region", "Size", "Price"},
		column("north", "south", "north", "east", "south", nil),
		column(50, 80, 55, 60, 85, 70),
		column(100, 160, 110, nil, 170, 140),
	)
	out, rep, err := NewImputer(Config{Target: "Price"}, forest(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Region"}, rep.Encoded)

	in, _ := d.Column("Region")
	got, _ := out.Column("Region")
	assert.Equal(t, in, got)
	size, _ := out.Column("Size")
	assert.Equal(t, column(50, 80, 55, 60, 85, 70), size)
}

func TestImputerRejectsBadTarget(t *testing.T) {
	d := frame(t, []string{"f", "Price"}, column(1, 2), column("cheap", 3))
	_, _, err := NewImputer(Config{Target: "Price"}, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.ErrorIs(t, err, ErrTargetNotNumeric)

	_, _, err = NewImputer(Config{Target: "Missing"}, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.ErrorIs(t, err, data.ErrUnknownColumn)

	_, _, err = NewImputer(Config{}, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.ErrorIs(t, err, ErrNoTarget)

	_, _, err = NewImputer(Config{Target: "Price", OutlierColumn: "x", ImputedColumn: "x"}, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.ErrorIs(t, err, ErrFlagCollision)
}

func TestImputerCustomFlagColumns(t *testing.T) {
	d := frame(t, []string{"f", "y"}, column(1, 2, 3), column(1, 2, 3))
	cfg := Config{Target: "y", OutlierColumn: "is_outlier", ImputedColumn: "is_imputed", Fence: 3}
	out, rep, err := NewImputer(cfg, neverCalled(t), zerolog.Nop()).Run(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "y", "is_outlier", "is_imputed"}, out.Names())
	assert.InDelta(t, 1.5-3*1, rep.Bounds.Lower, 1e-12)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{3, math.NaN(), 1, 2})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 3.0, s.Max)

	assert.Equal(t, Summary{}, Summarize([]float64{math.NaN()}))
	assert.Equal(t, Summary{Count: 1, Mean: 7, Min: 7, Median: 7, Max: 7}, Summarize([]float64{7}))
}

func TestEvaluateLinear(t *testing.T) {
	n := 20
	f := make([]data.Value, n)
	y := make([]data.Value, n)
	for i := 0; i < n; i++ {
		f[i] = data.Num(float64(i))
		y[i] = data.Num(3*float64(i) + 1)
	}
	y[5] = data.NA()
	d := frame(t, []string{"f", "y"}, f, y)

	im := NewImputer(Config{Target: "y"}, model.NewLinearRegression(0), zerolog.Nop())
	ev, err := im.Evaluate(context.Background(), d, 4, model.DefaultSeed)
	require.NoError(t, err)
	require.Len(t, ev.Folds, 4)
	assert.Equal(t, n-1, ev.Mean.N)
	assert.InDelta(t, 0, ev.Mean.RMSE, 1e-6)
	assert.InDelta(t, 1, ev.Mean.R2, 1e-6)

	_, err = im.Evaluate(context.Background(), d, 1, model.DefaultSeed)
	require.Error(t, err)
}
