package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	x := []float64{13, 10, 1000, 12, 11}
	assert.Equal(t, 11.0, Percentile(x, 25))
	assert.Equal(t, 13.0, Percentile(x, 75))
	assert.Equal(t, 12.0, Median(x))
	assert.Equal(t, 10.0, Percentile(x, 0))
	assert.Equal(t, 1000.0, Percentile(x, 100))

	assert.InDelta(t, 1.75, Percentile([]float64{1, 2, 3, 4}, 25), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestPercentileDoesNotReorderInput(t *testing.T) {
	x := []float64{3, 1, 2}
	Percentile(x, 50)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestMeanVarianceStd(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(x))
	assert.InDelta(t, 4.0, Variance(x), 1e-12)
	assert.InDelta(t, 2.0, Std(x), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Variance([]float64{1e9, 1e9, 1e9}))
}

func TestPresentDropsNaN(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, Present([]float64{1, math.NaN(), 3}))
}

func TestDetectOutliers(t *testing.T) {
	mask, b, err := DetectOutliers([]float64{10, 12, 11, 13, 1000}, DefaultFence)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, true}, mask)
	assert.Equal(t, 11.0, b.Q1)
	assert.Equal(t, 13.0, b.Q3)
	assert.Equal(t, 2.0, b.IQR)
	assert.Equal(t, 8.0, b.Lower)
	assert.Equal(t, 16.0, b.Upper)
}

func TestDetectOutliersMissingNeverFlagged(t *testing.T) {
	nan := math.NaN()
	mask, _, err := DetectOutliers([]float64{nan, 5, 6, 7, nan, -400}, DefaultFence)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false, false, false, true}, mask)
}

func TestDetectOutliersBoundsAreInclusive(t *testing.T) {
	b := Bounds{Lower: 8, Upper: 16}
	assert.Equal(t, []bool{false, false, true, true}, OutlierMask([]float64{8, 16, 7.99, 16.01}, b))
}

func TestIQRBoundsNoObservations(t *testing.T) {
	_, err := IQRBounds([]float64{math.NaN(), math.NaN()}, DefaultFence)
	assert.ErrorIs(t, err, ErrNoObservations)
	_, err = IQRBounds(nil, DefaultFence)
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestIQRBoundsOrdering(t *testing.T) {
	cases := [][]float64{
		{1, 2, 3, 4},
		{-5, 100, 3, 3, 3},
		{0.1, 0.1, 0.1, 0.1},
		{7, -2, 19, 4, 4, 11, -30, 2},
	}
	for _, x := range cases {
		b, err := IQRBounds(x, DefaultFence)
		require.NoError(t, err)
		assert.LessOrEqual(t, b.Lower, b.Q1, "%v", x)
		assert.LessOrEqual(t, b.Q1, b.Q3, "%v", x)
		assert.LessOrEqual(t, b.Q3, b.Upper, "%v", x)
	}
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 10}, {3, 10}, {math.NaN(), 10}}
	s := NewStandardScaler()
	out, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 10}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)
	assert.Equal(t, [][]float64{{-1, 0}, {1, 0}, {0, 0}}, out)

	_, err = NewStandardScaler().FitTransform(nil)
	assert.Error(t, err)
}
