package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price.png")
	c := Comparison{
		Title:   "Price",
		Target:  "Price",
		Before:  []float64{10, 12, math.NaN(), 13, 1000},
		After:   []float64{10, 12, 11.5, 13, 11.8},
		Imputed: []bool{false, false, true, false, true},
	}
	require.NoError(t, Save(c, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestNewNeedsValues(t *testing.T) {
	_, err := New(Comparison{Before: []float64{math.NaN()}, After: []float64{1}})
	require.ErrorIs(t, err, ErrNoValues)

	p, err := New(Comparison{Before: []float64{1, 2, 3}, After: []float64{1, 2, 3}})
	require.NoError(t, err)
	assert.NotNil(t, p)
}
