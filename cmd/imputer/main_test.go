package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const houses = `Region,Size,Price
north,50,100
south,80,160
north,55,110
east,60,NA
south,85,170
north,52,9999
east,62,125
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunWritesFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(in, []byte(houses), 0o600))
	out := filepath.Join(dir, "clean.csv")
	png := filepath.Join(dir, "price.png")

	stdout, err := execute(t, "run", "-i", in, "-t", "Price", "-o", out, "--trees", "10", "--plot", png)
	require.NoError(t, err)
	assert.Contains(t, stdout, "outliers 1, imputed 2")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Region,Size,Price,Price_outlier,Price_imputed", lines[0])
	assert.Equal(t, "north,50,100,No,No", lines[1])
	assert.True(t, strings.HasPrefix(lines[4], "east,60,"))
	assert.True(t, strings.HasSuffix(lines[4], ",No,Yes"))
	assert.True(t, strings.HasSuffix(lines[6], ",Yes,Yes"))
	est, err := strconv.ParseFloat(strings.Split(lines[6], ",")[2], 64)
	require.NoError(t, err)
	assert.Less(t, est, 1000.0)

	_, err = os.Stat(png)
	require.NoError(t, err)
}

func TestRunXLSXAndModels(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(in, []byte(houses), 0o600))
	for _, m := range []string{"tree", "linear", "knn"} {
		out := filepath.Join(dir, m+".xlsx")
		_, err := execute(t, "run", "-i", in, "-t", "Price", "-o", out, "-m", m)
		require.NoError(t, err, m)
		_, err = os.Stat(out)
		require.NoError(t, err, m)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(in, []byte(houses), 0o600))

	_, err := execute(t, "run", "-i", in, "-t", "Price")
	require.Error(t, err)
	_, err = execute(t, "run", "-i", in, "-t", "Region", "-o", filepath.Join(dir, "x.csv"))
	require.Error(t, err)
	_, err = execute(t, "run", "-i", in, "-t", "Price", "-o", filepath.Join(dir, "x.csv"), "-m", "svm")
	require.Error(t, err)
	_, err = execute(t, "run", "-i", filepath.Join(dir, "absent.csv"), "-t", "Price", "-o", filepath.Join(dir, "x.csv"))
	require.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "houses.csv")
	require.NoError(t, os.WriteFile(in, []byte(houses), 0o600))

	stdout, err := execute(t, "evaluate", "-i", in, "-t", "Price", "-m", "linear", "-k", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fold")
	assert.Contains(t, stdout, "mean")
}
