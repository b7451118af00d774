package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflationCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"page":1,"pages":1,"per_page":1000,"total":3},[`+
			`{"date":"2022","value":118.0},{"date":"2021","value":null},{"date":"2020","value":100.0}]]`)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "factors.csv")
	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--base-url", srv.URL, "--start", "2020", "--end", "2022", "-o", out, "--precision", "2", "--log-level", "error"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "wrote 2 rows")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Year,Index,Inflation_Factor\n2020,100.00,1.18\n2022,118.00,1.00\n", string(raw))
}

func TestInflationCommandRejectsBaseYear(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--start", "2020", "--end", "2022", "--base-year", "1999"})
	require.Error(t, cmd.Execute())
}
