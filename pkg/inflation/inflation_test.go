package inflation

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// worldBank serves pages of records and remembers the queries it saw.
type worldBank struct {
	pages   [][]string
	queries []string
	status  int
	body    string
}

func (wb *worldBank) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wb.queries = append(wb.queries, r.URL.RequestURI())
	if wb.status != 0 {
		w.WriteHeader(wb.status)
		return
	}
	if wb.body != "" {
		fmt.Fprint(w, wb.body)
		return
	}
	page := 1
	fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
	recs := wb.pages[page-1]
	fmt.Fprintf(w, `[{"page":%d,"pages":%d,"per_page":"2","total":%d,"sourceid":"2"},[%s]]`,
		page, len(wb.pages), 2*len(wb.pages), strings.Join(recs, ","))
}

func rec(year string, value string) string {
	return fmt.Sprintf(`{"indicator":{"id":"NY.GDP.DEFL.ZS","value":"GDP deflator"},"country":{"id":"US","value":"United States"},"countryiso3code":"USA","date":%q,"value":%s,"unit":"","obs_status":"","decimal":0}`, year, value)
}

func newServer(t *testing.T, wb *worldBank) *Client {
	t.Helper()
	srv := httptest.NewServer(wb)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, zerolog.Nop())
}

var usa = Query{Country: "USA", Indicator: "NY.GDP.DEFL.ZS", Start: 2019, End: 2022}

func TestFetchPaginatesAndSorts(t *testing.T) {
	wb := &worldBank{pages: [][]string{
		{rec("2022", "120"), rec("2021", "null")},
		{rec("2020", "100"), rec("2019", "96")},
	}}
	c := newServer(t, wb)
	c.PerPage = 2

	obs, err := c.Fetch(context.Background(), usa)
	require.NoError(t, err)
	assert.Equal(t, []Observation{{2019, 96}, {2020, 100}, {2022, 120}}, obs)

	require.Len(t, wb.queries, 2)
	assert.True(t, strings.HasPrefix(wb.queries[0], "/country/USA/indicator/NY.GDP.DEFL.ZS?"))
	assert.Contains(t, wb.queries[0], "date=2019%3A2022")
	assert.Contains(t, wb.queries[0], "format=json")
	assert.Contains(t, wb.queries[0], "per_page=2")
	assert.Contains(t, wb.queries[1], "page=2")
}

func TestFetchNoData(t *testing.T) {
	wb := &worldBank{body: `[{"page":1,"pages":0,"per_page":1000,"total":0},null]`}
	obs, err := newServer(t, wb).Fetch(context.Background(), usa)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestFetchAPIError(t *testing.T) {
	wb := &worldBank{body: `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`}
	_, err := newServer(t, wb).Fetch(context.Background(), usa)
	require.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "Invalid value")
}

func TestFetchHTTPStatus(t *testing.T) {
	wb := &worldBank{status: http.StatusBadGateway}
	_, err := newServer(t, wb).Fetch(context.Background(), usa)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchMalformed(t *testing.T) {
	wb := &worldBank{body: `{"not":"an array"}`}
	_, err := newServer(t, wb).Fetch(context.Background(), usa)
	require.Error(t, err)
}

func TestFetchCancelled(t *testing.T) {
	wb := &worldBank{pages: [][]string{{rec("2022", "1")}}}
	c := newServer(t, wb)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, usa)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFactors(t *testing.T) {
	obs := []Observation{{2020, 100}, {2021, 110}, {2022, 125}}
	rows, err := Factors(obs, 2022)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.InDelta(t, 1.25, rows[0].Factor, 1e-12)
	assert.InDelta(t, 125.0/110, rows[1].Factor, 1e-12)
	assert.Equal(t, 1.0, rows[2].Factor)

	rows, err = Factors(obs, 2020)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rows[0].Factor)
	assert.InDelta(t, 0.8, rows[2].Factor, 1e-12)

	_, err = Factors(obs, 1999)
	require.ErrorIs(t, err, ErrBaseYearMissing)
	_, err = Factors([]Observation{{2020, 0}, {2022, 1}}, 2022)
	require.ErrorIs(t, err, ErrZeroIndex)
	_, err = Factors(nil, 2022)
	require.ErrorIs(t, err, ErrEmptySeries)
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1.25", Number(1.25, -1))
	assert.Equal(t, "1", Number(1, -1))
	assert.Equal(t, "1.250", Number(1.25, 3))
	assert.Equal(t, "0.33", Number(1.0/3, 2))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{2021, 100, 1.2}, {2022, 120, 1}}
	require.NoError(t, WriteCSV(&buf, rows, -1))
	assert.Equal(t, "Year,Index,Inflation_Factor\n2021,100,1.2\n2022,120,1\n", buf.String())
}

func TestConverterWritesFiles(t *testing.T) {
	wb := &worldBank{pages: [][]string{{rec("2021", "100"), rec("2022", "125")}}}
	c := newServer(t, wb)
	dir := t.TempDir()

	conv := NewConverter(c, Query{Country: "USA", Indicator: "NY.GDP.DEFL.ZS", Start: 2021, End: 2022}, zerolog.Nop())
	conv.Output = filepath.Join(dir, "inflation_factors.csv")
	rows, err := conv.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	raw, err := os.ReadFile(conv.Output)
	require.NoError(t, err)
	assert.Equal(t, "Year,Index,Inflation_Factor\n2021,100,1.25\n2022,125,1\n", string(raw))

	conv.Output = filepath.Join(dir, "inflation_factors.xlsx")
	conv.Precision = 2
	_, err = conv.Run(context.Background())
	require.NoError(t, err)
	f, err := excelize.OpenFile(conv.Output)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows("Inflation")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Header, got[0])
	assert.Equal(t, []string{"2021", "100", "1.25"}, got[1])

	conv.Output = filepath.Join(dir, "inflation_factors.txt")
	_, err = conv.Run(context.Background())
	require.Error(t, err)

	conv.BaseYear = 1990
	_, err = conv.Run(context.Background())
	require.ErrorIs(t, err, ErrBaseYearMissing)
}
