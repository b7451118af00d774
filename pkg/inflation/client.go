// Package inflation turns an economic price index series into per-year
// inflation factors relative to a base year.
package inflation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL   = "http://api.worldbank.org/v2"
	DefaultCountry   = "USA"
	DefaultIndicator = "NY.GDP.DEFL.ZS" // GDP deflator; FP.CPI.TOTL for CPI
	DefaultPerPage   = 1000
	DefaultTimeout   = 30 * time.Second
)

// ErrAPI wraps error messages returned in a World Bank response body.
var ErrAPI = errors.New("inflation: world bank api error")

// Query selects one indicator series for one country.
type Query struct {
	Country   string
	Indicator string
	Start     int
	End       int
}

// Observation is one year of the index series.
type Observation struct {
	Year  int
	Index float64
}

// Client fetches indicator series from the World Bank v2 API.
type Client struct {
	BaseURL string
	PerPage int
	HTTP    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		PerPage: DefaultPerPage,
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// page metadata; the API sends some of these as strings
type meta struct {
	Page    flexInt `json:"page"`
	Pages   flexInt `json:"pages"`
	PerPage flexInt `json:"per_page"`
	Total   flexInt `json:"total"`
}

type record struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type apiMessage struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("inflation: bad integer %s", b)
	}
	*f = flexInt(n)
	return nil
}

// Fetch downloads every page of the series and returns the observations
// with a value, sorted by year.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Observation, error) {
	var out []Observation
	for page, pages := 1, 1; page <= pages; page++ {
		m, recs, err := c.fetchPage(ctx, q, page)
		if err != nil {
			return nil, err
		}
		pages = int(m.Pages)
		dropped := 0
		for _, r := range recs {
			if r.Value == nil {
				dropped++
				continue
			}
			year, err := strconv.Atoi(strings.TrimSpace(r.Date))
			if err != nil {
				dropped++
				continue
			}
			out = append(out, Observation{Year: year, Index: *r.Value})
		}
		c.log.Debug().
			Int("page", page).
			Int("pages", pages).
			Int("records", len(recs)).
			Int("dropped", dropped).
			Msg("page fetched")
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (c *Client) pageURL(q Query, page int) string {
	v := url.Values{}
	v.Set("date", fmt.Sprintf("%d:%d", q.Start, q.End))
	v.Set("format", "json")
	v.Set("per_page", strconv.Itoa(c.PerPage))
	v.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		c.BaseURL, url.PathEscape(q.Country), url.PathEscape(q.Indicator), v.Encode())
}

func (c *Client) fetchPage(ctx context.Context, q Query, page int) (meta, []record, error) {
	u := c.pageURL(q, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return meta{}, nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return meta{}, nil, fmt.Errorf("inflation: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta{}, nil, fmt.Errorf("inflation: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return meta{}, nil, fmt.Errorf("inflation: get %s: status %d", u, resp.StatusCode)
	}
	return decodePage(body)
}

// decodePage parses a `[meta, records]` body or surfaces the
// `[{"message": [...]}]` error form.
func decodePage(body []byte) (meta, []record, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return meta{}, nil, fmt.Errorf("inflation: decode response: %w", err)
	}
	if len(parts) == 0 {
		return meta{}, nil, fmt.Errorf("inflation: empty response")
	}
	var head struct {
		Message []apiMessage `json:"message"`
	}
	if err := json.Unmarshal(parts[0], &head); err == nil && len(head.Message) > 0 {
		msgs := make([]string, len(head.Message))
		for i, m := range head.Message {
			msgs[i] = fmt.Sprintf("%s %s: %s", m.ID, m.Key, m.Value)
		}
		return meta{}, nil, fmt.Errorf("%w: %s", ErrAPI, strings.Join(msgs, "; "))
	}
	if len(parts) < 2 {
		return meta{}, nil, fmt.Errorf("inflation: response has no data element")
	}
	var m meta
	if err := json.Unmarshal(parts[0], &m); err != nil {
		return meta{}, nil, fmt.Errorf("inflation: decode meta: %w", err)
	}
	var recs []record
	if err := json.Unmarshal(parts[1], &recs); err != nil {
		return meta{}, nil, fmt.Errorf("inflation: decode records: %w", err)
	}
	return m, recs, nil
}
