// CLAUDE:SUMMARY Single-request client for Statistics Norway's table API: builds the json-stat2 query for a gender partition and years.
package ssb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hazyhaar/namestat/pkg/jsonstat"
	"github.com/hazyhaar/namestat/pkg/names"
)

// DefaultURL is the first-name table of Statistics Norway.
const DefaultURL = "https://data.ssb.no/api/v0/no/table/10501"

// SourceUnavailableError reports a failed request. Status is 0 when the
// transport itself failed.
type SourceUnavailableError struct {
	URL    string
	Status int
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("source %s unavailable: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("source %s unavailable: HTTP %d", e.URL, e.Status)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Config describes the table and the dimension codes of the query.
type Config struct {
	URL              string
	GenderDimension  string
	MeasureDimension string
	Measure          string
	TimeDimension    string
	// Partitions maps a gender to its code in GenderDimension.
	Partitions   map[names.Gender]string
	MaxBodyBytes int64
}

// DefaultConfig returns the codes used by Statistics Norway.
func DefaultConfig() Config {
	return Config{
		URL:              DefaultURL,
		GenderDimension:  "Kjonn",
		MeasureDimension: "ContentsCode",
		Measure:          "Personer",
		TimeDimension:    "Tid",
		Partitions:       map[names.Gender]string{names.Boy: "1", names.Girl: "2"},
		MaxBodyBytes:     32 << 20,
	}
}

// Query is the declarative request body of the table API.
type Query struct {
	Query    []QueryItem    `json:"query"`
	Response ResponseFormat `json:"response"`
}

// QueryItem selects values of one dimension.
type QueryItem struct {
	Code      string    `json:"code"`
	Selection Selection `json:"selection"`
}

// Selection is an item filter.
type Selection struct {
	Filter string   `json:"filter"`
	Values []string `json:"values"`
}

// ResponseFormat asks for a given body format.
type ResponseFormat struct {
	Format string `json:"format"`
}

// Client issues one request per call. It never retries.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client. A nil httpClient uses a client without timeout;
// callers bound requests through the context.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	return &Client{cfg: cfg, http: httpClient}
}

// URL returns the table URL the client posts to.
func (c *Client) URL() string { return c.cfg.URL }

// BuildQuery returns the request body for gender and years.
func (c *Client) BuildQuery(gender names.Gender, years []string) (*Query, error) {
	code, ok := c.cfg.Partitions[gender]
	if !ok {
		return nil, fmt.Errorf("no source partition for gender %q", gender)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no years requested")
	}
	item := func(dim string, values ...string) QueryItem {
		return QueryItem{Code: dim, Selection: Selection{Filter: "item", Values: values}}
	}
	return &Query{
		Query: []QueryItem{
			item(c.cfg.GenderDimension, code),
			item(c.cfg.MeasureDimension, c.cfg.Measure),
			item(c.cfg.TimeDimension, years...),
		},
		Response: ResponseFormat{Format: "json-stat2"},
	}, nil
}

// FetchNames posts the query for gender and years and decodes the json-stat2
// body. Cancelling ctx aborts the request.
func (c *Client) FetchNames(ctx context.Context, gender names.Gender, years []string) (*jsonstat.Dataset, error) {
	q, err := c.BuildQuery(gender, years)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{URL: c.cfg.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &SourceUnavailableError{URL: c.cfg.URL, Status: resp.StatusCode}
	}

	var ds jsonstat.Dataset
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes)).Decode(&ds); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &jsonstat.DecodeError{Reason: fmt.Sprintf("invalid json-stat2 body: %v", err)}
	}
	return &ds, nil
}
