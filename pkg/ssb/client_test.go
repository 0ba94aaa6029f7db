package ssb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/hazyhaar/namestat/pkg/jsonstat"
	"github.com/hazyhaar/namestat/pkg/names"
)

const body = `{
  "version": "2.0",
  "class": "dataset",
  "id": ["Tid", "Fornavn"],
  "size": [1, 2],
  "dimension": {
    "Tid": {"category": {"index": {"2013": 0}}},
    "Fornavn": {"category": {"index": {"Emma": 0, "Nora": 1}}}
  },
  "value": [10, 5]
}`

func testClient(url string) *Client {
	cfg := DefaultConfig()
	cfg.URL = url
	return NewClient(cfg, nil)
}

func TestFetchNames(t *testing.T) {
	var got Query
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode query: %v", err)
		}
		w.Write([]byte(body))
	}))
	defer ts.Close()

	ds, err := testClient(ts.URL).FetchNames(context.Background(), names.Girl, []string{"2013", "2014"})
	if err != nil {
		t.Fatalf("FetchNames: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(ds.Value) != 2 || *ds.Value[0] != 10 {
		t.Errorf("unexpected values %v", ds.Value)
	}

	want := Query{
		Query: []QueryItem{
			{Code: "Kjonn", Selection: Selection{Filter: "item", Values: []string{"2"}}},
			{Code: "ContentsCode", Selection: Selection{Filter: "item", Values: []string{"Personer"}}},
			{Code: "Tid", Selection: Selection{Filter: "item", Values: []string{"2013", "2014"}}},
		},
		Response: ResponseFormat{Format: "json-stat2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("query = %+v, want %+v", got, want)
	}
}

func TestFetchNames_NonSuccessNoRetry(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).FetchNames(context.Background(), names.Boy, []string{"2013"})
	var su *SourceUnavailableError
	if !errors.As(err, &su) {
		t.Fatalf("err = %v, want *SourceUnavailableError", err)
	}
	if su.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", su.Status)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retries)", calls)
	}
}

func TestFetchNames_TransportError(t *testing.T) {
	_, err := testClient("http://127.0.0.1:1").FetchNames(context.Background(), names.Boy, []string{"2013"})
	var su *SourceUnavailableError
	if !errors.As(err, &su) {
		t.Fatalf("err = %v, want *SourceUnavailableError", err)
	}
	if su.Status != 0 {
		t.Errorf("status = %d, want 0", su.Status)
	}
}

func TestFetchNames_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).FetchNames(context.Background(), names.Girl, []string{"2013"})
	var de *jsonstat.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *jsonstat.DecodeError", err)
	}
}

func TestFetchNames_SparseOffsetOutOfRange(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "dimension": {
		    "Tid": {"category": {"index": {"2013": 0}}},
		    "Fornavn": {"category": {"index": {"Emma": 0}}}
		  },
		  "value": {"1000000000000000000": 1}
		}`))
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).FetchNames(context.Background(), names.Girl, []string{"2013"})
	var de *jsonstat.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *jsonstat.DecodeError", err)
	}
}

func TestFetchNames_Cancelled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(ts.URL).FetchNames(ctx, names.Girl, []string{"2013"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestBuildQuery_Errors(t *testing.T) {
	c := testClient("http://example.invalid")
	if _, err := c.BuildQuery(names.Unisex, []string{"2013"}); err == nil {
		t.Error("expected error for gender without partition")
	}
	if _, err := c.BuildQuery(names.Girl, nil); err == nil {
		t.Error("expected error for empty years")
	}
}
