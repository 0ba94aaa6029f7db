package jsonstat

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hazyhaar/namestat/pkg/names"
)

const emmaNora = `{
  "version": "2.0",
  "class": "dataset",
  "id": ["Kjonn", "Tid", "Fornavn"],
  "size": [1, 2, 2],
  "dimension": {
    "Kjonn": {"label": "kjønn", "category": {"index": {"2": 0}, "label": {"2": "Jenter"}}},
    "Tid": {"label": "år", "category": {"index": {"2013": 0, "2014": 1}, "label": {"2013": "2013", "2014": "2014"}}},
    "Fornavn": {"label": "fornavn", "category": {"index": {"2Emma": 0, "2Nora": 1}, "label": {"2Emma": "Emma", "2Nora": "Nora"}}}
  },
  "value": [10, 5, 8, 12]
}`

func parse(t *testing.T, body string) *Dataset {
	t.Helper()
	var ds Dataset
	if err := json.Unmarshal([]byte(body), &ds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &ds
}

func TestValueIndex(t *testing.T) {
	// 2 years × 3 names, time-major: cells are laid out
	// [t0n0 t0n1 t0n2 t1n0 t1n1 t1n2].
	want := [][]int{{0, 1, 2}, {3, 4, 5}}
	for ti := range want {
		for ni := range want[ti] {
			if got := ValueIndex(ti, ni, 3); got != want[ti][ni] {
				t.Errorf("ValueIndex(%d, %d, 3) = %d, want %d", ti, ni, got, want[ti][ni])
			}
		}
	}
	// Reversing the multiplication (nameIndex*timeCount + timeIndex) gives 2
	// for (0, 1); the correct offset is 1.
	if ValueIndex(0, 1, 3) != 1 || ValueIndex(1, 0, 3) != 3 {
		t.Error("offset formula inverted")
	}
}

func TestRowMajorOffset(t *testing.T) {
	tests := []struct {
		sizes, indices []int
		want           int
	}{
		{[]int{2, 3}, []int{1, 2}, 5},
		{[]int{1, 2, 3}, []int{0, 1, 0}, 3},
		{[]int{2, 3, 4}, []int{1, 2, 3}, 23},
		{[]int{5}, []int{4}, 4},
	}
	for _, tt := range tests {
		if got := RowMajorOffset(tt.sizes, tt.indices); got != tt.want {
			t.Errorf("RowMajorOffset(%v, %v) = %d, want %d", tt.sizes, tt.indices, got, tt.want)
		}
	}
}

func TestDecode_EmmaNora(t *testing.T) {
	got, err := Decode(parse(t, emmaNora), DefaultLayout)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := names.NamesByYear{
		"2013": {{Name: "Emma", Count: 10}, {Name: "Nora", Count: 5}},
		"2014": {{Name: "Emma", Count: 8}, {Name: "Nora", Count: 12}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}

func TestDecode_TwoByThree(t *testing.T) {
	ds := parse(t, `{
	  "dimension": {
	    "Tid": {"category": {"index": ["2020", "2021"]}},
	    "Fornavn": {"category": {"index": ["A", "B", "C"], "label": {"A": "Ada", "B": "Bo", "C": "Cy"}}}
	  },
	  "value": [1, 2, 3, 4, 5, 6]
	}`)
	got, err := Decode(ds, DefaultLayout)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := names.NamesByYear{
		"2020": {{Name: "Ada", Count: 1}, {Name: "Bo", Count: 2}, {Name: "Cy", Count: 3}},
		"2021": {{Name: "Ada", Count: 4}, {Name: "Bo", Count: 5}, {Name: "Cy", Count: 6}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}

func TestDecode_DropsZeroAndNull(t *testing.T) {
	ds := parse(t, `{
	  "dimension": {
	    "Tid": {"category": {"index": {"2013": 0}}},
	    "Fornavn": {"category": {"index": {"Emma": 0, "Nora": 1, "Ada": 2, "Liv": 3, "Oda": 4}}}
	  },
	  "value": [4, 0, null, -3, 0.2]
	}`)
	got, err := Decode(ds, DefaultLayout)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := []names.NameCount{{Name: "Emma", Count: 4}}; !reflect.DeepEqual(got["2013"], want) {
		t.Errorf("2013 = %v, want %v", got["2013"], want)
	}
}

func TestDecode_SparseValues(t *testing.T) {
	ds := parse(t, `{
	  "dimension": {
	    "Tid": {"category": {"index": {"2013": 0, "2014": 1}}},
	    "Fornavn": {"category": {"index": {"Emma": 0, "Nora": 1}}}
	  },
	  "value": {"1": 7, "2": 3, "3": 0}
	}`)
	got, err := Decode(ds, DefaultLayout)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := names.NamesByYear{
		"2013": {{Name: "Nora", Count: 7}},
		"2014": {{Name: "Emma", Count: 3}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}

func TestDecode_SparseTrailingCellsMissing(t *testing.T) {
	ds := parse(t, `{
	  "size": [2, 2],
	  "dimension": {
	    "Tid": {"category": {"index": {"2013": 0, "2014": 1}}},
	    "Fornavn": {"category": {"index": {"Emma": 0, "Nora": 1}}}
	  },
	  "value": {"0": 9}
	}`)
	if len(ds.Value) != 4 {
		t.Fatalf("cells = %d, want 4", len(ds.Value))
	}
	got, err := Decode(ds, DefaultLayout)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got["2013"]) != 1 || len(got["2014"]) != 0 {
		t.Errorf("Decode = %v", got)
	}
}

func TestDecode_SparseOffsetOutOfRange(t *testing.T) {
	for name, value := range map[string]string{
		"huge offset":     `{"1000000000000000000": 1}`,
		"one past end":    `{"4": 1}`,
		"negative offset": `{"-1": 1}`,
		"not a number":    `{"x": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			body := `{
			  "dimension": {
			    "Tid": {"category": {"index": {"2013": 0, "2014": 1}}},
			    "Fornavn": {"category": {"index": {"Emma": 0, "Nora": 1}}}
			  },
			  "value": ` + value + `}`
			var ds Dataset
			if err := json.Unmarshal([]byte(body), &ds); err == nil {
				t.Errorf("Unmarshal accepted %s, cells = %d", value, len(ds.Value))
			}
		})
	}
}

func TestDecode_TooManyCells(t *testing.T) {
	var ds Dataset
	err := json.Unmarshal([]byte(`{"size": [100000, 100000], "value": {"0": 1}}`), &ds)
	if err == nil {
		t.Error("expected error for oversized dataset")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"missing time dimension": `{"dimension": {"Fornavn": {"category": {"index": {"A": 0}}}}, "value": [1]}`,
		"missing name dimension": `{"dimension": {"Tid": {"category": {"index": {"2013": 0}}}}, "value": [1]}`,
		"empty index":            `{"dimension": {"Tid": {"category": {"index": {}}}, "Fornavn": {"category": {"index": {"A": 0}}}}, "value": [1]}`,
		"offset out of range":    `{"dimension": {"Tid": {"category": {"index": {"2013": 3}}}, "Fornavn": {"category": {"index": {"A": 0}}}}, "value": [1]}`,
		"duplicate offset":       `{"dimension": {"Tid": {"category": {"index": {"2013": 0}}}, "Fornavn": {"category": {"index": {"A": 0, "B": 0}}}}, "value": [1, 2]}`,
		"short value array":      `{"dimension": {"Tid": {"category": {"index": {"2013": 0, "2014": 1}}}, "Fornavn": {"category": {"index": {"A": 0}}}}, "value": [1]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(parse(t, body), DefaultLayout)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want *DecodeError", err)
			}
		})
	}

	if _, err := Decode(nil, DefaultLayout); err == nil {
		t.Error("expected error for nil dataset")
	}
}

func TestCategory_Codes(t *testing.T) {
	ds := parse(t, emmaNora)
	if got := ds.Dimension["Fornavn"].Category.Codes(); !reflect.DeepEqual(got, []string{"2Emma", "2Nora"}) {
		t.Errorf("Codes = %v", got)
	}
	c := ds.Dimension["Fornavn"].Category
	if c.DisplayLabel("2Nora") != "Nora" || c.DisplayLabel("unknown") != "unknown" {
		t.Error("DisplayLabel fallback broken")
	}
}
