package jsonstat

import (
	"fmt"
	"math"

	"github.com/hazyhaar/namestat/pkg/names"
)

// DecodeError reports a dataset whose dimensions or values cannot be mapped
// back to a year × name matrix.
type DecodeError struct {
	Dimension string
	Reason    string
}

func (e *DecodeError) Error() string {
	if e.Dimension == "" {
		return "decode json-stat: " + e.Reason
	}
	return fmt.Sprintf("decode json-stat: dimension %q: %s", e.Dimension, e.Reason)
}

// Layout names the two dimensions the decoder reads. Time is the outer
// (slower-varying) dimension of the value array, Name the inner one.
type Layout struct {
	Time string
	Name string
}

// DefaultLayout matches Statistics Norway's first-name tables.
var DefaultLayout = Layout{Time: "Tid", Name: "Fornavn"}

// RowMajorOffset returns the linear offset of indices in a row-major array
// with the given dimension sizes. The first dimension varies slowest.
func RowMajorOffset(sizes, indices []int) int {
	offset := 0
	for i, size := range sizes {
		offset = offset*size + indices[i]
	}
	return offset
}

// ValueIndex is the offset of (timeIndex, nameIndex) in a Time × Name value
// array: timeIndex*nameCount + nameIndex. The outer size never contributes
// to a row-major offset, hence the zero.
func ValueIndex(timeIndex, nameIndex, nameCount int) int {
	return RowMajorOffset([]int{0, nameCount}, []int{timeIndex, nameIndex})
}

// Decode reads every (year, name) cell of ds and returns the non-zero counts
// grouped per year, in the order of the name dimension. A missing, zero or
// negative cell means the name is absent that year and is dropped.
func Decode(ds *Dataset, layout Layout) (names.NamesByYear, error) {
	if ds == nil {
		return nil, &DecodeError{Reason: "empty dataset"}
	}
	timeDim, err := ds.category(layout.Time)
	if err != nil {
		return nil, err
	}
	nameDim, err := ds.category(layout.Name)
	if err != nil {
		return nil, err
	}

	timeCount := len(timeDim.Index)
	nameCount := len(nameDim.Index)
	if need := timeCount * nameCount; len(ds.Value) < need {
		return nil, &DecodeError{Reason: fmt.Sprintf("value array has %d cells, want %d", len(ds.Value), need)}
	}

	byYear := make(names.NamesByYear, timeCount)
	nameCodes := nameDim.Codes()
	for _, yearCode := range timeDim.Codes() {
		ti := timeDim.Index[yearCode]
		counts := make([]names.NameCount, 0, nameCount)
		for _, nameCode := range nameCodes {
			v := ds.Value[ValueIndex(ti, nameDim.Index[nameCode], nameCount)]
			if v == nil {
				continue
			}
			n := int(math.Round(*v))
			if n <= 0 {
				continue
			}
			counts = append(counts, names.NameCount{Name: nameDim.DisplayLabel(nameCode), Count: n})
		}
		byYear[yearCode] = counts
	}
	return byYear, nil
}

// category returns the validated category of dimension id. Offsets must be
// unique and within [0, len(index)).
func (ds *Dataset) category(id string) (*Category, error) {
	dim, ok := ds.Dimension[id]
	if !ok || dim == nil {
		return nil, &DecodeError{Dimension: id, Reason: "missing"}
	}
	c := &dim.Category
	if len(c.Index) == 0 {
		return nil, &DecodeError{Dimension: id, Reason: "empty category index"}
	}
	seen := make([]bool, len(c.Index))
	for code, i := range c.Index {
		if i < 0 || i >= len(c.Index) || seen[i] {
			return nil, &DecodeError{Dimension: id, Reason: fmt.Sprintf("bad offset %d for %q", i, code)}
		}
		seen[i] = true
	}
	return c, nil
}
