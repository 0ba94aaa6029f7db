// CLAUDE:SUMMARY json-stat2 dataset model with tolerant decoding of category indexes and sparse value arrays.
package jsonstat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Dataset is a json-stat2 response body.
type Dataset struct {
	Version   string                `json:"version"`
	Class     string                `json:"class"`
	Label     string                `json:"label"`
	Source    string                `json:"source"`
	Updated   string                `json:"updated"`
	ID        []string              `json:"id"`
	Size      []int                 `json:"size"`
	Dimension map[string]*Dimension `json:"dimension"`
	Value     Values                `json:"value"`
}

// Dimension is one labeled axis of the dataset.
type Dimension struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// Category maps codes to their offset along the dimension (Index) and to a
// display string (Label).
type Category struct {
	Index map[string]int    `json:"index"`
	Label map[string]string `json:"label,omitempty"`
}

// UnmarshalJSON accepts both forms of "index" allowed by json-stat2: an
// object {code: offset} or an array of codes in offset order.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw struct {
		Index json.RawMessage   `json:"index"`
		Label map[string]string `json:"label"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Label = raw.Label
	c.Index = nil

	if len(raw.Index) == 0 || string(raw.Index) == "null" {
		return nil
	}
	var byCode map[string]int
	if err := json.Unmarshal(raw.Index, &byCode); err == nil {
		c.Index = byCode
		return nil
	}
	var codes []string
	if err := json.Unmarshal(raw.Index, &codes); err != nil {
		return fmt.Errorf("category index: %w", err)
	}
	c.Index = make(map[string]int, len(codes))
	for i, code := range codes {
		c.Index[code] = i
	}
	return nil
}

// Codes returns the category codes ordered by their offset.
func (c *Category) Codes() []string {
	codes := make([]string, 0, len(c.Index))
	for code := range c.Index {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return c.Index[codes[i]] < c.Index[codes[j]] })
	return codes
}

// DisplayLabel returns the label for code, or the code itself when the
// dimension carries no label for it.
func (c *Category) DisplayLabel(code string) string {
	if l, ok := c.Label[code]; ok && l != "" {
		return l
	}
	return code
}

// Values is the flat value array. Missing cells are nil.
type Values []*float64

// MaxCells bounds the number of cells a dataset may declare.
const MaxCells = 1 << 24

// UnmarshalJSON decodes the dataset and its value array. The sparse value
// form {"offset": value} is expanded to the dataset's cell count; offsets
// outside it are rejected.
func (ds *Dataset) UnmarshalJSON(data []byte) error {
	type plain Dataset
	var raw struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ds = Dataset(raw.plain)
	ds.Value = nil

	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	var dense []*float64
	if err := json.Unmarshal(raw.Value, &dense); err == nil {
		ds.Value = dense
		return nil
	}
	var sparse map[string]*float64
	if err := json.Unmarshal(raw.Value, &sparse); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	cells, err := ds.cellCount()
	if err != nil {
		return err
	}
	out := make(Values, cells)
	for k, val := range sparse {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= cells {
			return fmt.Errorf("value: offset %q outside %d cells", k, cells)
		}
		out[i] = val
	}
	ds.Value = out
	return nil
}

// cellCount is the product of the declared sizes, or of the dimension
// index lengths when no sizes are given.
func (ds *Dataset) cellCount() (int, error) {
	sizes := ds.Size
	if len(sizes) == 0 {
		for _, dim := range ds.Dimension {
			if dim != nil {
				sizes = append(sizes, len(dim.Category.Index))
			}
		}
	}
	if len(sizes) == 0 {
		return 0, nil
	}
	cells := 1
	for _, n := range sizes {
		if n < 0 || (n > 0 && cells > MaxCells/n) {
			return 0, fmt.Errorf("value: dataset declares more than %d cells", MaxCells)
		}
		cells *= n
	}
	return cells, nil
}
