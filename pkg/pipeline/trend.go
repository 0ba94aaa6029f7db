package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hazyhaar/namestat/pkg/names"
)

// TrendRow holds one year's value per candidate name. It marshals flat as
// {"year": "2013", "Emma": 491, ...}.
type TrendRow struct {
	Year   string
	Values map[string]float64
}

func (r TrendRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Values)+1)
	for name, v := range r.Values {
		m[name] = v
	}
	m["year"] = r.Year
	return json.Marshal(m)
}

// TrendTable is the year-indexed chart dataset.
type TrendTable []TrendRow

// BuildTrend returns one row per year of byYear with a value for every
// candidate, 0 when the name is absent that year.
func BuildTrend(byYear names.NamesByYear, candidates []string) TrendTable {
	table := make(TrendTable, 0, len(byYear))
	for _, year := range byYear.Years() {
		counts := make(map[string]int, len(byYear[year]))
		for _, nc := range byYear[year] {
			counts[names.NormalizeKey(nc.Name)] += nc.Count
		}
		row := TrendRow{Year: year, Values: make(map[string]float64, len(candidates))}
		for _, c := range candidates {
			row.Values[c] = float64(counts[names.NormalizeKey(c)])
		}
		table = append(table, row)
	}
	return table
}

// TopNames returns the n names with the largest totals.
func TopNames(f names.Frequencies, n int) []string {
	sorted := f.Sorted()
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, len(sorted))
	for i, a := range sorted {
		out[i] = a.Name
	}
	return out
}

// Place is one ranked name.
type Place struct {
	Name  string
	Value float64
}

// Ranking is the top-N view of one year. It marshals as
// {"year": "2013", "#1": "Emma", "Emma_value": 491, ...}.
type Ranking struct {
	Year   string
	Places []Place
}

func (r Ranking) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 2*len(r.Places)+1)
	m["year"] = r.Year
	for i, p := range r.Places {
		m[fmt.Sprintf("#%d", i+1)] = p.Name
		m[p.Name+"_value"] = p.Value
	}
	return json.Marshal(m)
}

// DefaultTopN is the ranking depth used for trending views.
const DefaultTopN = 10

// Project ranks candidates per year by value descending and keeps the first
// topN. Equal values are ordered alphabetically so rankings are stable
// across runs.
func Project(table TrendTable, candidates []string, topN int) []Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}
	out := make([]Ranking, 0, len(table))
	for _, row := range table {
		places := make([]Place, 0, len(candidates))
		for _, c := range candidates {
			places = append(places, Place{Name: c, Value: row.Values[c]})
		}
		sort.SliceStable(places, func(i, j int) bool {
			if places[i].Value != places[j].Value {
				return places[i].Value > places[j].Value
			}
			return places[i].Name < places[j].Name
		})
		if len(places) > topN {
			places = places[:topN]
		}
		out = append(out, Ranking{Year: row.Year, Places: places})
	}
	return out
}
