// CLAUDE:SUMMARY Per-run frequency table (totals, years present), batch-relative popularity score and name enrichment.
package names

import (
	"math"
	"sort"
	"strings"
)

// NameYearCount is one decoded (name, year, count) observation.
type NameYearCount struct {
	Name  string
	Year  string
	Count int
}

// Flatten lists the observations of byYear, skipping zero counts.
func Flatten(byYear NamesByYear) []NameYearCount {
	out := make([]NameYearCount, 0, byYear.Len())
	for _, year := range byYear.Years() {
		for _, nc := range byYear[year] {
			if nc.Count <= 0 {
				continue
			}
			out = append(out, NameYearCount{Name: nc.Name, Year: year, Count: nc.Count})
		}
	}
	return out
}

// Aggregate is the cross-year tally of one name.
type Aggregate struct {
	Name         string
	Counts       map[string]int
	Total        int
	YearsPresent map[string]struct{}
}

// Frequencies is the frequency table of a single run, keyed by NormalizeKey.
// Each run builds its own; nothing is shared between runs.
type Frequencies map[string]*Aggregate

// Tally builds the frequency table for byYear.
func Tally(byYear NamesByYear) Frequencies {
	freqs := make(Frequencies)
	for _, obs := range Flatten(byYear) {
		key := NormalizeKey(obs.Name)
		if key == "" {
			continue
		}
		agg, ok := freqs[key]
		if !ok {
			name := strings.TrimSpace(obs.Name)
			if strings.ToUpper(name) == name {
				name = DisplayName(name)
			}
			agg = &Aggregate{
				Name:         name,
				Counts:       make(map[string]int),
				YearsPresent: make(map[string]struct{}),
			}
			freqs[key] = agg
		}
		agg.Counts[obs.Year] += obs.Count
		agg.Total += obs.Count
		agg.YearsPresent[obs.Year] = struct{}{}
	}
	return freqs
}

// Sorted returns the aggregates by total descending, ties by name.
func (f Frequencies) Sorted() []*Aggregate {
	out := make([]*Aggregate, 0, len(f))
	for _, a := range f {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MaxTotal returns the largest total in the table.
func (f Frequencies) MaxTotal() int {
	max := 0
	for _, a := range f {
		if a.Total > max {
			max = a.Total
		}
	}
	return max
}

// Popularity rescales total against the batch maximum into [1, 100].
// Scores are relative to the batch: a different batch changes every score.
func Popularity(total, max int) int {
	if max <= 0 {
		return 1
	}
	p := int(math.Round(float64(total) / float64(max) * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}

// Enrich classifies and scores every aggregate of f. IDs are assigned in
// Sorted order starting at 1.
func Enrich(f Frequencies, gender Gender, ref *Reference, rules []Rule) []EnrichedName {
	max := f.MaxTotal()
	sorted := f.Sorted()
	out := make([]EnrichedName, 0, len(sorted))
	for i, a := range sorted {
		origin, meaning := ref.OriginMeaning(a.Name, gender)
		out = append(out, EnrichedName{
			ID:          i + 1,
			Name:        a.Name,
			Gender:      gender,
			Origin:      origin,
			Meaning:     meaning,
			Popularity:  Popularity(a.Total, max),
			Length:      LengthBucket(a.Name),
			Categories:  Classify(Input{Name: a.Name, Gender: gender, YearsPresent: len(a.YearsPresent)}, ref, rules),
			FirstLetter: FirstLetter(a.Name),
			TotalCount:  a.Total,
			YearsCount:  len(a.YearsPresent),
		})
	}
	return out
}
