// CLAUDE:SUMMARY Embedded hand-authored fallback dataset, shaped like decoded live data, used when the statistics source fails.
package pipeline

import (
	_ "embed"
	"fmt"

	"github.com/hazyhaar/namestat/pkg/names"
	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var embeddedFallback []byte

// FallbackSeries is one name's counts aligned with Fallback.Years.
type FallbackSeries struct {
	Name   string `yaml:"name"`
	Counts []int  `yaml:"counts"`
}

// Fallback is a small fixed dataset covering a handful of well-known names.
type Fallback struct {
	Version string                            `yaml:"version"`
	Years   []string                          `yaml:"years"`
	Names   map[names.Gender][]FallbackSeries `yaml:"names"`
}

// DefaultFallback returns the fallback dataset compiled into the binary.
func DefaultFallback() *Fallback {
	fb, err := ParseFallback(embeddedFallback)
	if err != nil {
		panic(fmt.Sprintf("embedded fallback.yaml: %v", err))
	}
	return fb
}

// ParseFallback decodes and validates a fallback dataset.
func ParseFallback(data []byte) (*Fallback, error) {
	var fb Fallback
	if err := yaml.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("parse fallback: %w", err)
	}
	if len(fb.Years) == 0 {
		return nil, fmt.Errorf("fallback: no years")
	}
	for g, series := range fb.Names {
		for _, s := range series {
			if len(s.Counts) != len(fb.Years) {
				return nil, fmt.Errorf("fallback: %s %s has %d counts for %d years", g, s.Name, len(s.Counts), len(fb.Years))
			}
		}
	}
	return &fb, nil
}

// Candidates returns the fallback names of gender in file order.
func (f *Fallback) Candidates(gender names.Gender) []string {
	series := f.Names[gender]
	out := make([]string, 0, len(series))
	for _, s := range series {
		out = append(out, s.Name)
	}
	return out
}

// NamesByYear returns the dataset for gender in the decoder's output shape,
// names in file order.
func (f *Fallback) NamesByYear(gender names.Gender) names.NamesByYear {
	byYear := make(names.NamesByYear, len(f.Years))
	for i, year := range f.Years {
		counts := make([]names.NameCount, 0, len(f.Names[gender]))
		for _, s := range f.Names[gender] {
			if s.Counts[i] == 0 {
				continue
			}
			counts = append(counts, names.NameCount{Name: s.Name, Count: s.Counts[i]})
		}
		byYear[year] = counts
	}
	return byYear
}
