// CLAUDE:SUMMARY Versioned curated reference dataset (name -> origin/meaning/tags plus suffix and diacritic lists), embedded YAML with file override.
package names

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var embeddedReference []byte

// Entry is the curated knowledge about one name. It is an approximation,
// not authoritative linguistic data.
type Entry struct {
	Origin  string   `yaml:"origin"`
	Meaning string   `yaml:"meaning"`
	Tags    []string `yaml:"tags"`
}

// OriginPattern infers origin and meaning from a name ending.
type OriginPattern struct {
	Suffix  string `yaml:"suffix"`
	Origin  string `yaml:"origin"`
	Meaning string `yaml:"meaning"`
}

// Reference is the single source for every curated list used by the
// classifier and the origin/meaning lookup.
type Reference struct {
	Version               string                     `yaml:"version"`
	DefaultOrigin         string                     `yaml:"default_origin"`
	DefaultMeaning        string                     `yaml:"default_meaning"`
	Diacritics            []string                   `yaml:"diacritics"`
	NordicSuffixes        []string                   `yaml:"nordic_suffixes"`
	VikingSuffixes        map[Gender][]string        `yaml:"viking_suffixes"`
	InternationalSuffixes map[Gender][]string        `yaml:"international_suffixes"`
	OriginPatterns        map[Gender][]OriginPattern `yaml:"origin_patterns"`
	Entries               map[string]Entry           `yaml:"entries"`
}

// DefaultReference returns the reference dataset compiled into the binary.
func DefaultReference() *Reference {
	ref, err := ParseReference(embeddedReference)
	if err != nil {
		panic(fmt.Sprintf("embedded reference.yaml: %v", err))
	}
	return ref
}

// LoadReference reads a reference dataset from path. An empty path returns
// the embedded dataset.
func LoadReference(path string) (*Reference, error) {
	if path == "" {
		return DefaultReference(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference %s: %w", path, err)
	}
	ref, err := ParseReference(data)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	return ref, nil
}

// ParseReference decodes a YAML reference dataset and normalizes its keys.
func ParseReference(data []byte) (*Reference, error) {
	var ref Reference
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	if ref.Version == "" {
		return nil, fmt.Errorf("reference: missing version")
	}

	entries := make(map[string]Entry, len(ref.Entries))
	for name, e := range ref.Entries {
		entries[NormalizeKey(name)] = e
	}
	ref.Entries = entries

	ref.Diacritics = normalizeAll(ref.Diacritics)
	ref.NordicSuffixes = normalizeAll(ref.NordicSuffixes)
	for g, list := range ref.VikingSuffixes {
		ref.VikingSuffixes[g] = normalizeAll(list)
	}
	for g, list := range ref.InternationalSuffixes {
		ref.InternationalSuffixes[g] = normalizeAll(list)
	}
	// Longest suffix wins.
	for g, patterns := range ref.OriginPatterns {
		for i := range patterns {
			patterns[i].Suffix = NormalizeKey(patterns[i].Suffix)
		}
		sort.SliceStable(patterns, func(i, j int) bool {
			return len([]rune(patterns[i].Suffix)) > len([]rune(patterns[j].Suffix))
		})
		ref.OriginPatterns[g] = patterns
	}

	if ref.DefaultOrigin == "" {
		ref.DefaultOrigin = "Unknown"
	}
	if ref.DefaultMeaning == "" {
		ref.DefaultMeaning = "Meaning not yet documented"
	}
	return &ref, nil
}

// Lookup returns the curated entry for name.
func (r *Reference) Lookup(name string) (Entry, bool) {
	e, ok := r.Entries[NormalizeKey(name)]
	if !ok {
		e, ok = r.Entries[FoldAccents(name)]
	}
	return e, ok
}

// HasTag reports whether the curated entry for name carries tag.
func (r *Reference) HasTag(name, tag string) bool {
	e, ok := r.Lookup(name)
	if !ok {
		return false
	}
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OriginMeaning resolves origin and meaning: exact entry first, then the
// gender's suffix patterns, then the defaults.
func (r *Reference) OriginMeaning(name string, gender Gender) (origin, meaning string) {
	if e, ok := r.Lookup(name); ok && e.Origin != "" {
		meaning = e.Meaning
		if meaning == "" {
			meaning = r.DefaultMeaning
		}
		return e.Origin, meaning
	}
	key := NormalizeKey(name)
	for _, p := range r.OriginPatterns[gender] {
		if p.Suffix != "" && strings.HasSuffix(key, p.Suffix) {
			return p.Origin, p.Meaning
		}
	}
	return r.DefaultOrigin, r.DefaultMeaning
}

func normalizeAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if k := NormalizeKey(s); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
