// Package names holds the name statistics model and the frequency,
// classification and popularity logic applied to each pipeline run.
package names

import (
	"fmt"
	"sort"
)

// Gender is the demographic partition a name was counted in.
type Gender string

const (
	Girl   Gender = "girl"
	Boy    Gender = "boy"
	Unisex Gender = "unisex"
)

// ParseGender accepts the canonical values and a few common aliases.
func ParseGender(s string) (Gender, error) {
	switch NormalizeKey(s) {
	case "girl", "girls", "f", "female", "jente", "jenter":
		return Girl, nil
	case "boy", "boys", "m", "male", "gutt", "gutter":
		return Boy, nil
	case "unisex":
		return Unisex, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == Girl || g == Boy || g == Unisex
}

// NameCount is one name's count within a single year.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NamesByYear maps a year to its names, in source order.
type NamesByYear map[string][]NameCount

// Years returns the years in ascending order.
func (n NamesByYear) Years() []string {
	years := make([]string, 0, len(n))
	for y := range n {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Len returns the number of (year, name) entries.
func (n NamesByYear) Len() int {
	total := 0
	for _, counts := range n {
		total += len(counts)
	}
	return total
}

// Length buckets.
const (
	Short  = "short"
	Medium = "medium"
	Long   = "long"
)

// LengthBucket classifies a name by rune count: ≤4 short, ≤7 medium, else long.
func LengthBucket(name string) string {
	n := len([]rune(name))
	switch {
	case n <= 4:
		return Short
	case n <= 7:
		return Medium
	default:
		return Long
	}
}

// ValidLength reports whether s is one of the length buckets.
func ValidLength(s string) bool {
	return s == Short || s == Medium || s == Long
}

// EnrichedName is the externally visible unit of a run. ID is sequential
// within the batch and is not a durable key.
type EnrichedName struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Gender      Gender   `json:"gender"`
	Origin      string   `json:"origin"`
	Meaning     string   `json:"meaning"`
	Popularity  int      `json:"popularity"`
	Length      string   `json:"length"`
	Categories  []string `json:"categories"`
	FirstLetter string   `json:"firstLetter"`
	TotalCount  int      `json:"totalCount"`
	YearsCount  int      `json:"yearsPresent"`
}
