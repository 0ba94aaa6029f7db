package names

import "strings"

// Categories assigned by the classifier.
const (
	CategoryClassic       = "classic"
	CategoryModern        = "modern"
	CategoryNordic        = "nordic"
	CategoryViking        = "viking"
	CategoryBiblical      = "biblical"
	CategoryInternational = "international"
	CategoryNature        = "nature"
	CategoryGeneral       = "general"
)

// AllCategories lists every category the classifier can emit, in rule order.
var AllCategories = []string{
	CategoryClassic, CategoryModern, CategoryNordic, CategoryViking,
	CategoryBiblical, CategoryInternational, CategoryNature, CategoryGeneral,
}

// Persistence thresholds in distinct years present.
const (
	ClassicMinYears = 8
	ModernMaxYears  = 3
)

// Input is what a rule sees about one name.
type Input struct {
	Name         string
	Gender       Gender
	YearsPresent int
}

// Rule tags a name when Match holds. Rules are independent of each other.
type Rule struct {
	Tag   string
	Match func(in Input, ref *Reference) bool
}

// DefaultRules returns the classification rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: CategoryClassic, Match: isClassic},
		{Tag: CategoryModern, Match: isModern},
		{Tag: CategoryNordic, Match: isNordic},
		{Tag: CategoryViking, Match: isViking},
		{Tag: CategoryBiblical, Match: tagged(CategoryBiblical)},
		{Tag: CategoryInternational, Match: isInternational},
		{Tag: CategoryNature, Match: tagged(CategoryNature)},
	}
}

// Classify evaluates rules in order and returns the tags that fired, or
// CategoryGeneral alone when none did. The result is never empty.
func Classify(in Input, ref *Reference, rules []Rule) []string {
	var tags []string
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Tag] || !r.Match(in, ref) {
			continue
		}
		seen[r.Tag] = true
		tags = append(tags, r.Tag)
	}
	if len(tags) == 0 {
		return []string{CategoryGeneral}
	}
	return tags
}

func isClassic(in Input, _ *Reference) bool { return in.YearsPresent >= ClassicMinYears }

func isModern(in Input, _ *Reference) bool { return in.YearsPresent <= ModernMaxYears }

func isNordic(in Input, ref *Reference) bool {
	key := NormalizeKey(in.Name)
	for _, d := range ref.Diacritics {
		if strings.Contains(key, d) {
			return true
		}
	}
	return hasAnySuffix(key, ref.NordicSuffixes)
}

func isViking(in Input, ref *Reference) bool {
	if ref.HasTag(in.Name, CategoryViking) {
		return true
	}
	return hasAnySuffix(NormalizeKey(in.Name), suffixesFor(ref.VikingSuffixes, in.Gender))
}

func isInternational(in Input, ref *Reference) bool {
	return hasAnySuffix(NormalizeKey(in.Name), suffixesFor(ref.InternationalSuffixes, in.Gender))
}

func tagged(tag string) func(Input, *Reference) bool {
	return func(in Input, ref *Reference) bool { return ref.HasTag(in.Name, tag) }
}

// suffixesFor returns the gender's list; unisex names are checked against
// both lists.
func suffixesFor(m map[Gender][]string, g Gender) []string {
	if g == Unisex {
		return append(append([]string(nil), m[Girl]...), m[Boy]...)
	}
	return m[g]
}
