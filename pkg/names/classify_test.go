package names

import (
	"reflect"
	"testing"
)

func classify(name string, g Gender, years int) []string {
	return Classify(Input{Name: name, Gender: g, YearsPresent: years}, DefaultReference(), DefaultRules())
}

func TestClassify_Persistence(t *testing.T) {
	// Out of 12 years queried.
	tests := []struct {
		years int
		want  []string
	}{
		{12, []string{CategoryClassic}},
		{9, []string{CategoryClassic}},
		{8, []string{CategoryClassic}},
		{7, []string{CategoryGeneral}},
		{5, []string{CategoryGeneral}},
		{4, []string{CategoryGeneral}},
		{3, []string{CategoryModern}},
		{2, []string{CategoryModern}},
	}
	for _, tt := range tests {
		got := classify("Xyz", Girl, tt.years)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("years=%d: got %v, want %v", tt.years, got, tt.want)
		}
	}
}

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		name   string
		gender Gender
		want   []string
	}{
		{"Bjørn", Boy, []string{CategoryNordic, CategoryViking}},
		{"Ragnhild", Girl, []string{CategoryNordic, CategoryViking}},
		{"Torstein", Boy, []string{CategoryNordic, CategoryViking}},
		{"Astrid", Girl, []string{CategoryViking}},
		{"Noah", Boy, []string{CategoryBiblical}},
		{"Sara", Girl, []string{CategoryBiblical}},
		{"Sofia", Girl, []string{CategoryInternational}},
		{"Mario", Boy, []string{CategoryInternational}},
		{"Linnea", Girl, []string{CategoryNature}},
		{"Ask", Boy, []string{CategoryViking, CategoryNature}},
		{"Emma", Girl, []string{CategoryGeneral}},
	}
	for _, tt := range tests {
		got := classify(tt.name, tt.gender, 5)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s (%s): got %v, want %v", tt.name, tt.gender, got, tt.want)
		}
	}
}

func TestClassify_GenderSpecificSuffixes(t *testing.T) {
	// "-ie" is an international ending for girls only.
	if got := classify("Xie", Girl, 5); !reflect.DeepEqual(got, []string{CategoryInternational}) {
		t.Errorf("Xie girl: got %v", got)
	}
	if got := classify("Xie", Boy, 5); !reflect.DeepEqual(got, []string{CategoryGeneral}) {
		t.Errorf("Xie boy: got %v", got)
	}
	// Unisex names are checked against both lists.
	if got := classify("Xie", Unisex, 5); !reflect.DeepEqual(got, []string{CategoryInternational}) {
		t.Errorf("Xie unisex: got %v", got)
	}
}

func TestClassify_NeverEmpty(t *testing.T) {
	for _, name := range []string{"", "Q", "Zzzz", "Emma", "Bjørn"} {
		for _, g := range []Gender{Girl, Boy, Unisex} {
			if got := classify(name, g, 5); len(got) == 0 {
				t.Errorf("%q %s: empty categories", name, g)
			}
		}
	}
}

func TestClassify_CustomRulesInIsolation(t *testing.T) {
	rules := []Rule{{Tag: "short-name", Match: func(in Input, _ *Reference) bool { return len(in.Name) <= 3 }}}
	ref := DefaultReference()

	if got := Classify(Input{Name: "Liv"}, ref, rules); !reflect.DeepEqual(got, []string{"short-name"}) {
		t.Errorf("got %v", got)
	}
	if got := Classify(Input{Name: "Ingrid"}, ref, rules); !reflect.DeepEqual(got, []string{CategoryGeneral}) {
		t.Errorf("got %v", got)
	}
}

func TestClassify_DuplicateTagsCollapsed(t *testing.T) {
	always := func(Input, *Reference) bool { return true }
	rules := []Rule{{Tag: "x", Match: always}, {Tag: "x", Match: always}}
	if got := Classify(Input{Name: "A"}, DefaultReference(), rules); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("got %v, want [x]", got)
	}
}
