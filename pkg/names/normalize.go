// CLAUDE:SUMMARY Unicode normalization for name matching (NFC lowercase keys, accent folding, Norwegian title casing).
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey is the lookup key for a name: trimmed, NFC, lowercase.
// Letters such as æ, ø and å are kept since they carry meaning here.
func NormalizeKey(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// FoldAccents lowercases and strips combining marks (Élise -> elise).
// ø and æ are base letters and survive.
func FoldAccents(s string) string {
	result, _, _ := transform.String(stripAccents, NormalizeKey(s))
	return result
}

// DisplayName title-cases a name the way Norwegian registers print it,
// including hyphenated forms (ANNE-MARI -> Anne-Mari).
func DisplayName(s string) string {
	return cases.Title(language.Norwegian).String(norm.NFC.String(strings.TrimSpace(s)))
}

// FirstLetter returns the uppercased first letter of name, or "" when empty.
func FirstLetter(name string) string {
	for _, r := range norm.NFC.String(strings.TrimSpace(name)) {
		return strings.ToUpper(string(r))
	}
	return ""
}
