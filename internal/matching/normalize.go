package matching

import (
	"regexp"
	"strings"
)

// classificationCode matches road classification suffixes like "(A3066)".
var classificationCode = regexp.MustCompile(`\s*\([ABM]?\d+[A-Z]?\)\s*`)

var whitespace = regexp.MustCompile(`\s+`)

// abbreviations expanded by strict normalization, keyed lowercase.
var abbreviations = map[string]string{
	"st":   "street",
	"rd":   "road",
	"ave":  "avenue",
	"av":   "avenue",
	"ln":   "lane",
	"dr":   "drive",
	"cl":   "close",
	"ct":   "court",
	"pl":   "place",
	"sq":   "square",
	"gdns": "gardens",
	"cres": "crescent",
	"ter":  "terrace",
}

// unnamedPlaceholders are name values that mean "this segment has no name".
var unnamedPlaceholders = map[string]bool{
	"":        true,
	"unnamed": true,
	"unknown": true,
	"n/a":     true,
	"-":       true,
}

// NormalizeName lower-cases, trims and collapses whitespace. Segments from
// the same source that belong to one street always agree under this form.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespace.ReplaceAllString(name, " ")
}

// NormalizeNameStrict additionally expands common abbreviations, strips
// classification codes like "(A3066)" and a leading "The", for matching
// names across data sources that disagree on spelling.
func NormalizeNameStrict(name string) string {
	name = classificationCode.ReplaceAllString(name, " ")
	name = NormalizeName(name)
	name = strings.TrimPrefix(name, "the ")

	words := strings.Split(name, " ")
	for i, w := range words {
		trimmed := strings.TrimSuffix(w, ".")
		if full, ok := abbreviations[trimmed]; ok {
			words[i] = full
		}
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// IsUnnamed reports whether a segment name should bypass aggregation and
// feed the unnamed bucketer instead.
func IsUnnamed(name string) bool {
	return unnamedPlaceholders[NormalizeName(name)]
}
