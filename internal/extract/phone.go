package extract

import (
	"regexp"
	"strings"
)

// Phone patterns ordered by priority: the most specific country formats
// first, generic international runs last.
var phonePatterns = []*regexp.Regexp{
	// Moroccan international: +212 6XX XX XX XX / +212 7XX ...
	regexp.MustCompile(`\+212[\s.-]?[5-7](?:[\s.-]?\d){8}`),
	// Moroccan local: 06XX XX XX XX / 07...
	regexp.MustCompile(`\b0[5-7](?:[\s.-]?\d){8}\b`),
	// Generic international with country code.
	regexp.MustCompile(`\+\d{1,3}(?:[\s.-]?\d){7,12}`),
	// Bare digit run.
	regexp.MustCompile(`\b\d{8,15}\b`),
}

var phoneSeparators = strings.NewReplacer(" ", "", ".", "", "-", "", "+", "")

// Phone returns the first phone-shaped match in text with 8 to 15 digits
// after stripping separators and the leading plus, or "" when none exists.
func Phone(text string) string {
	for _, re := range phonePatterns {
		for _, m := range re.FindAllString(text, -1) {
			stripped := phoneSeparators.Replace(m)
			if n := len(stripped); n >= 8 && n <= 15 {
				return stripped
			}
		}
	}
	return ""
}
