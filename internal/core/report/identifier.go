package report

import "regexp"

var identifierPattern = regexp.MustCompile(`^\d+$`)

// ValidIdentifier reports whether s is a registration number (matrícula):
// one or more ASCII digits with no separators.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
