package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display form used by the form fields and by the report endpoint.
const DateLayout = "02/01/2006"

var datePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// ValidDate reports whether s is a DD/MM/YYYY string naming a real calendar day.
// Values a lenient constructor would roll over (31/02/2024, 00/01/2024) are rejected.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParseDate converts a DD/MM/YYYY string into a UTC midnight time.
// Every four-digit year is taken literally, 0000 through 0099 included; nothing is
// shifted into the 1900s.
func ParseDate(s string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("date %q does not match DD/MM/YYYY", s)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("date %q is not a calendar day", s)
	}
	return t, nil
}

// FormatDateInput applies the progressive DD/MM/YYYY mask to whatever the user typed.
// Only the digits of s are kept (at most eight); slashes are re-inserted after the
// day and month groups once those groups are present. Applying it to its own output
// returns the same string.
func FormatDateInput(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		digits.WriteRune(r)
		if digits.Len() == 8 {
			break
		}
	}

	v := digits.String()
	switch {
	case len(v) > 4:
		return v[:2] + "/" + v[2:4] + "/" + v[4:]
	case len(v) > 2:
		return v[:2] + "/" + v[2:]
	default:
		return v
	}
}

// monthYear turns DD/MM/YYYY into MM-YYYY. Anything without three parts yields "".
func monthYear(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[1] + "-" + parts[2]
}
