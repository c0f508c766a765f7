package report

import "fmt"

// CheckField validates one input the way the form does when the field loses focus.
// Empty values are accepted here; they are rejected on submission instead.
// The returned error is a *ValidationError for an invalid value, or an error naming
// the field when it is unknown.
func CheckField(field, value string) error {
	if value == "" {
		switch field {
		case FieldIdentifier, FieldStartDate, FieldEndDate:
			return nil
		}
	}

	switch field {
	case FieldIdentifier:
		if !ValidIdentifier(value) {
			return errInvalidIdentifier()
		}
	case FieldStartDate:
		if !ValidDate(value) {
			return errInvalidStartDate()
		}
	case FieldEndDate:
		if !ValidDate(value) {
			return errInvalidEndDate()
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
