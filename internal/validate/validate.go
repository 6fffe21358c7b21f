// Package validate holds input validation shared by the identity and content
// services. Validation failures are reported as *Error so the API layer can
// map them to 400 responses with a field name.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// emailRegex accepts local@domain with at least one dot in the domain part.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NormalizeEmail trims and lowercases an email address. Always call this
// before any uniqueness check or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Email(email string) error {
	if email == "" {
		return &Error{Field: "email", Reason: "is required"}
	}
	if !emailRegex.MatchString(email) {
		return &Error{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Error{Field: "name", Reason: "is required"}
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return &Error{Field: "name", Reason: "must be between 2 and 100 characters"}
	}
	return nil
}

// Required checks that a field is non-empty after trimming.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &Error{Field: field, Reason: "is required"}
	}
	return nil
}
