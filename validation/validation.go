package validation

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if _, done := v[field]; done {
		return
	}
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		v[field] = "invalid_email"
	}
}

func MinLength(field, value string, minLen int, v Violations) {
	if _, done := v[field]; done {
		return
	}
	if utf8.RuneCountInString(value) < minLen {
		v[field] = "too_short"
	}
}

func MaxLength(field, value string, maxLen int, v Violations) {
	if utf8.RuneCountInString(value) > maxLen {
		v[field] = "too_long"
	}
}

// OneOf accepts an empty value; combine with Required when mandatory.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	if !slices.Contains(allowed, value) {
		v[field] = "not_allowed"
	}
}

// ID checks that value is a well-formed identifier (UUID).
func ID(field, value string, v Violations) {
	if !ValidID(value) {
		v[field] = "invalid_id"
	}
}

// ValidID reports whether s parses as a UUID.
func ValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
