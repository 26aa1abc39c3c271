package profile

import (
	"regexp"
	"strings"
)

// Coarse shapes only; neither aims at RFC completeness.
// RE2's \s is ASCII-only, so Unicode separators and BOM count as whitespace
// explicitly.
var (
	emailRegex = regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`)
	phoneRegex = regexp.MustCompile(`^[+]?[\d\s\p{Z}\x{FEFF}\-()]{10,}$`)
)

// ValidateEmail reports whether s looks like local@domain.tld.
func ValidateEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidatePhone reports whether s is an optional "+" followed by at least
// ten digits, spaces, hyphens or parentheses.
func ValidatePhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// Validate returns the problems that keep p from being saved.
// Empty email and phone fields are allowed; filled ones must have the
// expected shape.
func Validate(p UserProfile) []string {
	var problems []string

	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}

	emails := []struct{ key, value string }{
		{"email", p.Data.Email},
		{"workEmail", p.Data.WorkEmail},
	}
	for _, e := range emails {
		if e.value != "" && !ValidateEmail(e.value) {
			problems = append(problems, e.key+" is not a valid email address")
		}
	}

	phones := []struct{ key, value string }{
		{"phone", p.Data.Phone},
		{"workPhone", p.Data.WorkPhone},
	}
	for _, ph := range phones {
		if ph.value != "" && !ValidatePhone(ph.value) {
			problems = append(problems, ph.key+" is not a valid phone number")
		}
	}

	return problems
}
