package login

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordRunes = 12
	maxPasswordRunes = 128
)

// PolicyError lists every rule an admin password broke, in a fixed order.
type PolicyError struct {
	Rules []string
}

func (e *PolicyError) Error() string {
	return "password must " + strings.Join(e.Rules, ", ")
}

// ValidatePasswordPolicy checks an admin password before it is hashed.
// Employees sign in by number and never hit this path.
func ValidatePasswordPolicy(password string) error {
	var broken []string

	n := utf8.RuneCountInString(password)
	switch {
	case n < minPasswordRunes:
		broken = append(broken, "be at least 12 characters")
	case n > maxPasswordRunes:
		broken = append(broken, "be at most 128 characters")
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper {
		broken = append(broken, "include an upper-case letter")
	}
	if !lower {
		broken = append(broken, "include a lower-case letter")
	}
	if !digit {
		broken = append(broken, "include a digit")
	}
	if !symbol {
		broken = append(broken, "include a symbol")
	}
	if strings.TrimSpace(password) != password {
		broken = append(broken, "not start or end with whitespace")
	}

	if len(broken) == 0 {
		return nil
	}
	return &PolicyError{Rules: broken}
}
