// Package validation holds the pure field rules the mutation engine
// applies before any write reaches the record store.
package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// International (+ followed by 1-15 digits) or NNN-NNN-NNNN.
	phoneRe = regexp.MustCompile(`^(\+\d{1,15}|\d{3}-\d{3}-\d{4})$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone reports whether s matches an accepted phone format. The
// empty string is valid: phone is optional.
func ValidPhone(s string) bool {
	if s == "" {
		return true
	}
	return phoneRe.MatchString(s)
}

// ValidPrice reports whether p is strictly positive.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive()
}

// ValidStock reports whether n is non-negative.
func ValidStock(n int) bool {
	return n >= 0
}
