package validation

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Period is YYYY-MM with a real month.
var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Plates are alphanumeric, optionally split by a single hyphen or space (e.g. "ABC-123").
var plateRe = regexp.MustCompile(`^[A-Z0-9]+([- ]?[A-Z0-9]+)*$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidPeriod(period string) bool {
	return periodRe.MatchString(period)
}

// IsValidLicensePlate accepts 5 to 10 characters after trimming, case-insensitive.
func IsValidLicensePlate(plate string) bool {
	p := strings.ToUpper(strings.TrimSpace(plate))
	if len(p) < 5 || len(p) > 10 {
		return false
	}
	return plateRe.MatchString(p)
}
