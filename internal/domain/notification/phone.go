package notification

import "strings"

// countryPrefix replaces the local dialing prefix when normalizing numbers
// for the SMS provider, which only accepts E.164 addresses.
const countryPrefix = "+66"

// minDigits is the shortest subscriber number accepted for dispatch
const minDigits = 9

// NormalizePhone rewrites a locally formatted phone number to E.164 form.
// A leading "0" is replaced with the international prefix; numbers already
// carrying "+" pass through. The second return value is false when the
// number is too short or not numeric, in which case the recipient is
// skipped rather than dispatched to.
func NormalizePhone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	var digits string
	switch {
	case strings.HasPrefix(s, "+"):
		digits = s[1:]
		if !allDigits(digits) || len(digits) < minDigits {
			return "", false
		}
		return s, true
	case strings.HasPrefix(s, "0"):
		digits = s[1:]
		if !allDigits(digits) || len(digits) < minDigits-1 {
			return "", false
		}
		return countryPrefix + digits, true
	default:
		if !allDigits(s) || len(s) < minDigits {
			return "", false
		}
		return "+" + s, true
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
