// Package phone canonicalizes Indian mobile numbers heard over voice input.
package phone

import "strings"

// CountryPrefix is the literal prefix of every canonically stored number.
const CountryPrefix = "+91-"

// Normalize converts a raw phone string into the canonical +91-XXXXXXXXXX form.
//
// Voice sessions produce numbers in inconsistent spoken and typed formats: bare
// ten digits, with country code, with arbitrary separators. A single canonical
// key lets lookups by phone succeed regardless of how the digits arrived.
//
// Returns "" when the input cannot be a valid Indian mobile number. Callers
// must treat the empty string as "invalid", never as a valid empty phone.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	switch d := digits.String(); {
	case len(d) == 10:
		return CountryPrefix + d
	case len(d) == 12 && strings.HasPrefix(d, "91"):
		return CountryPrefix + d[2:]
	}
	return ""
}

// NormalizeEmail lowercases and trims an e-mail string. It normalizes only and
// does not validate format.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
