package leads

import "strings"

// PhoneDigits is the number of digits in a valid (US) phone number.
const PhoneDigits = 10

// DigitsOnly strips every character that is not a decimal digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FormatPhone renders the digits of raw as a partial or complete
// "(DDD) DDD-DDDD" number. Digits past the tenth are dropped. The result
// depends only on the digits of raw, so formatting already formatted text
// is a no-op.
func FormatPhone(raw string) string {
	d := DigitsOnly(raw)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		end := min(len(d), PhoneDigits)
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:end]
	}
}

// IsValidPhone reports whether text holds exactly ten digits once
// formatting characters are removed.
func IsValidPhone(text string) bool {
	return len(DigitsOnly(text)) == PhoneDigits
}
