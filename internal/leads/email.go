package leads

import "regexp"

// emailPart excludes @ and every Unicode space, including NBSP, vertical
// tab and the byte order mark, which RE2's \s alone does not cover.
const emailPart = `[^@\s\x{0B}\p{Z}\x{FEFF}]+`

// local@domain.tld with no whitespace and a single @ per part.
var emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)

// IsValidEmail reports whether text looks like a deliverable address.
func IsValidEmail(text string) bool {
	return emailPattern.MatchString(text)
}
