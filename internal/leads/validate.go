package leads

import (
	"strings"
	"unicode/utf8"
)

// Messages shown to the visitor, in check order.
const (
	MsgName    = "Please enter your name"
	MsgCompany = "Please enter your company name"
	MsgPhone   = "Please enter a valid 10-digit phone number"
	MsgEmail   = "Please enter a valid email address"
)

const alertHeader = "Please fix the following errors:\n\n"

// minTextLen is the shortest accepted name or company after trimming,
// counted in runes. A single emoji is one character, not two UTF-16 units.
const minTextLen = 2

// Validate checks every field and returns all violations in a fixed order:
// name, company, phone, email. An empty result means the values are valid.
func Validate(name, company, phone, email string) []string {
	var errs []string
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minTextLen {
		errs = append(errs, MsgName)
	}
	if utf8.RuneCountInString(strings.TrimSpace(company)) < minTextLen {
		errs = append(errs, MsgCompany)
	}
	if phone == "" || !IsValidPhone(phone) {
		errs = append(errs, MsgPhone)
	}
	if email == "" || !IsValidEmail(email) {
		errs = append(errs, MsgEmail)
	}
	return errs
}

// AlertText renders validation messages as the single blocking alert the
// visitor sees.
func AlertText(messages []string) string {
	return alertHeader + strings.Join(messages, "\n")
}
