package archive

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/katalux/roofers-landing/internal/leads"
)

// HashPhone returns the hex-encoded SHA-256 hash of a phone number's digits,
// so "(555) 123-4567" and "5551234567" hash alike.
func HashPhone(phone string) string {
	h := sha256.Sum256([]byte(leads.DigitsOnly(phone)))
	return fmt.Sprintf("%x", h)
}

// HashEmail returns the hex-encoded SHA-256 hash of a lowercased email.
func HashEmail(email string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%x", h)
}
