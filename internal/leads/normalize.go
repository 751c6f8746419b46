package leads

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// HashPII returns the lowercase, trimmed SHA-256 hex digest the Conversions
// API expects for personal fields. ok is false for empty input.
func HashPII(value string) (digest string, ok bool) {
	if value == "" {
		return "", false
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(sum[:]), true
}

// SplitName splits a full name on whitespace into the first token and the rest.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// NormalizePhone keeps digits only and prefixes the US country code 1 when
// missing. A value without digits normalizes to "".
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, "1") {
		digits = "1" + digits
	}
	return digits
}

// ClickID returns the fbc cookie value: the explicit fbc when given, else one
// rebuilt from fbclid as fb.1.<unix-millis>.<fbclid>, else "".
func ClickID(fbc, fbclid string, now time.Time) string {
	if fbc != "" {
		return fbc
	}
	if fbclid != "" {
		return fmt.Sprintf("fb.1.%d.%s", now.UnixMilli(), fbclid)
	}
	return ""
}

// Normalize derives the hashed identity for a submission.
func Normalize(sub *Submission) Identity {
	first, last := SplitName(sub.Name.String())
	id := Identity{
		FirstName: first,
		LastName:  last,
		Phone:     NormalizePhone(sub.Phone.String()),
	}
	id.EmailHash, _ = HashPII(sub.Email.String())
	id.PhoneHash, _ = HashPII(id.Phone)
	id.FirstNameHash, _ = HashPII(id.FirstName)
	id.LastNameHash, _ = HashPII(id.LastName)
	return id
}
