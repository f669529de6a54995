package logger

import (
	"regexp"
	"strings"
)

// RedactEmail masks an address for safe logging: "john.doe@example.com"
// becomes "jo***@example.com". Local parts of two characters or fewer are
// masked entirely. Strings that are not addresses redact to "***@***".
//
// Dispatch diagnostics intentionally bypass this: the DispatchResult error
// strings must name the offending address in full for the caller.
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// redactPIIValue masks a field. Keys that carry an address by construction
// are masked whole; other values only have embedded addresses masked.
func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "recipient") || strings.Contains(key, "contact") {
		return RedactEmail(val)
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
