// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user-supplied identity fields before
// they are stored or compared. Keep these dumb: trimming and case
// folding only, no validation.
package normalize

import "strings"

// Email lowercases and trims an email address for comparison and
// case-insensitive lookups.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth method value ("password",
// "google").
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims an account status value ("active",
// "disabled").
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tag lowercases and trims an announcement tag.
func Tag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text form or query value. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
