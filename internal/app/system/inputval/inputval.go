// internal/app/system/inputval/inputval.go
//
// Package inputval validates user-supplied form input. Field-level
// helpers (IsValidEmail, IsValidObjectID, ...) answer yes/no; Validate
// checks a whole struct against `validate` tags and produces messages
// suitable for showing directly in a form.
package inputval

import "strings"

// IsValidEmail reports whether s looks like a plausible email address.
// Single-label domains are allowed so dev/test setups like
// "admin@mailserver" keep working. Display-name forms
// ("Name <a@b.c>") are rejected; the stored value must be bare.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return validDotAtom(s[:at]) && validDotAtom(s[at+1:])
}

// validDotAtom checks a dot-separated atom: no empty segments, no
// leading/trailing dots, no whitespace or angle brackets.
func validDotAtom(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '<', '>', '@':
			return false
		}
	}
	return true
}
