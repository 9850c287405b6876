// Package htmlsanitize cleans user-authored HTML before storage and display.
//
// Announcement bodies accept a limited rich-text vocabulary (formatting,
// lists, tables, links, images). Everything else, notably scripts, event
// handlers, and embedded frames, is stripped. Sanitize at write time so the
// database never holds unsafe markup, and use PrepareForDisplay at render
// time to handle both HTML and legacy plain-text bodies.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// ugcPolicy returns the shared sanitization policy. bluemonday policies are
// safe for concurrent use once built.
func ugcPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		// Allow class so stored bodies can reference site stylesheet rules.
		p.AllowAttrs("class").Globally()
		// Tables commonly carry inline sizing and alignment.
		p.AllowAttrs("style").OnElements("table", "thead", "tbody", "tfoot", "tr", "td", "th")
		policy = p
	})
	return policy
}

// Sanitize removes unsafe markup from s and returns the cleaned HTML.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy().Sanitize(s)
}

// SanitizeToHTML sanitizes s and returns it as template.HTML, ready to be
// rendered without further escaping.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags. A lone < or > (as in
// "5 < 10") still counts as plain text.
func IsPlainText(s string) bool {
	i := strings.Index(s, "<")
	if i == -1 {
		return true
	}
	return !strings.Contains(s[i:], ">")
}

// PlainTextToHTML converts plain text to minimal HTML: entities are escaped,
// newlines become <br>, and the result is wrapped in a paragraph.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay returns s ready for template rendering. Plain-text values
// are converted to HTML; everything else is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
