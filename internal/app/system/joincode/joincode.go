// internal/app/system/joincode/joincode.go

// Package joincode generates and normalizes the human-shareable codes
// users type to join a group.
package joincode

import (
	"strings"

	"github.com/google/uuid"
)

// Length of a generated code.
const Length = 8

// alphabet omits characters that read ambiguously when shared out loud
// or handwritten (0/O, 1/I/L).
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// Generate returns a new join code. Uniqueness is enforced by the groups
// collection's unique index, not here; callers retry on duplicate.
func Generate() string {
	raw := uuid.New()
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(alphabet[int(raw[i])%len(alphabet)])
	}
	return b.String()
}

// Normalize maps user input onto the canonical code form. Generated codes
// never contain 0/O/1/I/L, so those are not folded; stray spaces and
// dashes from copy-paste are dropped.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	code = strings.ReplaceAll(code, "-", "")
	return code
}
