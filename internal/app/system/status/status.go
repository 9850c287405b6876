// Package status defines the lifecycle states for user accounts.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a recognized account status.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
