// internal/app/system/inputval/validators.go
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// allowedAuthMethods are the account credential types accepted at signup
// and sign-in.
var allowedAuthMethods = []string{"password", "google"}

// IsValidAuthMethod reports whether method names a supported auth
// method. Case and surrounding whitespace are ignored.
func IsValidAuthMethod(method string) bool {
	method = strings.ToLower(strings.TrimSpace(method))
	for _, m := range allowedAuthMethods {
		if method == m {
			return true
		}
	}
	return false
}

// AllowedAuthMethodsList returns the supported auth methods in display
// order.
func AllowedAuthMethodsList() []string {
	out := make([]string, len(allowedAuthMethods))
	copy(out, allowedAuthMethods)
	return out
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}

// IsValidObjectID reports whether s is a 24-character hex string.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// FieldError is a single validation failure with a user-facing message.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the validation failures for one struct.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" when validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every error message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Validate checks the string fields of a struct against its `validate`
// tags. Supported rules: required, max=N, email, authmethod, httpurl,
// objectid. The `label` tag supplies the field name used in messages.
//
// Usage:
//
//	type createGroupInput struct {
//	    Name string `validate:"required,max=200" label:"Name"`
//	}
//	if result := inputval.Validate(input); result.HasErrors() {
//	    // show result.First() in the form
//	}
func Validate(input any) *Result {
	result := &Result{}

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}

		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := v.Field(i).String()

		for _, rule := range strings.Split(tag, ",") {
			rule = strings.TrimSpace(rule)
			switch {
			case rule == "required":
				if strings.TrimSpace(value) == "" {
					result.add(field.Name, label+" is required.")
				}
			case strings.HasPrefix(rule, "max="):
				n, err := strconv.Atoi(rule[len("max="):])
				if err == nil && len(value) > n {
					result.add(field.Name, fmt.Sprintf("%s must be at most %d characters.", label, n))
				}
			case rule == "email":
				if value != "" && !IsValidEmail(value) {
					result.add(field.Name, "A valid email address is required.")
				}
			case rule == "authmethod":
				if value != "" && !IsValidAuthMethod(value) {
					result.add(field.Name, label+" must be one of: "+strings.Join(allowedAuthMethods, ", ")+".")
				}
			case rule == "httpurl":
				if value != "" && !IsValidHTTPURL(value) {
					result.add(field.Name, label+" must be a valid http(s) URL.")
				}
			case rule == "objectid":
				if value != "" && !IsValidObjectID(value) {
					result.add(field.Name, label+" is not a valid ID.")
				}
			}
		}
	}

	return result
}
