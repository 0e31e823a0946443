// Package validation holds the pure form validators for registration and
// login. Unlike the checkout stock validation, which stops at the first
// failing line, these collect every field's error so the UI can render all of
// them at once.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	// Intentionally loose local@domain.tld shape, not full RFC 5322.
	emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const passwordSymbols = "!@#$%^&*()-_=+[]{};:,.<>?"

// FieldErrors maps a form field name to its first violated rule. It satisfies
// the error interface so services can return it through their normal error
// path.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

type RegistrationForm struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	AcceptTerms     bool   `json:"accept_terms"`
}

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRegistration runs every rule and returns nil only when the whole
// form is clean.
func ValidateRegistration(f RegistrationForm) FieldErrors {
	errs := FieldErrors{}

	switch {
	case f.Username == "":
		errs["username"] = "username is required"
	case len(f.Username) < 3:
		errs["username"] = "username must be at least 3 characters"
	case !usernameRegexp.MatchString(f.Username):
		errs["username"] = "username may only contain letters, digits and underscores"
	}

	if msg := nameError(f.FirstName); msg != "" {
		errs["first_name"] = msg
	}
	if msg := nameError(f.LastName); msg != "" {
		errs["last_name"] = msg
	}

	switch {
	case f.Email == "":
		errs["email"] = "email is required"
	case !emailRegexp.MatchString(f.Email):
		errs["email"] = "email address is not valid"
	}

	if msg := passwordError(f.Password); msg != "" {
		errs["password"] = msg
	}

	switch {
	case f.PasswordConfirm == "":
		errs["password_confirm"] = "password confirmation is required"
	case f.PasswordConfirm != f.Password:
		errs["password_confirm"] = "passwords do not match"
	}

	if !f.AcceptTerms {
		errs["accept_terms"] = "terms of service must be accepted"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateLogin(f LoginForm) FieldErrors {
	errs := FieldErrors{}

	switch {
	case f.Email == "":
		errs["email"] = "email is required"
	case !emailRegexp.MatchString(f.Email):
		errs["email"] = "email address is not valid"
	}

	if f.Password == "" {
		errs["password"] = "password is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func nameError(name string) string {
	switch {
	case name == "":
		return "name is required"
	case len(name) < 2:
		return "name must be at least 2 characters"
	}
	return ""
}

func passwordError(password string) string {
	switch {
	case password == "":
		return "password is required"
	case len(password) < 6:
		return "password must be at least 6 characters"
	case !hasLower(password):
		return "password must contain a lowercase letter"
	case !hasUpper(password):
		return "password must contain an uppercase letter"
	case !hasDigit(password):
		return "password must contain a digit"
	}
	return ""
}

// PasswordStrength scores a password 0-5 by counting satisfied criteria. It is
// advisory only and never gates registration.
func PasswordStrength(password string) (int, string) {
	score := 0
	if len(password) >= 6 {
		score++
	}
	if hasLower(password) {
		score++
	}
	if hasUpper(password) {
		score++
	}
	if hasDigit(password) {
		score++
	}
	if strings.ContainsAny(password, passwordSymbols) {
		score++
	}

	labels := map[int]string{
		0: "very weak",
		1: "very weak",
		2: "weak",
		3: "medium",
		4: "strong",
		5: "very strong",
	}
	return score, labels[score]
}

func hasLower(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
