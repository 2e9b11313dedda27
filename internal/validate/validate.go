package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxGroupNameLength is the longest display name accepted for a new group.
const MaxGroupNameLength = 50

var (
	chatIDRegexp = regexp.MustCompile(`^-\d+$`)
	handleRegexp = regexp.MustCompile(`^@[A-Za-z0-9_]{5,}$`)
)

// FieldError is a validation failure tied to a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors collects failures across several fields of one form.
type FieldErrors []*FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// For returns the message for the named field, or empty if it passed.
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Err returns nil when no field failed so callers can return it directly.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// IsValidGroupIdentifier reports whether id is a negative numeric chat id
// or a public @handle of at least five characters.
func IsValidGroupIdentifier(id string) bool {
	return chatIDRegexp.MatchString(id) || handleRegexp.MatchString(id)
}

// GroupIdentifier returns a field error for ids IsValidGroupIdentifier rejects.
func GroupIdentifier(id string) error {
	if strings.TrimSpace(id) == "" {
		return &FieldError{Field: "groupId", Message: "Group ID is required"}
	}
	if !IsValidGroupIdentifier(id) {
		return &FieldError{
			Field:   "groupId",
			Message: "Enter a numeric chat id like -1001234567890 or a public handle like @publicgroup",
		}
	}
	return nil
}

// GroupName checks a display name for a new group.
func GroupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &FieldError{Field: "displayName", Message: "Group name is required"}
	}
	if utf8.RuneCountInString(name) > MaxGroupNameLength {
		return &FieldError{
			Field:   "displayName",
			Message: fmt.Sprintf("Group name must be at most %d characters", MaxGroupNameLength),
		}
	}
	return nil
}

// Credentials checks the login form.
func Credentials(email, password string) error {
	var errs FieldErrors
	if !looksLikeEmail(email) {
		errs = append(errs, &FieldError{Field: "email", Message: "Enter a valid email address"})
	}
	if password == "" {
		errs = append(errs, &FieldError{Field: "password", Message: "Password is required"})
	}
	return errs.Err()
}

// Registration checks the sign-up form.
func Registration(username, email, password string) error {
	var errs FieldErrors
	if strings.TrimSpace(username) == "" {
		errs = append(errs, &FieldError{Field: "username", Message: "Username is required"})
	}
	if !looksLikeEmail(email) {
		errs = append(errs, &FieldError{Field: "email", Message: "Enter a valid email address"})
	}
	if password == "" {
		errs = append(errs, &FieldError{Field: "password", Message: "Password is required"})
	}
	return errs.Err()
}

func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
