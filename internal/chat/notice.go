package chat

import (
	"errors"
	"strings"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/validate"
)

const (
	// GenericNotice is shown when a failure carries no usable message.
	GenericNotice = "Something went wrong. Please try again."
	// OfflineNotice is shown when the backend could not be reached.
	OfflineNotice = "Could not reach the server. Check your connection."
)

// Notice turns an action error into the text shown to the user.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	var (
		fieldErrs validate.FieldErrors
		fieldErr  *validate.FieldError
		apiErr    *backend.APIError
	)
	switch {
	case errors.As(err, &fieldErrs):
		lines := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			lines = append(lines, fe.Message)
		}
		return strings.Join(lines, "\n")
	case errors.As(err, &fieldErr):
		return fieldErr.Message
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case backend.IsTransport(err):
		return OfflineNotice
	default:
		return GenericNotice
	}
}
