package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/user/podboard/internal/fetch"
	"github.com/user/podboard/internal/filter"
	"github.com/user/podboard/internal/model"
)

// Error codes for structured error responses
const (
	ErrCodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrCodeRoleNotFound       = "ROLE_NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeNoWorkspace        = "NO_WORKSPACE"
	ErrCodeNoCollection       = "NO_COLLECTION"
	ErrCodeFetch              = "FETCH_ERROR"
	ErrCodePermissionError    = "PERMISSION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// JSONError represents a structured error response for --json output
type JSONError struct {
	Error   bool                   `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ExitWithError outputs an error message and exits.
// If --json flag is set, outputs structured JSON error to stdout.
// Otherwise outputs plain text to stderr.
func ExitWithError(code int, errCode, message string, details map[string]interface{}) {
	if GetJSONOutput() {
		errResp := JSONError{
			Error:   true,
			Code:    errCode,
			Message: message,
			Details: details,
		}
		data, _ := json.Marshal(errResp)
		fmt.Println(string(data))
	} else {
		fmt.Fprintln(os.Stderr, "Error:", message)
	}
	Exit(code)
}

// ExitCollectionNotFound outputs a collection not found error
func ExitCollectionNotFound(name string) {
	ExitWithError(1, ErrCodeCollectionNotFound,
		fmt.Sprintf("collection '%s' not found", name),
		map[string]interface{}{"collection": name})
}

// ExitRoleNotFound outputs a role not found error
func ExitRoleNotFound(ref string) {
	ExitWithError(1, ErrCodeRoleNotFound,
		fmt.Sprintf("role '%s' not found", ref),
		map[string]interface{}{"role": ref})
}

// ExitValidationError outputs a validation error
func ExitValidationError(message string, details map[string]interface{}) {
	ExitWithError(2, ErrCodeValidation, message, details)
}

// ExitNoWorkspace outputs an error when no .podboard directory is found
func ExitNoWorkspace() {
	ExitWithError(1, ErrCodeNoWorkspace,
		"no .podboard directory found (run 'podboard init')",
		nil)
}

// exitForError maps a domain error to its exit code and error code.
func exitForError(err error, details map[string]interface{}) {
	switch {
	case errors.Is(err, model.ErrCollectionNotFound):
		ExitWithError(1, ErrCodeCollectionNotFound, err.Error(), details)
	case errors.Is(err, model.ErrRoleNotFound):
		ExitWithError(1, ErrCodeRoleNotFound, err.Error(), details)
	case errors.Is(err, model.ErrCollectionExists), errors.Is(err, model.ErrRoleExists):
		ExitWithError(1, ErrCodeConflict, err.Error(), details)
	case errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrInvalidKind),
		errors.Is(err, model.ErrInvalidPayload),
		errors.Is(err, model.ErrUnknownPermission),
		errors.Is(err, model.ErrInvalidCatalog),
		errors.Is(err, model.ErrEmptyValue),
		errors.Is(err, filter.ErrUnknownDimension),
		errors.Is(err, fetch.ErrUnexpectedShape):
		ExitValidationError(err.Error(), details)
	case fetch.IsUnauthorized(err):
		ExitWithError(3, ErrCodePermissionError, err.Error(), details)
	case errors.Is(err, fetch.ErrNoAPI):
		ExitWithError(3, ErrCodeFetch, err.Error(), details)
	default:
		var apiErr *fetch.APIError
		if errors.As(err, &apiErr) {
			ExitWithError(3, ErrCodeFetch, err.Error(), details)
			return
		}
		ExitWithError(1, ErrCodeInternal, err.Error(), details)
	}
}

// printJSON writes v as one line of JSON to stdout.
func printJSON(v interface{}) {
	data, _ := json.Marshal(v)
	fmt.Println(string(data))
}
