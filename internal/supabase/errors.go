package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/utils"
)

// maxRawErrorLen caps error bodies that are not JSON, such as proxy HTML pages.
const maxRawErrorLen = 200

// APIError is an error answer from the auth or rows API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

// Error returns the upstream message, which is what the dashboard shows.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("hosted backend returned HTTP %d", e.Status)
}

// HTTPStatus lets utils.ParseError map the error onto the local taxonomy.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// errorBody covers both the auth API error shapes and the rows API error shape.
type errorBody struct {
	// rows API, and newer auth API (numeric)
	Code json.RawMessage `json:"code"`
	// newer auth API
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	// older auth API
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	// rows API
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// parseAPIError builds an APIError from a non-2xx response body.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = utils.TruncateString(strings.TrimSpace(string(body)), maxRawErrorLen)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	var code string
	if len(eb.Code) > 0 && json.Unmarshal(eb.Code, &code) == nil {
		apiErr.Code = code
	}
	if eb.ErrorCode != "" {
		apiErr.Code = eb.ErrorCode
	}
	if apiErr.Code == "" {
		apiErr.Code = eb.Error
	}

	apiErr.Message = firstNonEmpty(eb.Message, eb.Msg, eb.ErrorDescription, eb.Error, http.StatusText(status))
	apiErr.Details = eb.Details
	apiErr.Hint = eb.Hint
	return apiErr
}

// IsNoRows reports whether err is the rows API's "zero rows for a single object" error.
func IsNoRows(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == constants.PGRSTNoRows
}

// IsInvalidCredentials reports whether a sign-in failed because of the email or password.
func IsInvalidCredentials(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == constants.GoTrueInvalidCredentials ||
		apiErr.Code == constants.GoTrueInvalidGrant ||
		strings.Contains(apiErr.Message, "Invalid login credentials")
}

// IsUserExists reports whether a sign-up failed because the email is registered.
func IsUserExists(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == constants.GoTrueUserExists ||
		strings.Contains(strings.ToLower(apiErr.Message), "already registered")
}

// IsRefreshRejected reports whether a refresh token can no longer be used.
func IsRefreshRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case constants.GoTrueRefreshNotFound, constants.GoTrueInvalidGrant:
		return true
	}
	return apiErr.Status == http.StatusUnauthorized
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
