package oauth

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrTokenExpired            = errors.New("token_expired")
	ErrInsufficientScope       = errors.New("insufficient_scope")
)

var errorStatus = []struct {
	err    error
	status int
}{
	{ErrInvalidClient, http.StatusUnauthorized},
	{ErrInvalidGrant, http.StatusBadRequest},
	{ErrInvalidRequest, http.StatusBadRequest},
	{ErrInvalidScope, http.StatusBadRequest},
	{ErrUnsupportedGrantType, http.StatusBadRequest},
	{ErrUnsupportedResponseType, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrTokenExpired, http.StatusUnauthorized},
	{ErrInsufficientScope, http.StatusForbidden},
}

// ErrorStatus maps an error from this package to its HTTP status and error
// code. Anything unrecognised is a server error.
func ErrorStatus(err error) (int, string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, "server_error"
}

// ErrorDescription returns the detail appended to a sentinel, if any
func ErrorDescription(err error) string {
	_, code := ErrorStatus(err)
	msg := err.Error()
	if msg == code {
		return ""
	}
	return strings.TrimPrefix(msg, code+": ")
}

// RedirectError is an authorization failure that is reported back to the
// client's registered redirect URI rather than in the response body.
type RedirectError struct {
	Err         error
	RedirectURI string
	State       string
}

func (e *RedirectError) Error() string {
	return e.Err.Error()
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}
