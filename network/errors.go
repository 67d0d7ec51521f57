package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// configuration errors, returned by New
var (
	ErrInvalidProtocol  = errors.New("invalid protocol: must be either 'https' or 'http'")
	ErrTokenNotProvided = errors.New("access token not provided")
)

// UnexpectedErrorCode is the code used when no response was received from the storage service
const UnexpectedErrorCode = http.StatusInternalServerError

// Error is the normalized error returned for every failed request.
// Code is the http status of the response, or UnexpectedErrorCode when the request never got a response.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage error %d: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code, so callers can use
// errors.Is(err, &network.Error{Code: http.StatusNotFound})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// newConnectionError creates an Error for requests that did not receive a response
func newConnectionError(err error) *Error {
	return &Error{
		Message: err.Error(),
		Code:    UnexpectedErrorCode,
	}
}

// newResponseError creates an Error from a non-2xx response sent by the storage service.
// The message is taken from the body when the service supplied one.
func newResponseError(res *http.Response) *Error {
	var serverErr struct {
		Message string `json:"message"`
	}

	if res.Body != nil {
		body, err := io.ReadAll(res.Body)
		if err == nil && len(body) > 0 {
			_ = json.Unmarshal(body, &serverErr)
		}
	}

	msg := serverErr.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status code %d", res.StatusCode)
	}

	return &Error{
		Message: msg,
		Code:    res.StatusCode,
	}
}
