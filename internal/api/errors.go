package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the body the server sends with non-2xx answers.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: request failed: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: request failed: %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

func statusError(resp *http.Response, body []byte) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil {
		se.Code, se.Message = er.Code, er.Message
	}
	if se.Message == "" && se.Code == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}
