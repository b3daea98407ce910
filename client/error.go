package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches (errors.Is) any call that ended with 401 after refresh handling;
// the application should route the user to login.
var ErrUnauthorized = errors.New("client: unauthorized")

// StatusError reports a non-2xx storefront response
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront returned %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront returned %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func newStatusError(statusCode int, body []byte) *StatusError {
	ret := &StatusError{StatusCode: statusCode}
	payload := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &payload); err == nil {
		ret.Message = payload.Error
		if ret.Message == "" {
			ret.Message = payload.Message
		}
	}
	if ret.Message == "" {
		ret.Message = strings.TrimSpace(string(body))
	}
	return ret
}
