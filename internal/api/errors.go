package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is any non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Detail)
}

// The API reports failures as {"detail": "..."}; validation failures carry a
// structured detail, other servers use {"error": "..."}.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Detail: http.StatusText(status)}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}
	switch {
	case len(payload.Detail) > 0:
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			e.Detail = s
		} else {
			e.Detail = string(payload.Detail)
		}
	case payload.Error != "":
		e.Detail = payload.Error
	}
	return e
}

func statusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// Message picks the text to show a user: the server's detail when there is
// one, the fallback otherwise.
func Message(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && strings.TrimSpace(ae.Detail) != "" {
		return ae.Detail
	}
	return fallback
}
