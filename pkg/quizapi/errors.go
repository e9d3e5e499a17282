package quizapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the quiz service.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *APIError) StatusCode() int {
	return e.Status
}

// errorMessage picks the most specific message out of an error body: the
// "error" field, then "message", then the raw text, then a generic fallback.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed (%d)", status)
}
