// Package apierr classifies failed backend calls and turns error response
// bodies into user-facing messages.
package apierr

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// APIError is returned by the HTTP client for any non-2xx response.
// Message is already normalized for display. ExistingAttemptID is set when
// a 409 body carried the id of the attempt that caused the conflict.
type APIError struct {
	StatusCode        int
	Message           string
	ExistingAttemptID *int64
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == code
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// Normalize extracts a display message from an error response body with a
// fixed precedence: a string "detail" field wins, then a string "error"
// field, then field-level messages (every remaining key), then a string
// "message" field, then the caller-supplied fallback. Field messages are
// sorted by field name so the output is deterministic.
func Normalize(body []byte, fallback string) string {
	if len(body) == 0 {
		return fallback
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	if detail, ok := stringField(payload, "detail"); ok {
		return detail
	}

	if errMsg, ok := stringField(payload, "error"); ok {
		return errMsg
	}

	if msg := fieldMessages(payload); msg != "" {
		return msg
	}

	if message, ok := stringField(payload, "message"); ok {
		return message
	}

	return fallback
}

func stringField(payload map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := payload[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// fieldMessages collects "field: message" pairs, skipping the keys with
// their own precedence level and anything that does not decode to a
// string or string list.
func fieldMessages(payload map[string]json.RawMessage) string {
	fields := make([]string, 0, len(payload))
	for key := range payload {
		if key == "detail" || key == "error" || key == "message" {
			continue
		}
		if text := fieldText(payload[key]); text != "" {
			fields = append(fields, key+": "+text)
		}
	}
	if len(fields) == 0 {
		return ""
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}

func fieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return ""
}

// ExistingAttemptID pulls the conflicting attempt id out of a 409 body,
// if the server offered one.
func ExistingAttemptID(body []byte) *int64 {
	var payload struct {
		AttemptID *int64 `json:"attempt_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload.AttemptID
}
