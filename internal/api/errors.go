package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/safarline/busadmin/internal/domain"
)

// NetworkMessage is shown when the request never got a response.
const NetworkMessage = "Network error: unable to reach the server"

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return NetworkMessage
	}
	return fmt.Sprintf("%s: %v", NetworkMessage, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages returned by the server.
type ValidationError struct {
	Status  int
	Message string
	Fields  domain.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

// ServerError is a non-2xx response carrying a flat message.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// FieldErrorsOf returns the field errors of a validation failure, or nil
// when err is a flat or network error.
func FieldErrorsOf(err error) domain.FieldErrors {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// Message returns the text a screen should show for err in a global
// notification.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return NetworkMessage
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Message != "" {
			return verr.Message
		}
		return "Please correct the highlighted fields"
	}
	var serr *ServerError
	if errors.As(err, &serr) {
		return serr.Message
	}
	return err.Error()
}

// parseErrorBody turns a non-2xx response into a ValidationError or a
// ServerError. Field errors may sit at errors or data.errors; each value is a
// string or an array of strings, arrays joined with a single space.
func parseErrorBody(status int, body []byte) error {
	message := ""
	var fields domain.FieldErrors

	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "data.message", "error"} {
			if res := gjson.GetBytes(body, path); res.Type == gjson.String && res.String() != "" {
				message = res.String()
				break
			}
		}
		for _, path := range []string{"errors", "data.errors"} {
			res := gjson.GetBytes(body, path)
			if !res.IsObject() {
				continue
			}
			fields = domain.FieldErrors{}
			res.ForEach(func(key, value gjson.Result) bool {
				fields[key.String()] = joinMessages(value)
				return true
			})
			break
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		message = text
	}

	if len(fields) > 0 {
		return &ValidationError{Status: status, Message: message, Fields: fields}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &ServerError{Status: status, Message: message}
}

func joinMessages(value gjson.Result) string {
	if !value.IsArray() {
		return value.String()
	}
	parts := make([]string, 0, len(value.Array()))
	for _, v := range value.Array() {
		if s := v.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
