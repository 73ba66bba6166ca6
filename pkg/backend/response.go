package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Response is a fully read backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals a bare JSON payload.
func (r *Response) Decode(dest interface{}) error {
	if r == nil || len(r.Body) == 0 {
		return fmt.Errorf("empty backend response")
	}
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// DecodeData unmarshals the `data` member of a `{data: ...}` envelope.
func (r *Response) DecodeData(dest interface{}) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := r.Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("backend response has no data member")
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("decode backend data: %w", err)
	}
	return nil
}

// Text returns the body as trimmed text, unwrapping a JSON string when needed.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Body, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Body))
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// Text returns the error body as text.
func (e *StatusError) Text() string {
	return (&Response{Body: e.Body}).Text()
}

// StatusCode extracts the HTTP status of a *StatusError anywhere in the chain.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
