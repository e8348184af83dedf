package request

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a non-2xx response from SharePoint, Microsoft Graph or the
// identity platform, flattened to the message the service sent.
type Error struct {
	StatusCode int
	// Code is the service error code when the envelope carries one.
	Code    string
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	return e.Message
}

// parseError maps an error response body to *Error. It understands
//
//	{"error":{"code":"...","message":"..."}}                     Graph
//	{"odata.error":{"code":"...","message":{"value":"..."}}}     SharePoint, nometadata
//	{"error":{"code":"...","message":{"value":"..."}}}           SharePoint, verbose
//	{"error":"invalid_grant","error_description":"..."}          OAuth
//	{"message":"..."}
//
// and falls back to the raw body.
func parseError(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Body: body}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range []string{"error", "odata.error"} {
			raw, ok := envelope[key]
			if !ok {
				continue
			}
			var inner struct {
				Code    string          `json:"code"`
				Message json.RawMessage `json:"message"`
			}
			if err := json.Unmarshal(raw, &inner); err == nil {
				e.Code = inner.Code
				if msg := messageText(inner.Message); msg != "" {
					e.Message = msg
					return e
				}
				continue
			}
			var code string
			if err := json.Unmarshal(raw, &code); err == nil {
				e.Code = code
			}
		}
		if msg := messageText(envelope["error_description"]); msg != "" {
			e.Message = msg
			return e
		}
		if msg := messageText(envelope["message"]); msg != "" {
			e.Message = msg
			return e
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		e.Message = text
		return e
	}
	e.Message = fmt.Sprintf("HTTP %d", statusCode)
	return e
}

// messageText reads a message that is either a JSON string or an object
// with a "value" string.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &v); err == nil {
		return v.Value
	}
	return ""
}
