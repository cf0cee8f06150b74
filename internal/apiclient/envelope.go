package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// unwrapResponse turns a raw HTTP response into the payload carried by the
// API's {status, data} envelope. Bodies without a "status" key are treated
// as bare payloads.
func unwrapResponse(statusCode int, body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)

	if statusCode < 200 || statusCode > 299 {
		return nil, statusError(statusCode, body)
	}

	if len(body) == 0 {
		return nil, nil
	}

	if body[0] != '{' {
		if !json.Valid(body) {
			return nil, NewParseError("response is not valid JSON", fmt.Errorf("body starts with %q", truncate(string(body), 32)))
		}
		return json.RawMessage(body), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, NewParseError("failed to parse JSON response", err)
	}

	rawStatus, enveloped := fields["status"]
	if !enveloped {
		return json.RawMessage(body), nil
	}

	if !statusOK(rawStatus) {
		code, message := envelopeMessage(fields)
		if message == "" {
			message = "request failed"
		}
		return nil, NewDomainError(statusCode, code, message)
	}

	return fields["data"], nil
}

// statusOK interprets the envelope status, which the API has sent as a
// string, a boolean and an HTTP-like number over its lifetime.
func statusOK(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "success", "ok", "true":
			return true
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n >= 200 && n <= 299
		}
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n >= 200 && n <= 299
	}

	return false
}

// envelopeMessage extracts the error code and message of a failed envelope.
// "error" may be a plain string or an object with its own message.
func envelopeMessage(fields map[string]json.RawMessage) (code, message string) {
	_ = json.Unmarshal(fields["code"], &code)
	_ = json.Unmarshal(fields["message"], &message)

	if raw, ok := fields["error"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if message == "" {
				message = s
			}
		} else {
			var obj struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(raw, &obj); err == nil {
				if message == "" {
					message = obj.Message
				}
				if code == "" {
					code = obj.Code
				}
			}
		}
	}
	return code, message
}

// statusError maps a non-2xx response onto the error taxonomy
func statusError(statusCode int, body []byte) error {
	var code, message string
	if len(body) > 0 && body[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err == nil {
			code, message = envelopeMessage(fields)
		}
	}
	if message == "" {
		message = http.StatusText(statusCode)
		if message == "" {
			message = fmt.Sprintf("unexpected status code: %d", statusCode)
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewAuthError(statusCode, message)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return NewDomainError(statusCode, code, message)
	default:
		e := NewHTTPError(statusCode, message)
		e.Code = code
		return e
	}
}

// decodeInto decodes an unwrapped payload into out. A null or missing
// payload leaves out untouched.
func decodeInto(payload json.RawMessage, out any) error {
	if out == nil || isNull(payload) {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return NewParseError(fmt.Sprintf("failed to decode %T", out), err)
	}
	return nil
}

// decodeList decodes a payload expected to hold an array. Anything that is
// not an array yields an empty list rather than an error; elements that do
// not match T are still a parse error.
func decodeList[T any](payload json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}

	items := make([]T, 0)
	if err := json.Unmarshal(trimmed, &items); err != nil {
		var zero T
		return nil, NewParseError(fmt.Sprintf("failed to decode list of %T", zero), err)
	}
	return items, nil
}

func isNull(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
