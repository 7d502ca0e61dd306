package models

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// RawKey is the key a non-JSON body is preserved under.
const RawKey = "raw"

// Envelope is a relayed HTTP response: status plus the parsed body.
type Envelope struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Body       any    `json:"body"`
	// Raw holds the body bytes exactly as received.
	Raw []byte `json:"-"`
}

// OK reports whether Status is in the 2xx range.
func (e Envelope) OK() bool {
	return e.Status >= 200 && e.Status < 300
}

// IsJSON reports whether the body parsed as JSON (i.e. no raw fallback was used).
func (e Envelope) IsJSON() bool {
	return json.Valid(bytes.TrimSpace(e.Raw))
}

// ParseBody decodes raw as JSON, or wraps it as {"raw": text} when it is not
// valid JSON (HTML error pages, empty bodies). It never fails.
func ParseBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		var v any
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v
		}
	}
	return map[string]any{RawKey: string(raw)}
}

// Message extracts a human readable failure message from a parsed body:
// "message" first, then "error". Empty when neither is a non-empty string.
func Message(body any) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ReasonPhrase returns the status text of resp ("Conflict" for "409 Conflict").
func ReasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
