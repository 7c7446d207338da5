package rest

import (
	"bytes"
	"encoding/json"
)

// Envelope is the wrapper every TomatoMall response arrives in.
type Envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Unwrap selects how many `data` levels wrap the actual payload. The backend
// is inconsistent across endpoints (checkout and pay are double-wrapped, the
// rest single-wrapped), so the depth is declared per call instead of guessed.
type Unwrap int

const (
	// UnwrapNone decodes the whole envelope body as the payload.
	UnwrapNone Unwrap = iota
	// UnwrapData decodes envelope.data as the payload.
	UnwrapData
	// UnwrapDataData decodes envelope.data.data as the payload.
	UnwrapDataData
)

// payload digs the raw payload out of the envelope at the configured depth.
// A missing or null payload yields nil.
func (e *Envelope) payload(depth Unwrap) (json.RawMessage, error) {
	raw := e.Data
	if depth == UnwrapDataData {
		if isNullOrEmpty(raw) {
			return nil, nil
		}
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, Malformed("inner envelope: %v", err)
		}
		raw = inner.Data
	}
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	return raw, nil
}

func isNullOrEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
