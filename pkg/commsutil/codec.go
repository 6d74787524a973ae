package commsutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const codecLogPrefix = "commsutil:codec"

// ErrorEnvelope is the reply body used when a whole request failed.
type ErrorEnvelope struct {
	Err json.RawMessage `json:"err"`
}

// EncodePayload serializes a value to JSON bytes.
func EncodePayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode payload: %w", codecLogPrefix, err)
	}
	return data, nil
}

// DecodePayload deserializes JSON bytes into the given target.
func DecodePayload(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s - failed to decode payload: %w", codecLogPrefix, err)
	}
	return nil
}

// EncodeError wraps e in an ErrorEnvelope.
func EncodeError(e any) ([]byte, error) {
	inner, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode error: %w", codecLogPrefix, err)
	}
	return json.Marshal(ErrorEnvelope{Err: inner})
}

// DecodeReply decodes a reply into v unless it is an ErrorEnvelope, in which
// case the raw error is returned and v is left untouched.
func DecodeReply(data []byte, v any) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env ErrorEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Err) > 0 {
			return env.Err, nil
		}
	}
	return nil, DecodePayload(trimmed, v)
}
