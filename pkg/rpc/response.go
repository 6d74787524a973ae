package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const responseLogPrefix = "rpc:response"

// Response is the outcome of one call. At most one of Ok and Err is set;
// neither means the procedure succeeded without a value. Build responses with
// Result, Failure or Empty.
type Response struct {
	Key string          `json:"key"`
	Ok  json.RawMessage `json:"ok,omitempty"`
	Err json.RawMessage `json:"err,omitempty"`
}

// Empty is a void success.
func Empty(key string) Response {
	return Response{Key: key}
}

// Result is a success carrying v. A value that cannot be encoded turns into
// an RPC_CORE_UNSERIALIZABLE_RESULT failure.
func Result(key string, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Failure(key, &Error{
			Code:    CodeUnserializableResult,
			Message: "procedure result could not be encoded",
			Details: err.Error(),
			Status:  http.StatusInternalServerError,
		})
	}
	return Response{Key: key, Ok: data}
}

// Failure carries err in the err field.
func Failure(key string, err error) Response {
	return Response{Key: key, Err: encodeError(err)}
}

// IsError reports whether the response carries an error.
func (r Response) IsError() bool {
	return len(r.Err) > 0
}

// Validate rejects a response with both ok and err populated.
func (r Response) Validate() error {
	if len(r.Ok) > 0 && len(r.Err) > 0 {
		return fmt.Errorf("%s - response %q has both ok and err", responseLogPrefix, r.Key)
	}
	return nil
}

// DecodeError parses the err field as an *Error.
func (r Response) DecodeError() (*Error, error) {
	if !r.IsError() {
		return nil, nil
	}
	var e Error
	if err := json.Unmarshal(r.Err, &e); err != nil {
		return nil, fmt.Errorf("%s - failed to decode err of %q: %w", responseLogPrefix, r.Key, err)
	}
	return &e, nil
}
