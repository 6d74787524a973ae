package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Error codes produced by the RPC layer.
const (
	CodeOneOfCallsFailed     = "RPC_CORE_ONE_OF_CALLS_FAILED"
	CodeProcedureNotFound    = "RPC_CORE_PROCEDURE_NOT_FOUND"
	CodeEmptyCallArgs        = "RPC_CORE_EMPTY_CALL_ARGS"
	CodeUnparsableCallArgs   = "RPC_CORE_UNPARSABLE_CALL_ARGS"
	CodeInjectorNotFound     = "RPC_CORE_INJECTOR_NOT_FOUND"
	CodeExtractionFailed     = "RPC_CORE_EXTRACTION_FAILED"
	CodeUnserializableResult = "RPC_CORE_UNSERIALIZABLE_RESULT"
	CodeInvalidRequest       = "RPC_CORE_INVALID_REQUEST"
	CodeAppError             = "RPC_APP_ERROR"
)

// Error is a structured error carried in a response's err field or returned
// for a whole batch. Status is the HTTP status a transport should use when
// the error replaces a whole response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// NewError creates an application error with the given code.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusInternalServerError}
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithStatus returns a copy of e with the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

// OneOfCallsFailed is returned in place of a whole batch when a unit crashed.
func OneOfCallsFailed() *Error {
	return &Error{Code: CodeOneOfCallsFailed, Message: "one of the calls failed to complete", Status: http.StatusInternalServerError}
}

// ProcedureNotFound reports an id outside the procedure table.
func ProcedureNotFound(id int) *Error {
	return &Error{
		Code:    CodeProcedureNotFound,
		Message: fmt.Sprintf("procedure %d not found", id),
		Details: map[string]int{"proc": id},
		Status:  http.StatusNotFound,
	}
}

// EmptyArgs reports a call without arguments routed to a handler that
// requires them.
func EmptyArgs() *Error {
	return &Error{Code: CodeEmptyCallArgs, Message: "call arguments are required", Status: http.StatusBadRequest}
}

// UnparsableArgs reports arguments that could not be decoded into the
// handler's parameter type.
func UnparsableArgs(detail string) *Error {
	return &Error{Code: CodeUnparsableCallArgs, Message: "call arguments could not be parsed", Details: detail, Status: http.StatusBadRequest}
}

// DependencyNotFound reports a dependency missing from the provider.
func DependencyNotFound(t reflect.Type) *Error {
	return &Error{
		Code:    CodeInjectorNotFound,
		Message: "dependency not provided",
		Details: t.String(),
		Status:  http.StatusInternalServerError,
	}
}

// InvalidRequest reports a batch that could not be decoded.
func InvalidRequest(detail string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: "invalid batch request", Details: detail, Status: http.StatusBadRequest}
}

func extractionError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &Error{Code: CodeExtractionFailed, Message: err.Error(), Status: http.StatusBadRequest}
}

// encodeError renders err for a response's err field. *Error values are
// written as-is, errors implementing json.Marshaler through their marshaler,
// anything else as an RPC_APP_ERROR carrying the error text.
func encodeError(err error) json.RawMessage {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		if data, mErr := json.Marshal(rpcErr); mErr == nil {
			return data
		}
		data, _ := json.Marshal(&Error{Code: rpcErr.Code, Message: rpcErr.Message})
		return data
	}

	if m, ok := err.(json.Marshaler); ok {
		if data, mErr := m.MarshalJSON(); mErr == nil && json.Valid(data) {
			return data
		}
	}

	data, _ := json.Marshal(&Error{Code: CodeAppError, Message: err.Error()})
	return data
}
