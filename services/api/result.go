package api

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Error is a failed call. Message is what the user is shown.
type Error struct {
	Status  int // 0 when no response was received
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Result is the outcome of a call: either a decoded success value or exactly one error message.
type Result struct {
	ok     bool
	value  interface{}
	raw    []byte
	status int
	errMsg string
}

// Success wraps a decoded value. raw is the JSON it was decoded from, if any.
func Success(value interface{}, raw []byte) Result {
	return Result{ok: true, value: value, raw: raw}
}

func Failure(status int, msg string) Result {
	return Result{status: status, errMsg: msg}
}

func (r Result) OK() bool {
	return r.ok
}

// ErrorMessage returns the error message of a failed result, or "".
func (r Result) ErrorMessage() string {
	return r.errMsg
}

// Err returns a *Error for a failed result, nil otherwise.
func (r Result) Err() error {
	if r.ok {
		return nil
	}
	return &Error{Status: r.status, Message: r.errMsg}
}

// Value returns the decoded success value: a map, a slice or a scalar.
func (r Result) Value() interface{} {
	return r.value
}

// Message returns the `message` field of a success object, or "".
func (r Result) Message() string {
	if obj, ok := r.value.(map[string]interface{}); ok {
		if msg, ok := obj["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Decode decodes the success value into v.
func (r Result) Decode(v interface{}) error {
	if !r.ok {
		return r.Err()
	}
	raw := r.raw
	if raw == nil {
		var err error
		if raw, err = json.Marshal(r.value); err != nil {
			return errors.Wrap(err, "re-encoding result")
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "decoding result")
	}
	return nil
}
