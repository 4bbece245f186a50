package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotImplemented is returned by operations the client does not support,
// like Modify.
var ErrNotImplemented = errors.New("operation is not implemented")

// RequestError reports a request that never went on the wire because it
// could not be prepared: unknown resource model, missing id, or a payload
// whose resource type cannot be guessed.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RequestPayloadValidationError reports an outgoing payload that failed
// schema validation before being sent.
type RequestPayloadValidationError struct {
	Op  string
	Err error
}

func (e *RequestPayloadValidationError) Error() string {
	return fmt.Sprintf("%s: request payload validation error: %v", e.Op, e.Err)
}

func (e *RequestPayloadValidationError) Unwrap() error {
	return e.Err
}

// RequestNetworkError reports a transport failure. The wrapped error comes
// from the engine and preserves context cancellation.
type RequestNetworkError struct {
	Op  string
	Err error
}

func (e *RequestNetworkError) Error() string {
	return fmt.Sprintf("%s: network error happened during request: %v", e.Op, e.Err)
}

func (e *RequestNetworkError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusCodeError reports a response status outside the set the
// operation accepts.
type UnexpectedStatusCodeError struct {
	Op         string
	StatusCode int
	Expected   []int
	Body       []byte
}

func (e *UnexpectedStatusCodeError) Error() string {
	return fmt.Sprintf("%s: unexpected response status code: %d", e.Op, e.StatusCode)
}

// UnexpectedContentTypeError reports a response that does not declare a
// SCIM JSON media type.
type UnexpectedContentTypeError struct {
	Op          string
	ContentType string
}

func (e *UnexpectedContentTypeError) Error() string {
	return fmt.Sprintf("%s: unexpected content type: %s", e.Op, e.ContentType)
}

// UnexpectedContentFormatError reports a response body that is not valid
// JSON.
type UnexpectedContentFormatError struct {
	Op  string
	Err error
}

func (e *UnexpectedContentFormatError) Error() string {
	return fmt.Sprintf("%s: unexpected response content format: %v", e.Op, e.Err)
}

func (e *UnexpectedContentFormatError) Unwrap() error {
	return e.Err
}

// ResponsePayloadValidationError reports a response payload that does not
// match the expected resource model or fails schema validation.
type ResponsePayloadValidationError struct {
	Op  string
	Err error
}

func (e *ResponsePayloadValidationError) Error() string {
	return fmt.Sprintf("%s: response payload validation error: %v", e.Op, e.Err)
}

func (e *ResponsePayloadValidationError) Unwrap() error {
	return e.Err
}
