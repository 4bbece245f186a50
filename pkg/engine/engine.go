// Package engine moves prepared SCIM requests to a provider and returns the
// raw responses. Engines only carry bytes. Request construction, media
// types and response interpretation all stay with the client.
package engine

import (
	"context"
	"net/http"
	"net/url"
)

// Request is one prepared SCIM request. Path is relative to the provider
// root, e.g. "/Users/2819c223". Query and Header may be nil.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is the raw outcome of a request. The body is fully read before
// the response is handed back, so no connection state leaks out of the
// engine.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Engine delivers requests to a SCIM provider. Implementations must honor
// context cancellation and must not retry on their own.
type Engine interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a plain function to the Engine interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
