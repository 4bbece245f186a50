package engine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/pkg/errors"
)

// HandlerEngine dispatches requests straight into an http.Handler without
// opening a socket. It lets a client talk to a provider living in the same
// process, which keeps provider tests hermetic.
type HandlerEngine struct {
	handler http.Handler
	prefix  string
}

var _ Engine = (*HandlerEngine)(nil)

// HandlerOption adjusts the handler engine at construction time.
type HandlerOption func(*HandlerEngine)

// WithPrefix prepends a mount path to every request, for handlers serving
// SCIM under a sub-path such as "/scim/v2".
func WithPrefix(prefix string) HandlerOption {
	return func(e *HandlerEngine) {
		e.prefix = strings.TrimRight(prefix, "/")
	}
}

// NewHandlerEngine returns an engine that serves every request through the
// given handler.
func NewHandlerEngine(handler http.Handler, opts ...HandlerOption) *HandlerEngine {
	e := &HandlerEngine{handler: handler}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *HandlerEngine) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s %s aborted", req.Method, req.Path)
	}

	target := e.prefix + req.Path
	if req.Query != nil {
		if encoded := req.Query.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq := httptest.NewRequest(req.Method, target, body).WithContext(ctx)
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	recorder := httptest.NewRecorder()
	e.handler.ServeHTTP(recorder, httpReq)

	result := recorder.Result()
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return &Response{
		StatusCode: result.StatusCode,
		Header:     result.Header,
		Body:       data,
	}, nil
}
