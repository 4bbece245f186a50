// Package client implements a SCIM 2.0 protocol client, RFC 7644. It turns
// registered resource models into requests, hands them to a transport
// engine, and checks responses back into typed resources or typed errors.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/provision-tools/scim2/pkg/common"
	"github.com/provision-tools/scim2/pkg/engine"
	"github.com/provision-tools/scim2/pkg/model"
)

// Response status codes defined in RFC 7644 sections 3.3 through 3.6 and
// 3.12, per operation. Anything outside the operation's set is a protocol
// violation worth surfacing, redirects included since engines do not follow
// them.
var (
	creationStatusCodes = []int{
		http.StatusCreated,
		http.StatusConflict,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}

	queryStatusCodes = []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}

	searchStatusCodes = []int{
		http.StatusOK,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusRequestEntityTooLarge,
		http.StatusInternalServerError,
		http.StatusNotImplemented,
	}

	deletionStatusCodes = []int{
		http.StatusNoContent,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusPreconditionFailed,
		http.StatusInternalServerError,
		http.StatusNotImplemented,
	}

	replacementStatusCodes = []int{
		http.StatusOK,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusPreconditionFailed,
		http.StatusInternalServerError,
		http.StatusNotImplemented,
	}
)

// Client performs SCIM requests against a provider and validates the
// responses. The zero value is not usable, construct with New.
type Client struct {
	engine   engine.Engine
	registry *model.Registry
	log      *zerolog.Logger
	defaults []RequestOption

	mu             sync.RWMutex
	providerConfig *model.ServiceProviderConfig
	schemas        []*model.Schema
	resourceTypes  []*model.ResourceType
}

// New returns a client sending requests through the given engine. Unless
// WithRegistry is used, the core User and Group models are registered.
func New(eng engine.Engine, opts ...Option) *Client {
	nop := zerolog.Nop()

	c := &Client{
		engine:   eng,
		registry: model.Defaults(),
		log:      &nop,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Registry returns the resource model registry the client resolves payloads
// against.
func (c *Client) Registry() *model.Registry {
	return c.registry
}

// Create performs a POST request to create a resource, RFC 7644 section
// 3.3. The result is the created resource as returned by the server, or
// model.RawResource when validation is skipped.
func (c *Client) Create(ctx context.Context, resource model.Resource, opts ...RequestOption) (model.Resource, error) {
	const op = "create"

	s := c.settings(opts)

	reg, body, err := c.resourcePayload(op, resource, &s)
	if err != nil {
		return nil, err
	}

	path := s.path
	if path == "" {
		path = reg.Endpoint
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	expected := reg
	if s.skipRequestValidation || s.skipResponseValidation {
		expected = nil
	}

	return c.checkResource(op, resp, &s, s.expected(creationStatusCodes), expected)
}

// Query performs a GET request to read a single resource by id, RFC 7644
// section 3.4.2. A *model.ServiceProviderConfig prototype reads the
// /ServiceProviderConfig endpoint and must be queried without an id.
// Attribute selection and other search parameters attach via WithSearch.
func (c *Client) Query(ctx context.Context, proto model.Resource, id string, opts ...RequestOption) (model.Resource, error) {
	const op = "query"

	s := c.settings(opts)

	query, err := c.searchValues(op, &s)
	if err != nil {
		return nil, err
	}

	if _, ok := proto.(*model.ServiceProviderConfig); ok {
		if id != "" {
			return nil, &RequestError{Op: op, Err: errors.New("ServiceProviderConfig cannot have an id")}
		}

		path := s.path
		if path == "" {
			path = "/ServiceProviderConfig"
		}

		resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodGet, Path: path, Query: query})
		if err != nil {
			return nil, err
		}

		return c.checkProviderConfig(op, resp, &s, s.expected(queryStatusCodes))
	}

	reg, err := c.registration(op, proto)
	if err != nil {
		return nil, err
	}

	path := s.path
	if path == "" {
		if id == "" {
			return nil, &RequestError{Op: op, Err: errors.Errorf("an id is required to query a single %s", reg.Name)}
		}

		path = reg.Endpoint + "/" + url.PathEscape(id)
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}

	expected := reg
	if s.skipResponseValidation {
		expected = nil
	}

	return c.checkResource(op, resp, &s, s.expected(queryStatusCodes), expected)
}

// QueryAll performs a GET request to read a resource collection, RFC 7644
// section 3.4.2. A nil prototype queries the server root, section 3.4.2.1,
// and decodes members against every registered model. The result is a
// *model.ListResponse.
func (c *Client) QueryAll(ctx context.Context, proto model.Resource, search *model.SearchRequest, opts ...RequestOption) (model.Resource, error) {
	const op = "query-all"

	s := c.settings(opts)
	if search != nil {
		s.search = search
	}

	query, err := c.searchValues(op, &s)
	if err != nil {
		return nil, err
	}

	path := s.path
	allowed := c.registry.Registrations()

	if proto != nil {
		reg, err := c.registration(op, proto)
		if err != nil {
			return nil, err
		}

		allowed = []*model.Registration{reg}

		if path == "" {
			path = reg.Endpoint
		}
	} else if path == "" {
		path = "/"
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}

	return c.checkList(op, resp, &s, s.expected(queryStatusCodes), allowed)
}

// Search performs a POST request on the /.search endpoint, RFC 7644 section
// 3.4.3. The result is a *model.ListResponse over every registered model.
func (c *Client) Search(ctx context.Context, search *model.SearchRequest, opts ...RequestOption) (model.Resource, error) {
	const op = "search"

	s := c.settings(opts)

	var body []byte

	if search != nil {
		if !s.skipRequestValidation {
			if err := search.Validate(); err != nil {
				return nil, &RequestPayloadValidationError{Op: op, Err: err}
			}
		}

		message := *search
		if len(message.Schemas) == 0 {
			message.Schemas = []string{model.MessageSearchRequest}
		}

		data, err := json.Marshal(&message)
		if err != nil {
			return nil, &RequestError{Op: op, Err: errors.Wrap(err, "failed to marshal search request")}
		}

		body = data
	}

	path := s.path
	if path == "" {
		path = "/.search"
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	return c.checkList(op, resp, &s, s.expected(searchStatusCodes), c.registry.Registrations())
}

// Replace performs a PUT request to replace a resource, RFC 7644 section
// 3.5.1. The resource must carry the id of the record it replaces.
func (c *Client) Replace(ctx context.Context, resource model.Resource, opts ...RequestOption) (model.Resource, error) {
	const op = "replace"

	s := c.settings(opts)

	if !s.skipRequestValidation && resource.ResourceID() == "" {
		return nil, &RequestError{Op: op, Err: errors.New("resource must have an id")}
	}

	reg, body, err := c.resourcePayload(op, resource, &s)
	if err != nil {
		return nil, err
	}

	path := s.path
	if path == "" {
		if resource.ResourceID() == "" {
			return nil, &RequestError{Op: op, Err: errors.New("resource must have an id")}
		}

		path = reg.Endpoint + "/" + url.PathEscape(resource.ResourceID())
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodPut, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	expected := reg
	if s.skipRequestValidation || s.skipResponseValidation {
		expected = nil
	}

	return c.checkResource(op, resp, &s, s.expected(replacementStatusCodes), expected)
}

// Delete performs a DELETE request, RFC 7644 section 3.6. A SCIM Error
// payload in the response is always returned as an error, there is no
// result value to carry it.
func (c *Client) Delete(ctx context.Context, proto model.Resource, id string, opts ...RequestOption) error {
	const op = "delete"

	s := c.settings(opts)

	reg, err := c.registration(op, proto)
	if err != nil {
		return err
	}

	if id == "" {
		return &RequestError{Op: op, Err: errors.Errorf("an id is required to delete a %s", reg.Name)}
	}

	path := s.path
	if path == "" {
		path = reg.Endpoint + "/" + url.PathEscape(id)
	}

	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodDelete, Path: path})
	if err != nil {
		return err
	}

	_, scimErr, err := c.checkResponse(op, resp, s.expected(deletionStatusCodes))
	if err != nil {
		return err
	}

	if scimErr != nil {
		return scimErr
	}

	return nil
}

// Modify is reserved for PATCH support and always returns ErrNotImplemented.
func (c *Client) Modify(context.Context, model.Resource, ...RequestOption) (model.Resource, error) {
	return nil, ErrNotImplemented
}

// registration resolves which registered model a resource value belongs to.
// Raw payloads are guessed from their schemas attribute.
func (c *Client) registration(op string, res model.Resource) (*model.Registration, error) {
	if res == nil {
		return nil, &RequestError{Op: op, Err: errors.New("a resource is required")}
	}

	if raw, ok := res.(model.RawResource); ok {
		reg, err := c.registry.GuessResource(raw)
		if err != nil {
			return nil, &RequestError{Op: op, Err: err}
		}

		return reg, nil
	}

	reg, err := c.registry.Lookup(res)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	return reg, nil
}

// resourcePayload prepares the request body for create and replace. With
// request validation on, the payload is scrubbed of read-only attributes
// and checked against the model schema first.
func (c *Client) resourcePayload(op string, res model.Resource, s *requestSettings) (*model.Registration, []byte, error) {
	if res == nil {
		return nil, nil, &RequestError{Op: op, Err: errors.New("a resource is required")}
	}

	if s.skipRequestValidation {
		body, err := json.Marshal(res)
		if err != nil {
			return nil, nil, &RequestError{Op: op, Err: errors.Wrap(err, "failed to marshal resource")}
		}

		reg := &model.Registration{}
		if s.path == "" {
			resolved, err := c.registration(op, res)
			if err != nil {
				return nil, nil, err
			}

			reg = resolved
		}

		return reg, body, nil
	}

	reg, err := c.registration(op, res)
	if err != nil {
		return nil, nil, err
	}

	attrs, err := reg.DumpRequest(res)
	if err != nil {
		return nil, nil, &RequestError{Op: op, Err: err}
	}

	if err := reg.Validate(attrs); err != nil {
		return nil, nil, &RequestPayloadValidationError{Op: op, Err: err}
	}

	body, err := json.Marshal(attrs)
	if err != nil {
		return nil, nil, &RequestError{Op: op, Err: errors.Wrap(err, "failed to marshal request payload")}
	}

	return reg, body, nil
}

func (c *Client) searchValues(op string, s *requestSettings) (url.Values, error) {
	if s.search == nil {
		return nil, nil
	}

	if !s.skipRequestValidation {
		if err := s.search.Validate(); err != nil {
			return nil, &RequestPayloadValidationError{Op: op, Err: err}
		}
	}

	return s.search.Values(), nil
}

// send attaches the SCIM media type headers and pushes the request through
// the engine.
func (c *Client) send(ctx context.Context, op string, req *engine.Request) (*engine.Response, error) {
	if req.Header == nil {
		req.Header = http.Header{}
	}

	req.Header.Set(common.HeaderAccept, common.ContentTypeSCIM)

	if len(req.Body) > 0 {
		req.Header.Set(common.HeaderContentType, common.ContentTypeSCIM)
	}

	logger := c.log.With().Str("op", op).Str("method", req.Method).Str("path", req.Path).Logger()
	logger.Debug().Msg("sending request")

	resp, err := c.engine.Do(ctx, req)
	if err != nil {
		return nil, &RequestNetworkError{Op: op, Err: err}
	}

	logger.Trace().Int("status", resp.StatusCode).Int("body_bytes", len(resp.Body)).Msg("response received")

	return resp, nil
}

func statusAllowed(status int, expected []int) bool {
	return len(expected) == 0 || slices.Contains(expected, status)
}
