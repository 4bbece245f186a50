package client

import (
	"github.com/rs/zerolog"

	"github.com/provision-tools/scim2/pkg/model"
)

// Option configures the client at construction time.
type Option func(*Client)

// WithRegistry replaces the default User/Group registry.
func WithRegistry(registry *model.Registry) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// WithLogger attaches a logger for operation tracing.
func WithLogger(log *zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithDefaults applies the given request options to every operation. Options
// passed to an individual call stack on top of these.
func WithDefaults(opts ...RequestOption) Option {
	return func(c *Client) {
		c.defaults = append(c.defaults, opts...)
	}
}

// RequestOption adjusts a single operation.
type RequestOption func(*requestSettings)

type requestSettings struct {
	skipRequestValidation  bool
	skipResponseValidation bool
	skipStatusCheck        bool
	statusCodes            []int
	errorsAsValues         bool
	path                   string
	search                 *model.SearchRequest
}

// SkipRequestValidation sends the payload exactly as given, without schema
// validation and without scrubbing read-only attributes. The response is
// then returned raw as well, since the client no longer knows which model
// to expect.
func SkipRequestValidation() RequestOption {
	return func(s *requestSettings) {
		s.skipRequestValidation = true
	}
}

// SkipResponseValidation returns response payloads as model.RawResource
// without matching them against a registered model.
func SkipResponseValidation() RequestOption {
	return func(s *requestSettings) {
		s.skipResponseValidation = true
	}
}

// SkipStatusCheck accepts any response status code.
func SkipStatusCheck() RequestOption {
	return func(s *requestSettings) {
		s.skipStatusCheck = true
	}
}

// WithExpectedStatusCodes replaces the status codes the operation accepts.
func WithExpectedStatusCodes(codes ...int) RequestOption {
	return func(s *requestSettings) {
		s.statusCodes = codes
	}
}

// SCIMErrorsAsValues returns SCIM Error payloads as the operation result
// instead of as an error.
func SCIMErrorsAsValues() RequestOption {
	return func(s *requestSettings) {
		s.errorsAsValues = true
	}
}

// WithPath overrides the URL path the operation is sent to.
func WithPath(path string) RequestOption {
	return func(s *requestSettings) {
		s.path = path
	}
}

// WithSearch attaches search parameters, attribute selection included, to a
// Query operation.
func WithSearch(search *model.SearchRequest) RequestOption {
	return func(s *requestSettings) {
		s.search = search
	}
}

func (c *Client) settings(opts []RequestOption) requestSettings {
	var s requestSettings

	for _, opt := range c.defaults {
		opt(&s)
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

func (s *requestSettings) expected(defaults []int) []int {
	if s.skipStatusCheck {
		return nil
	}

	if s.statusCodes != nil {
		return s.statusCodes
	}

	return defaults
}
