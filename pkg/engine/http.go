package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/provision-tools/scim2/pkg/version"
)

// HTTPEngine sends requests to a live provider over HTTP. Redirect
// responses are returned as-is instead of being followed, so the caller
// decides what a 307 or 308 means for the operation at hand.
type HTTPEngine struct {
	rest   *resty.Client
	tokens oauth2.TokenSource
	log    *zerolog.Logger
}

var _ Engine = (*HTTPEngine)(nil)

type httpSettings struct {
	client    *http.Client
	tokens    oauth2.TokenSource
	basicUser string
	basicPass string
	timeout   time.Duration
	userAgent string
	log       *zerolog.Logger
}

// HTTPOption adjusts the HTTP engine at construction time.
type HTTPOption func(*httpSettings)

// WithHTTPClient runs the engine on top of an existing http.Client, for
// example one carrying custom TLS configuration.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *httpSettings) {
		s.client = client
	}
}

// WithTokenSource authenticates every request with tokens minted by the
// given source, such as a client credentials flow from golang.org/x/oauth2.
func WithTokenSource(tokens oauth2.TokenSource) HTTPOption {
	return func(s *httpSettings) {
		s.tokens = tokens
	}
}

// WithBearerToken authenticates every request with a static bearer token.
func WithBearerToken(token string) HTTPOption {
	return WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// WithBasicAuth authenticates every request with HTTP basic credentials.
func WithBasicAuth(username, password string) HTTPOption {
	return func(s *httpSettings) {
		s.basicUser = username
		s.basicPass = password
	}
}

// WithTimeout bounds every request, on top of whatever deadline the caller
// context carries.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *httpSettings) {
		s.timeout = timeout
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(agent string) HTTPOption {
	return func(s *httpSettings) {
		s.userAgent = agent
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log *zerolog.Logger) HTTPOption {
	return func(s *httpSettings) {
		s.log = log
	}
}

// NewHTTPEngine returns an engine rooted at baseURL, which must point at
// the provider root, e.g. "https://example.com/scim/v2".
func NewHTTPEngine(baseURL string, opts ...HTTPOption) (*HTTPEngine, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	settings := httpSettings{userAgent: version.UserAgent()}
	for _, opt := range opts {
		opt(&settings)
	}

	rest := resty.New()
	if settings.client != nil {
		rest = resty.NewWithClient(settings.client)
	}

	rest.SetBaseURL(strings.TrimRight(baseURL, "/"))
	rest.SetHeader("User-Agent", settings.userAgent)
	rest.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	if settings.basicUser != "" || settings.basicPass != "" {
		rest.SetBasicAuth(settings.basicUser, settings.basicPass)
	}

	if settings.timeout > 0 {
		rest.SetTimeout(settings.timeout)
	}

	log := settings.log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	return &HTTPEngine{rest: rest, tokens: settings.tokens, log: log}, nil
}

func (e *HTTPEngine) Do(ctx context.Context, req *Request) (*Response, error) {
	r := e.rest.R().SetContext(ctx)

	if req.Query != nil {
		r.SetQueryParamsFromValues(req.Query)
	}

	for key, values := range req.Header {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}

	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	if e.tokens != nil {
		token, err := e.tokens.Token()
		if err != nil {
			return nil, errors.Wrap(err, "failed to obtain access token")
		}

		r.SetAuthToken(token.AccessToken)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed", req.Method, req.Path)
	}

	e.log.Trace().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Time()).
		Msg("request completed")

	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}
