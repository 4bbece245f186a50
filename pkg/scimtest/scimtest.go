// Package scimtest runs an in-memory SCIM 2.0 provider for exercising
// clients and transport engines in tests. Resource endpoints are served by
// github.com/elimity-com/scim with uuid-backed stores behind them; the
// /.search endpoint and the server root listing, which that server does not
// implement, are filled in by this package.
package scimtest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elimity-com/scim"
	"github.com/elimity-com/scim/optional"
	"github.com/elimity-com/scim/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/provision-tools/scim2/pkg/model"
)

// Server is a SCIM provider backed by in-memory stores. It serves the core
// User and Group resource types, the discovery endpoints, POST /.search and
// the root listing.
type Server struct {
	scim   scim.Server
	users  *Store
	groups *Store
	log    *zerolog.Logger

	basicUsername string
	basicPassword string
	bearerToken   string
}

// Option configures the test server.
type Option func(*Server)

// WithBasicAuth requires HTTP basic credentials on every request.
func WithBasicAuth(username, password string) Option {
	return func(s *Server) {
		s.basicUsername = username
		s.basicPassword = password
	}
}

// WithBearerToken accepts the given bearer token on every request. Basic
// and bearer auth can be enabled together.
func WithBearerToken(token string) Option {
	return func(s *Server) {
		s.bearerToken = token
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log *zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer returns a provider with empty User and Group stores.
func NewServer(opts ...Option) (*Server, error) {
	nop := zerolog.Nop()

	s := &Server{log: &nop}
	for _, opt := range opts {
		opt(s)
	}

	usersLogger := s.log.With().Str("store", "users").Logger()
	s.users = newStore(storeConfig{
		resourceType: "User",
		endpoint:     "/Users",
		schema:       schema.CoreUserSchema(),
		extensions:   []schema.Schema{schema.ExtensionEnterpriseUser()},
		uniqueBy:     "userName",
		log:          &usersLogger,
	})

	groupsLogger := s.log.With().Str("store", "groups").Logger()
	s.groups = newStore(storeConfig{
		resourceType: "Group",
		endpoint:     "/Groups",
		schema:       schema.CoreGroupSchema(),
		log:          &groupsLogger,
	})

	serverArgs := &scim.ServerArgs{
		ServiceProviderConfig: &scim.ServiceProviderConfig{
			DocumentationURI: optional.NewString("https://example.com/docs/scim"),
			SupportFiltering: true,
			SupportPatch:     true,
			AuthenticationSchemes: []scim.AuthenticationScheme{
				{
					Type:        scim.AuthenticationTypeHTTPBasic,
					Name:        "HTTP Basic",
					Description: "Authentication scheme using the HTTP Basic Standard",
					SpecURI:     optional.NewString("https://tools.ietf.org/html/rfc7617"),
				},
			},
		},
		ResourceTypes: []scim.ResourceType{
			{
				ID:          optional.NewString("User"),
				Name:        "User",
				Endpoint:    "/Users",
				Description: optional.NewString("User Account"),
				Schema:      schema.CoreUserSchema(),
				SchemaExtensions: []scim.SchemaExtension{
					{Schema: schema.ExtensionEnterpriseUser()},
				},
				Handler: s.users,
			},
			{
				ID:          optional.NewString("Group"),
				Name:        "Group",
				Endpoint:    "/Groups",
				Description: optional.NewString("Group"),
				Schema:      schema.CoreGroupSchema(),
				Handler:     s.groups,
			},
		},
	}

	server, err := scim.NewServer(serverArgs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build provider")
	}

	s.scim = server

	return s, nil
}

// Users returns the store behind the /Users endpoint.
func (s *Server) Users() *Store {
	return s.users
}

// Groups returns the store behind the /Groups endpoint.
func (s *Server) Groups() *Store {
	return s.groups
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		writeError(w, http.StatusUnauthorized, "", "Authentication credentials are required")

		return
	}

	s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/.search":
		s.search(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/":
		s.listRoot(w, r)
	default:
		s.scim.ServeHTTP(w, r)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.basicUsername == "" && s.bearerToken == "" {
		return true
	}

	if s.basicUsername != "" {
		username, password, ok := r.BasicAuth()
		if ok && constantTimeEqual(username, s.basicUsername) && constantTimeEqual(password, s.basicPassword) {
			return true
		}
	}

	if s.bearerToken != "" {
		parts := strings.Split(r.Header.Get("Authorization"), "Bearer ")
		if len(parts) == 2 && subtle.ConstantTimeCompare([]byte(s.bearerToken), []byte(parts[1])) == 1 {
			return true
		}
	}

	return false
}

func constantTimeEqual(given, expected string) bool {
	if given == "" {
		return false
	}

	givenHash := sha256.Sum256([]byte(given))
	expectedHash := sha256.Sum256([]byte(expected))

	return subtle.ConstantTimeCompare(givenHash[:], expectedHash[:]) == 1
}

func writeError(w http.ResponseWriter, status int, scimType, detail string) {
	w.Header().Set("Content-Type", "application/scim+json")
	w.WriteHeader(status)

	payload := model.Error{Status: status, ScimType: scimType, Detail: detail}

	data, err := json.Marshal(&payload)
	if err != nil {
		return
	}

	_, _ = w.Write(data)
}
