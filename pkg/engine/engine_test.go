package engine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/provision-tools/scim2/pkg/engine"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
			"accept": r.Header.Get("Accept"),
			"auth":   r.Header.Get("Authorization"),
		})
	})
}

func TestHTTPEngineRoundTrip(t *testing.T) {
	assert := require.New(t)

	server := httptest.NewServer(echoHandler())
	defer server.Close()

	e, err := engine.NewHTTPEngine(server.URL, engine.WithBearerToken("t0ken"))
	assert.NoError(err)

	resp, err := e.Do(context.Background(), &engine.Request{
		Method: http.MethodGet,
		Path:   "/Users/2819c223",
		Query:  url.Values{"attributes": []string{"userName"}},
		Header: http.Header{"Accept": []string{"application/scim+json"}},
	})
	assert.NoError(err)
	assert.Equal(http.StatusOK, resp.StatusCode)

	var echo map[string]string
	assert.NoError(json.Unmarshal(resp.Body, &echo))
	assert.Equal(http.MethodGet, echo["method"])
	assert.Equal("/Users/2819c223", echo["path"])
	assert.Equal("attributes=userName", echo["query"])
	assert.Equal("application/scim+json", echo["accept"])
	assert.Equal("Bearer t0ken", echo["auth"])
}

func TestHTTPEngineKeepsRedirects(t *testing.T) {
	assert := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/Users/elsewhere", http.StatusTemporaryRedirect)
	}))
	defer server.Close()

	e, err := engine.NewHTTPEngine(server.URL)
	assert.NoError(err)

	resp, err := e.Do(context.Background(), &engine.Request{
		Method: http.MethodGet,
		Path:   "/Users/2819c223",
	})
	assert.NoError(err)
	assert.Equal(http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(resp.Header.Get("Location"), "/Users/elsewhere")
}

func TestHTTPEngineRequiresBaseURL(t *testing.T) {
	assert := require.New(t)

	_, err := engine.NewHTTPEngine("")
	assert.Error(err)
}

func TestHTTPEngineContextCancellation(t *testing.T) {
	assert := require.New(t)

	server := httptest.NewServer(echoHandler())
	defer server.Close()

	e, err := engine.NewHTTPEngine(server.URL)
	assert.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Do(ctx, &engine.Request{Method: http.MethodGet, Path: "/Users"})
	assert.Error(err)
	assert.ErrorIs(err, context.Canceled)
}

func TestHandlerEngineRoundTrip(t *testing.T) {
	assert := require.New(t)

	e := engine.NewHandlerEngine(echoHandler(), engine.WithPrefix("/scim/v2"))

	resp, err := e.Do(context.Background(), &engine.Request{
		Method: http.MethodGet,
		Path:   "/Groups",
		Query:  url.Values{"filter": []string{`displayName eq "Tour Guides"`}},
		Header: http.Header{"Accept": []string{"application/scim+json"}},
	})
	assert.NoError(err)
	assert.Equal(http.StatusOK, resp.StatusCode)

	var echo map[string]string
	assert.NoError(json.Unmarshal(resp.Body, &echo))
	assert.Equal("/scim/v2/Groups", echo["path"])
	assert.Equal("application/scim+json", echo["accept"])

	query, err := url.ParseQuery(echo["query"])
	assert.NoError(err)
	assert.Equal(`displayName eq "Tour Guides"`, query.Get("filter"))
}

func TestHandlerEngineContextCancellation(t *testing.T) {
	assert := require.New(t)

	e := engine.NewHandlerEngine(echoHandler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Do(ctx, &engine.Request{Method: http.MethodGet, Path: "/Users"})
	assert.Error(err)
	assert.ErrorIs(err, context.Canceled)
}
