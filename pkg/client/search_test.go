package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provision-tools/scim2/pkg/client"
	"github.com/provision-tools/scim2/pkg/model"
)

func TestSearchAllResources(t *testing.T) {
	assert := require.New(t)

	var (
		method string
		body   []byte
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/.search", func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		body, _ = io.ReadAll(r.Body)

		writeJSON(w, http.StatusOK, listOf(2, bjensen, jsmith))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), nil)
	assert.NoError(err)
	assert.Equal(http.MethodPost, method)
	assert.Empty(body)

	list, ok := res.(*model.ListResponse)
	assert.True(ok)
	assert.Equal(2, list.TotalResults)
	assert.Len(list.Resources, 2)
	assert.IsType(&model.User{}, list.Resources[0])
	assert.IsType(&model.User{}, list.Resources[1])
}

func TestSearchRequestBody(t *testing.T) {
	assert := require.New(t)

	var payload map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/.search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeJSON(w, http.StatusOK, listOf(1, bjensen))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), &model.SearchRequest{
		Attributes:         []string{"userName", "displayName"},
		ExcludedAttributes: []string{"timezone"},
		Filter:             `userName eq "john"`,
		SortBy:             "userName",
		SortOrder:          model.SortAscending,
		StartIndex:         1,
		Count:              10,
	})
	assert.NoError(err)

	assert.Equal([]any{model.MessageSearchRequest}, payload["schemas"])
	assert.Equal([]any{"userName", "displayName"}, payload["attributes"])
	assert.Equal([]any{"timezone"}, payload["excludedAttributes"])
	assert.Equal(`userName eq "john"`, payload["filter"])
	assert.Equal("userName", payload["sortBy"])
	assert.Equal("ascending", payload["sortOrder"])
	assert.Equal(float64(1), payload["startIndex"])
	assert.Equal(float64(10), payload["count"])

	list, ok := res.(*model.ListResponse)
	assert.True(ok)
	assert.Len(list.Resources, 1)

	user, ok := list.Resources[0].(*model.User)
	assert.True(ok)
	assert.Equal("2819c223-7f76-453a-919d-413861904646", user.ID)
}

func TestSearchErrors(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 409, 413, 500, 501} {
		t.Run(fmt.Sprintf("%d", code), func(t *testing.T) {
			assert := require.New(t)

			mux := http.NewServeMux()
			mux.HandleFunc("/.search", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, code, scimError(code, "", fmt.Sprintf("%d error", code)))
			})

			scim := newTestClient(t, mux)

			res, err := scim.Search(context.Background(), nil)
			assert.Nil(res)
			assert.EqualError(err, fmt.Sprintf("the server returned a SCIM Error object: %d error", code))

			var scimErr *model.Error
			assert.ErrorAs(err, &scimErr)
			assert.Equal(code, scimErr.Status)
		})
	}
}

func TestSearchTooManyAsValue(t *testing.T) {
	assert := require.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/.search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest,
			scimError(http.StatusBadRequest, model.ScimTypeTooMany, "The filter matches too many results"))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), nil, client.SCIMErrorsAsValues())
	assert.NoError(err)

	scimErr, ok := res.(*model.Error)
	assert.True(ok)
	assert.Equal(model.ScimTypeTooMany, scimErr.ScimType)
}

func TestSearchInvalidFilter(t *testing.T) {
	assert := require.New(t)

	requested := false

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = true
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), &model.SearchRequest{Filter: "userName eq"})
	assert.Nil(res)
	assert.False(requested)

	var validationErr *client.RequestPayloadValidationError
	assert.ErrorAs(err, &validationErr)
	assert.Equal("search", validationErr.Op)
}

func TestSearchMixedTypes(t *testing.T) {
	assert := require.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/.search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listOf(2, bjensen, tourGuides))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), nil)
	assert.NoError(err)

	list, ok := res.(*model.ListResponse)
	assert.True(ok)
	assert.Len(list.Resources, 2)
	assert.IsType(&model.User{}, list.Resources[0])
	assert.IsType(&model.Group{}, list.Resources[1])
}

func TestSearchWithPath(t *testing.T) {
	assert := require.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/scim/v2/.search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listOf(1, bjensen))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Search(context.Background(), nil, client.WithPath("/scim/v2/.search"))
	assert.NoError(err)

	list, ok := res.(*model.ListResponse)
	assert.True(ok)
	assert.Len(list.Resources, 1)
}
