package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/provision-tools/scim2/pkg/client"
	"github.com/provision-tools/scim2/pkg/model"
)

func TestReplaceUser(t *testing.T) {
	assert := require.New(t)

	var (
		method  string
		payload map[string]any
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/Users/2819c223-7f76-453a-919d-413861904646", func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&payload)

		writeJSON(w, http.StatusOK, bjensen)
	})

	scim := newTestClient(t, mux)

	res, err := scim.Replace(context.Background(), &model.User{
		ID:       "2819c223-7f76-453a-919d-413861904646",
		UserName: "bjensen@example.com",
	})
	assert.NoError(err)
	assert.Equal(http.MethodPut, method)

	// the record to replace is named by the URL, read-only attributes
	// stay out of the body
	assert.Equal("bjensen@example.com", payload["userName"])
	assert.NotContains(payload, "id")
	assert.NotContains(payload, "meta")

	user, ok := res.(*model.User)
	assert.True(ok)
	assert.Equal("2819c223-7f76-453a-919d-413861904646", user.ID)
	assert.Equal("User", user.Meta.ResourceType)
}

func TestReplaceErrors(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 409, 412, 500, 501} {
		t.Run(fmt.Sprintf("%d", code), func(t *testing.T) {
			assert := require.New(t)

			mux := http.NewServeMux()
			mux.HandleFunc("/Users/2819c223-7f76-453a-919d-413861904646", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, code, scimError(code, "", fmt.Sprintf("%d error", code)))
			})

			scim := newTestClient(t, mux)

			res, err := scim.Replace(context.Background(), &model.User{
				ID:       "2819c223-7f76-453a-919d-413861904646",
				UserName: "bjensen@example.com",
			})
			assert.Nil(res)
			assert.EqualError(err, fmt.Sprintf("the server returned a SCIM Error object: %d error", code))

			var scimErr *model.Error
			assert.ErrorAs(err, &scimErr)
			assert.Equal(code, scimErr.Status)
		})
	}
}

func TestReplacePreconditionAsValue(t *testing.T) {
	assert := require.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/Users/2819c223-7f76-453a-919d-413861904646", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusPreconditionFailed,
			scimError(http.StatusPreconditionFailed, model.ScimTypeInvalidVers, "Version mismatch"))
	})

	scim := newTestClient(t, mux)

	res, err := scim.Replace(context.Background(), &model.User{
		ID:       "2819c223-7f76-453a-919d-413861904646",
		UserName: "bjensen@example.com",
	}, client.SCIMErrorsAsValues())
	assert.NoError(err)

	scimErr, ok := res.(*model.Error)
	assert.True(ok)
	assert.Equal(http.StatusPreconditionFailed, scimErr.Status)
	assert.Equal(model.ScimTypeInvalidVers, scimErr.ScimType)
}

func TestReplaceRequiresID(t *testing.T) {
	assert := require.New(t)

	requested := false

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = true
	})

	scim := newTestClient(t, mux)

	res, err := scim.Replace(context.Background(), &model.User{UserName: "bjensen@example.com"})
	assert.Nil(res)
	assert.False(requested)
	assert.EqualError(err, "replace: resource must have an id")

	var reqErr *client.RequestError
	assert.ErrorAs(err, &reqErr)
}

func TestReplaceSkipRequestValidation(t *testing.T) {
	assert := require.New(t)

	var payload map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/Users/2819c223-7f76-453a-919d-413861904646", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeJSON(w, http.StatusOK, bjensen)
	})

	scim := newTestClient(t, mux)

	res, err := scim.Replace(context.Background(), &model.User{
		ID:       "2819c223-7f76-453a-919d-413861904646",
		UserName: "bjensen@example.com",
	}, client.SkipRequestValidation())
	assert.NoError(err)

	assert.Equal("2819c223-7f76-453a-919d-413861904646", payload["id"])

	raw, ok := res.(model.RawResource)
	assert.True(ok)
	assert.Equal("bjensen@example.com", raw["userName"])
}

func TestReplaceWithPath(t *testing.T) {
	assert := require.New(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/scim/v2/Users/2819c223-7f76-453a-919d-413861904646", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bjensen)
	})

	scim := newTestClient(t, mux)

	res, err := scim.Replace(context.Background(), &model.User{
		ID:       "2819c223-7f76-453a-919d-413861904646",
		UserName: "bjensen@example.com",
	}, client.WithPath("/scim/v2/Users/2819c223-7f76-453a-919d-413861904646"))
	assert.NoError(err)
	assert.IsType(&model.User{}, res)
}
