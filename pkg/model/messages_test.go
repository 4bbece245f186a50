package model_test

import (
	"encoding/json"
	"testing"

	"github.com/provision-tools/scim2/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestErrorStatusOnTheWire(t *testing.T) {
	assert := require.New(t)

	var scimErr model.Error
	err := json.Unmarshal([]byte(`{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:Error"],
		"status": "404",
		"detail": "Resource 2819c223 not found"
	}`), &scimErr)
	assert.NoError(err)
	assert.Equal(404, scimErr.Status)
	assert.Equal("Resource 2819c223 not found", scimErr.Detail)

	data, err := json.Marshal(&scimErr)
	assert.NoError(err)

	var wire map[string]interface{}
	assert.NoError(json.Unmarshal(data, &wire))
	assert.Equal("404", wire["status"])
}

func TestErrorStatusAsNumber(t *testing.T) {
	assert := require.New(t)

	var scimErr model.Error
	err := json.Unmarshal([]byte(`{"status": 409, "scimType": "uniqueness", "detail": "duplicate"}`), &scimErr)
	assert.NoError(err)
	assert.Equal(409, scimErr.Status)
	assert.Equal(model.ScimTypeUniqueness, scimErr.ScimType)
}

func TestErrorImplementsError(t *testing.T) {
	assert := require.New(t)

	scimErr := &model.Error{Status: 404, Detail: "Resource 2819c223 not found"}
	assert.EqualError(scimErr, "the server returned a SCIM Error object: Resource 2819c223 not found")
	assert.Equal([]string{model.MessageError}, scimErr.ResourceSchemas())
}

func TestSearchRequestValues(t *testing.T) {
	assert := require.New(t)

	search := &model.SearchRequest{
		Attributes: []string{"userName", "displayName"},
		Filter:     `userName eq "bjensen@example.com"`,
		SortBy:     "userName",
		SortOrder:  model.SortDescending,
		StartIndex: 1,
		Count:      10,
	}

	values := search.Values()
	assert.Equal([]string{"userName", "displayName"}, values["attributes"])
	assert.Equal(`userName eq "bjensen@example.com"`, values.Get("filter"))
	assert.Equal("userName", values.Get("sortBy"))
	assert.Equal("descending", values.Get("sortOrder"))
	assert.Equal("1", values.Get("startIndex"))
	assert.Equal("10", values.Get("count"))

	assert.Empty((&model.SearchRequest{}).Values())
}

func TestSearchRequestValidate(t *testing.T) {
	assert := require.New(t)

	assert.NoError((&model.SearchRequest{}).Validate())
	assert.NoError((&model.SearchRequest{Filter: `userName eq "bjensen@example.com"`}).Validate())
	assert.NoError((&model.SearchRequest{SortOrder: model.SortAscending}).Validate())

	assert.Error((&model.SearchRequest{Filter: "userName eq"}).Validate())
	assert.Error((&model.SearchRequest{SortOrder: "sideways"}).Validate())
	assert.Error((&model.SearchRequest{StartIndex: -1}).Validate())
	assert.Error((&model.SearchRequest{Count: -1}).Validate())
}

func TestListEnvelopeDecoding(t *testing.T) {
	assert := require.New(t)

	var envelope model.ListEnvelope
	err := json.Unmarshal([]byte(`{
		"schemas": ["urn:ietf:params:scim:api:messages:2.0:ListResponse"],
		"totalResults": 2,
		"startIndex": 1,
		"itemsPerPage": 2,
		"Resources": [
			{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:User"], "id": "a", "userName": "a@example.com"},
			{"schemas": ["urn:ietf:params:scim:schemas:core:2.0:Group"], "id": "b", "displayName": "Tour Guides"}
		]
	}`), &envelope)
	assert.NoError(err)
	assert.Equal(2, envelope.TotalResults)
	assert.Equal(1, envelope.StartIndex)
	assert.Equal(2, envelope.ItemsPerPage)
	assert.Len(envelope.Resources, 2)
	assert.Equal([]string{model.MessageListResponse}, envelope.Schemas)
}
