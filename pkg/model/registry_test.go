package model_test

import (
	"encoding/json"
	"testing"

	"github.com/provision-tools/scim2/pkg/model"
	"github.com/stretchr/testify/require"
)

var rawUser = map[string]interface{}{
	"schemas":  []interface{}{"urn:ietf:params:scim:schemas:core:2.0:User"},
	"id":       "2819c223-7f76-453a-919d-413861904646",
	"userName": "bjensen@example.com",
	"active":   true,
	"name": map[string]interface{}{
		"givenName":  "Barbara",
		"familyName": "Jensen",
	},
	"meta": map[string]interface{}{
		"resourceType": "User",
		"location":     "/Users/2819c223-7f76-453a-919d-413861904646",
	},
}

func TestDefaultRegistrations(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()

	user, ok := registry.LookupName("User")
	assert.True(ok)
	assert.Equal("/Users", user.Endpoint)
	assert.Equal(model.SchemaUser, user.URN())

	group, ok := registry.LookupName("Group")
	assert.True(ok)
	assert.Equal("/Groups", group.Endpoint)
	assert.Equal(model.SchemaGroup, group.URN())

	assert.Len(registry.Registrations(), 2)
}

func TestLookupByResource(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()

	reg, err := registry.Lookup(&model.User{UserName: "bjensen@example.com"})
	assert.NoError(err)
	assert.Equal("User", reg.Name)

	reg, err = registry.Lookup(&model.Group{DisplayName: "Tour Guides"})
	assert.NoError(err)
	assert.Equal("Group", reg.Name)

	_, err = registry.Lookup(model.RawResource{"userName": "no-schemas"})
	assert.Error(err)
}

func TestGuessResource(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()

	reg, err := registry.GuessResource(rawUser)
	assert.NoError(err)
	assert.Equal("User", reg.Name)

	_, err = registry.GuessResource(map[string]interface{}{
		"schemas": []interface{}{"urn:example:params:scim:schemas:Unknown"},
	})
	assert.ErrorIs(err, model.ErrCannotGuessResource)

	_, err = registry.GuessResource(map[string]interface{}{"userName": "bjensen@example.com"})
	assert.ErrorIs(err, model.ErrCannotGuessResource)
}

func TestRegisterConflicts(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()

	err := registry.Register(model.UserRegistration())
	assert.Error(err)
}

func TestDumpRequestScrubsReadOnly(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, ok := registry.LookupName("User")
	assert.True(ok)

	user := &model.User{
		ID:       "2819c223-7f76-453a-919d-413861904646",
		UserName: "bjensen@example.com",
		Password: "t1meMa$heen",
		Meta:     &model.Meta{ResourceType: "User"},
		Groups:   []model.UserGroup{{Value: "e9e30dba-f08f-4109-8486-d5c6a331660a"}},
	}

	attrs, err := reg.DumpRequest(user)
	assert.NoError(err)

	assert.NotContains(attrs, "id")
	assert.NotContains(attrs, "meta")
	assert.NotContains(attrs, "groups")
	assert.Equal("bjensen@example.com", attrs["userName"])
	assert.Equal("t1meMa$heen", attrs["password"])
	assert.Equal([]string{model.SchemaUser}, attrs["schemas"])
}

func TestDumpRequestKeepsExtension(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, ok := registry.LookupName("User")
	assert.True(ok)

	user := &model.User{
		UserName: "bjensen@example.com",
		EnterpriseUser: &model.EnterpriseUser{
			EmployeeNumber: "701984",
			Department:     "Tour Operations",
		},
	}

	attrs, err := reg.DumpRequest(user)
	assert.NoError(err)

	ext, ok := attrs[model.SchemaEnterpriseUser].(map[string]interface{})
	assert.True(ok)
	assert.Equal("701984", ext["employeeNumber"])
	assert.Equal("Tour Operations", ext["department"])
	assert.Equal([]string{model.SchemaUser, model.SchemaEnterpriseUser}, attrs["schemas"])
}

func TestDumpRequestRawPayload(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, err := registry.GuessResource(rawUser)
	assert.NoError(err)

	attrs, err := reg.DumpRequest(model.RawResource(rawUser))
	assert.NoError(err)

	assert.NotContains(attrs, "id")
	assert.NotContains(attrs, "meta")
	assert.Equal("bjensen@example.com", attrs["userName"])
	assert.Contains(attrs, "schemas")
}

func TestValidateAttributes(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, ok := registry.LookupName("User")
	assert.True(ok)

	assert.NoError(reg.Validate(map[string]interface{}{
		"schemas":  []interface{}{model.SchemaUser},
		"userName": "bjensen@example.com",
	}))

	err := reg.Validate(map[string]interface{}{
		"schemas":  []interface{}{model.SchemaUser},
		"userName": "bjensen@example.com",
		"active":   "not-a-boolean",
	})
	assert.Error(err)

	err = reg.Validate(map[string]interface{}{
		"schemas":     []interface{}{model.SchemaUser},
		"displayName": "Babs Jensen",
	})
	assert.Error(err)
}

func TestUnmarshalResource(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, ok := registry.LookupName("User")
	assert.True(ok)

	data, err := json.Marshal(rawUser)
	assert.NoError(err)

	res, err := reg.Unmarshal(data)
	assert.NoError(err)

	user, ok := res.(*model.User)
	assert.True(ok)
	assert.Equal("2819c223-7f76-453a-919d-413861904646", user.ID)
	assert.Equal("bjensen@example.com", user.UserName)
	assert.True(user.Active)
	assert.NotNil(user.Name)
	assert.Equal("Barbara", user.Name.GivenName)
	assert.NotNil(user.Meta)
	assert.Equal("User", user.Meta.ResourceType)
}

func TestDescribeSchema(t *testing.T) {
	assert := require.New(t)

	registry := model.Defaults()
	reg, ok := registry.LookupName("User")
	assert.True(ok)

	described := reg.Describe()
	assert.Equal(model.SchemaUser, described.ID)
	assert.NotEmpty(described.Attributes)

	names := make([]string, 0, len(described.Attributes))
	for _, attr := range described.Attributes {
		names = append(names, attr.Name)
	}

	assert.Contains(names, "userName")
	assert.Contains(names, "groups")
}
