package client

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/provision-tools/scim2/pkg/engine"
	"github.com/provision-tools/scim2/pkg/model"
)

// Discover reads the provider configuration endpoints defined in RFC 7644
// section 4: /ServiceProviderConfig, /Schemas and /ResourceTypes. The
// results are kept on the client and bind server resource types to the
// registered models through their schema URNs. Validation flags are ignored
// here since the metadata must decode into typed form to be useful; status
// code options still apply.
func (c *Client) Discover(ctx context.Context, opts ...RequestOption) error {
	const op = "discover"

	s := c.settings(opts)
	expected := s.expected(queryStatusCodes)

	config, err := c.fetchProviderConfig(ctx, op, expected)
	if err != nil {
		return err
	}

	schemas, err := c.fetchSchemas(ctx, op, expected)
	if err != nil {
		return err
	}

	resourceTypes, err := c.fetchResourceTypes(ctx, op, expected)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.providerConfig = config
	c.schemas = schemas
	c.resourceTypes = resourceTypes
	c.mu.Unlock()

	c.log.Debug().
		Int("schemas", len(schemas)).
		Int("resource_types", len(resourceTypes)).
		Msg("provider discovered")

	return nil
}

// ProviderConfig returns the provider capabilities read by Discover, nil
// beforehand.
func (c *Client) ProviderConfig() *model.ServiceProviderConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.providerConfig
}

// Schemas returns the schema definitions read by Discover.
func (c *Client) Schemas() []*model.Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.schemas)
}

// ResourceTypes returns the resource types read by Discover.
func (c *Client) ResourceTypes() []*model.ResourceType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.resourceTypes)
}

// ResourceModel returns a fresh instance of the registered model backing
// the named server resource type, e.g. "User". It reports false until
// Discover has run or when no registered model matches the type's schema.
func (c *Client) ResourceModel(name string) (model.Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, resourceType := range c.resourceTypes {
		if resourceType.Name != name {
			continue
		}

		if reg, ok := c.registry.LookupURN(resourceType.Schema); ok {
			return reg.New(), true
		}
	}

	return nil, false
}

func (c *Client) fetchProviderConfig(ctx context.Context, op string, expected []int) (*model.ServiceProviderConfig, error) {
	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodGet, Path: "/ServiceProviderConfig"})
	if err != nil {
		return nil, err
	}

	payload, scimErr, err := c.checkResponse(op, resp, expected)
	if err != nil {
		return nil, err
	}

	if scimErr != nil {
		return nil, scimErr
	}

	if err := expectSchema(op, "ServiceProviderConfig", model.SchemaServiceProviderConfig, payload); err != nil {
		return nil, err
	}

	var config model.ServiceProviderConfig
	if err := json.Unmarshal(resp.Body, &config); err != nil {
		return nil, &ResponsePayloadValidationError{Op: op, Err: err}
	}

	return &config, nil
}

func (c *Client) fetchSchemas(ctx context.Context, op string, expected []int) ([]*model.Schema, error) {
	members, err := c.fetchListMembers(ctx, op, "/Schemas", expected)
	if err != nil {
		return nil, err
	}

	schemas := make([]*model.Schema, 0, len(members))

	for _, member := range members {
		var schema model.Schema
		if err := json.Unmarshal(member, &schema); err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: err}
		}

		schemas = append(schemas, &schema)
	}

	return schemas, nil
}

func (c *Client) fetchResourceTypes(ctx context.Context, op string, expected []int) ([]*model.ResourceType, error) {
	members, err := c.fetchListMembers(ctx, op, "/ResourceTypes", expected)
	if err != nil {
		return nil, err
	}

	resourceTypes := make([]*model.ResourceType, 0, len(members))

	for _, member := range members {
		var resourceType model.ResourceType
		if err := json.Unmarshal(member, &resourceType); err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: err}
		}

		resourceTypes = append(resourceTypes, &resourceType)
	}

	return resourceTypes, nil
}

func (c *Client) fetchListMembers(ctx context.Context, op, path string, expected []int) ([]json.RawMessage, error) {
	resp, err := c.send(ctx, op, &engine.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}

	payload, scimErr, err := c.checkResponse(op, resp, expected)
	if err != nil {
		return nil, err
	}

	if scimErr != nil {
		return nil, scimErr
	}

	if err := expectSchema(op, "ListResponse", model.MessageListResponse, payload); err != nil {
		return nil, err
	}

	var envelope model.ListEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &ResponsePayloadValidationError{Op: op, Err: err}
	}

	return envelope.Resources, nil
}
