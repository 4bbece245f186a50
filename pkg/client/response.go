package client

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/provision-tools/scim2/pkg/common"
	"github.com/provision-tools/scim2/pkg/engine"
	"github.com/provision-tools/scim2/pkg/model"
)

// checkResponse runs the wire-level checks every operation shares: status
// code, media type, JSON shape, SCIM Error detection. It returns the decoded
// payload map, nil for bodyless responses, and a *model.Error separately
// when the payload is a SCIM Error object.
func (c *Client) checkResponse(op string, resp *engine.Response, expected []int) (map[string]any, *model.Error, error) {
	if !statusAllowed(resp.StatusCode, expected) {
		return nil, nil, &UnexpectedStatusCodeError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Expected:   expected,
			Body:       resp.Body,
		}
	}

	// RFC 7644 section 3.6: successful deletion has no body to inspect.
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		return nil, nil, nil
	}

	contentType := resp.Header.Get(common.HeaderContentType)
	if !common.AcceptableContentType(contentType) {
		return nil, nil, &UnexpectedContentTypeError{Op: op, ContentType: contentType}
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil, &UnexpectedContentFormatError{Op: op, Err: err}
	}

	if slices.Contains(model.RawResource(payload).ResourceSchemas(), model.MessageError) {
		var scimErr model.Error
		if err := json.Unmarshal(resp.Body, &scimErr); err != nil {
			return nil, nil, &UnexpectedContentFormatError{Op: op, Err: err}
		}

		return nil, &scimErr, nil
	}

	return payload, nil, nil
}

// checkResource finishes the pipeline for single-resource responses. With a
// nil registration the payload is returned raw.
func (c *Client) checkResource(op string, resp *engine.Response, s *requestSettings, expected []int, reg *model.Registration) (model.Resource, error) {
	payload, scimErr, err := c.checkResponse(op, resp, expected)
	if err != nil {
		return nil, err
	}

	if scimErr != nil {
		if s.errorsAsValues {
			return scimErr, nil
		}

		return nil, scimErr
	}

	if payload == nil {
		return nil, nil
	}

	if reg == nil {
		return model.RawResource(payload), nil
	}

	if err := expectSchema(op, reg.Name, reg.URN(), payload); err != nil {
		return nil, err
	}

	if err := reg.Validate(payload); err != nil {
		return nil, &ResponsePayloadValidationError{Op: op, Err: err}
	}

	res, err := reg.Unmarshal(resp.Body)
	if err != nil {
		return nil, &ResponsePayloadValidationError{Op: op, Err: err}
	}

	return res, nil
}

// checkProviderConfig finishes the pipeline for the /ServiceProviderConfig
// endpoint, which has no registered model and no elimity schema to validate
// against.
func (c *Client) checkProviderConfig(op string, resp *engine.Response, s *requestSettings, expected []int) (model.Resource, error) {
	payload, scimErr, err := c.checkResponse(op, resp, expected)
	if err != nil {
		return nil, err
	}

	if scimErr != nil {
		if s.errorsAsValues {
			return scimErr, nil
		}

		return nil, scimErr
	}

	if payload == nil {
		return nil, nil
	}

	if s.skipResponseValidation {
		return model.RawResource(payload), nil
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

// checkList finishes the pipeline for ListResponse payloads, resolving each
// member against the registrations the caller allows.
func (c *Client) checkList(op string, resp *engine.Response, s *requestSettings, expected []int, allowed []*model.Registration) (model.Resource, error) {
	payload, scimErr, err := c.checkResponse(op, resp, expected)
	if err != nil {
		return nil, err
	}

	if scimErr != nil {
		if s.errorsAsValues {
			return scimErr, nil
		}

		return nil, scimErr
	}

	if payload == nil {
		return nil, nil
	}

	if s.skipRequestValidation || s.skipResponseValidation {
		return model.RawResource(payload), nil
	}

	if err := expectSchema(op, "ListResponse", model.MessageListResponse, payload); err != nil {
		return nil, err
	}

	var envelope model.ListEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &ResponsePayloadValidationError{Op: op, Err: err}
	}

	list := &model.ListResponse{
		Schemas:      envelope.Schemas,
		TotalResults: envelope.TotalResults,
		StartIndex:   envelope.StartIndex,
		ItemsPerPage: envelope.ItemsPerPage,
	}

	for _, member := range envelope.Resources {
		var attrs map[string]any
		if err := json.Unmarshal(member, &attrs); err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: errors.Wrap(err, "invalid list member")}
		}

		reg, err := c.registry.GuessResource(attrs)
		if err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: err}
		}

		if !slices.Contains(allowed, reg) {
			return nil, &ResponsePayloadValidationError{
				Op:  op,
				Err: errors.Errorf("unexpected resource type %s in list response", reg.Name),
			}
		}

		if err := reg.Validate(attrs); err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: err}
		}

		res, err := reg.Unmarshal(member)
		if err != nil {
			return nil, &ResponsePayloadValidationError{Op: op, Err: err}
		}

		list.Resources = append(list.Resources, res)
	}

	return list, nil
}

// expectSchema enforces that a payload carries the schema URN of the model
// the operation expects.
func expectSchema(op, name, urn string, payload map[string]any) error {
	schemas := model.RawResource(payload).ResourceSchemas()

	if len(schemas) == 0 {
		return &ResponsePayloadValidationError{
			Op:  op,
			Err: errors.Errorf("expected type %s but got undefined object with no schema", name),
		}
	}

	if !slices.Contains(schemas, urn) {
		return &ResponsePayloadValidationError{
			Op:  op,
			Err: errors.Errorf("expected type %s but got unknown resource with schemas: %s", name, strings.Join(schemas, ", ")),
		}
	}

	return nil
}
