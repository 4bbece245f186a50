package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// SCIM detail error keywords for HTTP 400 responses, RFC 7644 section 3.12.
const (
	ScimTypeInvalidFilter = "invalidFilter"
	ScimTypeTooMany       = "tooMany"
	ScimTypeUniqueness    = "uniqueness"
	ScimTypeMutability    = "mutability"
	ScimTypeInvalidSyntax = "invalidSyntax"
	ScimTypeInvalidPath   = "invalidPath"
	ScimTypeNoTarget      = "noTarget"
	ScimTypeInvalidValue  = "invalidValue"
	ScimTypeInvalidVers   = "invalidVers"
	ScimTypeSensitive     = "sensitive"
)

// Error is the SCIM error message defined in RFC 7644 section 3.12. Servers
// serialize the status attribute as a string, so Status is transcoded on the
// wire. Error satisfies both the error and Resource interfaces so it can
// travel back to callers either way.
type Error struct {
	Schemas  []string `json:"schemas,omitempty"`
	Status   int      `json:"-"`
	ScimType string   `json:"scimType,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("the server returned a SCIM Error object: %s", e.Detail)
}

func (e *Error) ResourceSchemas() []string {
	if len(e.Schemas) > 0 {
		return e.Schemas
	}

	return []string{MessageError}
}

func (e *Error) ResourceID() string {
	return ""
}

type wireError struct {
	Schemas  []string        `json:"schemas,omitempty"`
	Status   json.RawMessage `json:"status,omitempty"`
	ScimType string          `json:"scimType,omitempty"`
	Detail   string          `json:"detail,omitempty"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	raw := wireError{
		Schemas:  e.ResourceSchemas(),
		ScimType: e.ScimType,
		Detail:   e.Detail,
	}

	if e.Status != 0 {
		raw.Status = json.RawMessage(strconv.Quote(strconv.Itoa(e.Status)))
	}

	return json.Marshal(raw)
}

// UnmarshalJSON accepts the status attribute both as the string mandated by
// the RFC and as the bare number some providers send instead.
func (e *Error) UnmarshalJSON(data []byte) error {
	var raw wireError
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal SCIM error")
	}

	e.Schemas = raw.Schemas
	e.ScimType = raw.ScimType
	e.Detail = raw.Detail
	e.Status = 0

	if len(raw.Status) > 0 {
		text := string(raw.Status)
		if unquoted, err := strconv.Unquote(text); err == nil {
			text = unquoted
		}

		status, err := strconv.Atoi(text)
		if err != nil {
			return errors.Wrapf(err, "invalid SCIM error status %q", text)
		}

		e.Status = status
	}

	return nil
}
