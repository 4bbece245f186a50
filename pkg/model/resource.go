// Package model defines the typed SCIM resources and protocol messages
// exchanged by the client, plus the registry that maps wire payloads back to
// registered resource models. Attribute validation is delegated to the
// schemas of github.com/elimity-com/scim.
package model

import "time"

// Schema and message URNs defined in RFC 7643 and RFC 7644.
const (
	SchemaUser                  = "urn:ietf:params:scim:schemas:core:2.0:User"
	SchemaGroup                 = "urn:ietf:params:scim:schemas:core:2.0:Group"
	SchemaEnterpriseUser        = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	SchemaServiceProviderConfig = "urn:ietf:params:scim:schemas:core:2.0:ServiceProviderConfig"
	SchemaResourceType          = "urn:ietf:params:scim:schemas:core:2.0:ResourceType"
	SchemaSchema                = "urn:ietf:params:scim:schemas:core:2.0:Schema"

	MessageListResponse  = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	MessageSearchRequest = "urn:ietf:params:scim:api:messages:2.0:SearchRequest"
	MessageError         = "urn:ietf:params:scim:api:messages:2.0:Error"
	MessagePatchOp       = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
)

// Resource is implemented by every typed SCIM resource the client can send
// or receive. ResourceSchemas returns the schema URNs the value carries,
// the core schema first. ResourceID returns the server-assigned id, empty
// when the resource has not been created yet.
type Resource interface {
	ResourceSchemas() []string
	ResourceID() string
}

// Meta is the common "meta" complex attribute carried by every resource.
type Meta struct {
	ResourceType string     `json:"resourceType,omitempty"`
	Created      *time.Time `json:"created,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
	Location     string     `json:"location,omitempty"`
	Version      string     `json:"version,omitempty"`
}

// RawResource is an untyped resource payload. It satisfies Resource by
// reading the "schemas" and "id" keys, which lets callers push arbitrary
// documents through the client when request validation is disabled, mirrors
// of which end up returned when response validation is disabled.
type RawResource map[string]any

func (r RawResource) ResourceSchemas() []string {
	switch v := r["schemas"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))

		for _, s := range v {
			if urn, ok := s.(string); ok {
				out = append(out, urn)
			}
		}

		return out
	default:
		return nil
	}
}

func (r RawResource) ResourceID() string {
	id, _ := r["id"].(string)
	return id
}
