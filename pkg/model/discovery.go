package model

// Attribute mutability values, RFC 7643 section 7.
const (
	MutabilityReadOnly  = "readOnly"
	MutabilityReadWrite = "readWrite"
	MutabilityImmutable = "immutable"
	MutabilityWriteOnly = "writeOnly"
)

// Attribute "returned" values, RFC 7643 section 7.
const (
	ReturnedAlways  = "always"
	ReturnedNever   = "never"
	ReturnedDefault = "default"
	ReturnedRequest = "request"
)

// ServiceProviderConfig is the provider capability document served on the
// /ServiceProviderConfig endpoint, RFC 7643 section 5. It is the only
// queryable resource without an id.
type ServiceProviderConfig struct {
	Schemas          []string `json:"schemas,omitempty"`
	Meta             *Meta    `json:"meta,omitempty"`
	DocumentationURI string   `json:"documentationUri,omitempty"`

	Patch                 Supported              `json:"patch"`
	Bulk                  BulkSupport            `json:"bulk"`
	Filter                FilterSupport          `json:"filter"`
	ChangePassword        Supported              `json:"changePassword"`
	Sort                  Supported              `json:"sort"`
	ETag                  Supported              `json:"etag"`
	AuthenticationSchemes []AuthenticationScheme `json:"authenticationSchemes,omitempty"`
}

func (c *ServiceProviderConfig) ResourceSchemas() []string {
	if len(c.Schemas) > 0 {
		return c.Schemas
	}

	return []string{SchemaServiceProviderConfig}
}

func (c *ServiceProviderConfig) ResourceID() string {
	return ""
}

// Supported is the single-boolean capability block used by several
// ServiceProviderConfig attributes.
type Supported struct {
	Supported bool `json:"supported"`
}

type BulkSupport struct {
	Supported      bool `json:"supported"`
	MaxOperations  int  `json:"maxOperations,omitempty"`
	MaxPayloadSize int  `json:"maxPayloadSize,omitempty"`
}

type FilterSupport struct {
	Supported  bool `json:"supported"`
	MaxResults int  `json:"maxResults,omitempty"`
}

type AuthenticationScheme struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	SpecURI          string `json:"specUri,omitempty"`
	DocumentationURI string `json:"documentationUri,omitempty"`
	Primary          bool   `json:"primary,omitempty"`
}

// ResourceType describes one endpoint the provider serves, RFC 7643
// section 6.
type ResourceType struct {
	Schemas     []string `json:"schemas,omitempty"`
	ID          string   `json:"id,omitempty"`
	Meta        *Meta    `json:"meta,omitempty"`
	Name        string   `json:"name"`
	Endpoint    string   `json:"endpoint"`
	Description string   `json:"description,omitempty"`

	Schema           string            `json:"schema"`
	SchemaExtensions []SchemaExtension `json:"schemaExtensions,omitempty"`
}

func (r *ResourceType) ResourceSchemas() []string {
	if len(r.Schemas) > 0 {
		return r.Schemas
	}

	return []string{SchemaResourceType}
}

func (r *ResourceType) ResourceID() string {
	return r.ID
}

type SchemaExtension struct {
	Schema   string `json:"schema"`
	Required bool   `json:"required"`
}

// Schema is the attribute definition document served on the /Schemas
// endpoint, RFC 7643 section 7. The registry also derives one per
// registered model and uses the attribute mutability flags to scrub
// read-only attributes from outgoing payloads.
type Schema struct {
	Schemas     []string          `json:"schemas,omitempty"`
	ID          string            `json:"id"`
	Meta        *Meta             `json:"meta,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  []SchemaAttribute `json:"attributes,omitempty"`
}

func (s *Schema) ResourceSchemas() []string {
	if len(s.Schemas) > 0 {
		return s.Schemas
	}

	return []string{SchemaSchema}
}

func (s *Schema) ResourceID() string {
	return s.ID
}

type SchemaAttribute struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	MultiValued     bool              `json:"multiValued"`
	Description     string            `json:"description,omitempty"`
	Required        bool              `json:"required"`
	CaseExact       bool              `json:"caseExact,omitempty"`
	Mutability      string            `json:"mutability,omitempty"`
	Returned        string            `json:"returned,omitempty"`
	Uniqueness      string            `json:"uniqueness,omitempty"`
	CanonicalValues []string          `json:"canonicalValues,omitempty"`
	ReferenceTypes  []string          `json:"referenceTypes,omitempty"`
	SubAttributes   []SchemaAttribute `json:"subAttributes,omitempty"`
}

// ReadOnly reports whether the attribute is ignored in create and replace
// request payloads.
func (a SchemaAttribute) ReadOnly() bool {
	return a.Mutability == MutabilityReadOnly
}
