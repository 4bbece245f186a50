package model

import (
	"encoding/json"

	"github.com/elimity-com/scim/schema"
	"github.com/pkg/errors"
)

// ErrCannotGuessResource is returned when a payload carries no schema URN
// that maps to a registered resource model.
var ErrCannotGuessResource = errors.New("cannot guess resource type from the payload")

// Registration binds a resource model to the schema that identifies it on
// the wire and the endpoint that serves it.
type Registration struct {
	// Name is the resource type name, e.g. "User".
	Name string
	// Endpoint is the resource endpoint. Defaults to "/<Name>s".
	Endpoint string
	// New returns a fresh model instance for a payload to unmarshal into,
	// so it must be a pointer type.
	New func() Resource
	// Schema is the core schema of the model.
	Schema schema.Schema
	// SchemaExtensions lists the extension schemas the model understands.
	SchemaExtensions []schema.Schema

	meta *Schema
	ext  map[string]*Schema
}

// URN returns the core schema URN of the registered model.
func (r *Registration) URN() string {
	return r.Schema.ID
}

// Describe returns the core schema in its RFC 7643 section 7 representation.
func (r *Registration) Describe() *Schema {
	return r.meta
}

// Unmarshal decodes a wire payload into a fresh instance of the model.
func (r *Registration) Unmarshal(data []byte) (Resource, error) {
	res := r.New()
	if err := json.Unmarshal(data, res); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal %s resource", r.Name)
	}

	return res, nil
}

// Validate checks an attribute map against the core schema and against any
// extension sub-maps present in the payload. Attributes the schemas do not
// declare, like id and meta, are ignored.
func (r *Registration) Validate(attrs map[string]any) error {
	if _, scimErr := r.Schema.Validate(attrs); scimErr != nil {
		return errors.Wrapf(scimErr, "payload does not conform to schema %s", r.Schema.ID)
	}

	for _, ext := range r.SchemaExtensions {
		sub, ok := attrs[ext.ID].(map[string]any)
		if !ok {
			continue
		}

		if _, scimErr := ext.Validate(sub); scimErr != nil {
			return errors.Wrapf(scimErr, "payload does not conform to schema %s", ext.ID)
		}
	}

	return nil
}

// DumpRequest turns a resource into the attribute map sent in create and
// replace request bodies. Read-only attributes never belong in a request, so
// id, meta and every attribute the schema marks readOnly are scrubbed. The
// schemas attribute is filled in when the resource does not carry one.
func (r *Registration) DumpRequest(res Resource) (map[string]any, error) {
	attrs, err := resourceAttributes(res)
	if err != nil {
		return nil, err
	}

	delete(attrs, "id")
	delete(attrs, "meta")
	scrubReadOnly(attrs, r.meta.Attributes)

	for urn, ext := range r.ext {
		sub, ok := attrs[urn].(map[string]any)
		if !ok {
			continue
		}

		scrubReadOnly(sub, ext.Attributes)

		if len(sub) == 0 {
			delete(attrs, urn)
		}
	}

	if _, ok := attrs["schemas"]; !ok {
		attrs["schemas"] = res.ResourceSchemas()
	}

	return attrs, nil
}

func (r *Registration) derive() error {
	if r.Name == "" {
		return errors.New("registration requires a name")
	}

	if r.New == nil {
		return errors.Errorf("registration %s requires a model constructor", r.Name)
	}

	if r.Schema.ID == "" {
		return errors.Errorf("registration %s requires a core schema", r.Name)
	}

	if r.Endpoint == "" {
		r.Endpoint = "/" + r.Name + "s"
	}

	meta, err := describeSchema(r.Schema)
	if err != nil {
		return errors.Wrapf(err, "registration %s", r.Name)
	}

	r.meta = meta
	r.ext = make(map[string]*Schema, len(r.SchemaExtensions))

	for _, ext := range r.SchemaExtensions {
		extMeta, err := describeSchema(ext)
		if err != nil {
			return errors.Wrapf(err, "registration %s", r.Name)
		}

		r.ext[ext.ID] = extMeta
	}

	return nil
}

// Registry maps schema URNs and resource type names to registered models.
// It is safe for concurrent reads once populated.
type Registry struct {
	ordered []*Registration
	byURN   map[string]*Registration
	byName  map[string]*Registration
}

// NewRegistry returns a registry holding the given registrations.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{
		byURN:  map[string]*Registration{},
		byName: map[string]*Registration{},
	}

	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Defaults returns a registry with the core User and Group models.
func Defaults() *Registry {
	r, err := NewRegistry(UserRegistration(), GroupRegistration())
	if err != nil {
		panic(err)
	}

	return r
}

// UserRegistration describes the core User model, enterprise extension
// included.
func UserRegistration() Registration {
	return Registration{
		Name:             "User",
		New:              func() Resource { return &User{} },
		Schema:           schema.CoreUserSchema(),
		SchemaExtensions: []schema.Schema{schema.ExtensionEnterpriseUser()},
	}
}

// GroupRegistration describes the core Group model.
func GroupRegistration() Registration {
	return Registration{
		Name:   "Group",
		New:    func() Resource { return &Group{} },
		Schema: schema.CoreGroupSchema(),
	}
}

// Register adds a model to the registry. The schema URN and the resource
// type name must both be unused.
func (r *Registry) Register(reg Registration) error {
	if err := reg.derive(); err != nil {
		return err
	}

	if _, ok := r.byURN[reg.Schema.ID]; ok {
		return errors.Errorf("schema %s is already registered", reg.Schema.ID)
	}

	if _, ok := r.byName[reg.Name]; ok {
		return errors.Errorf("resource type %s is already registered", reg.Name)
	}

	r.ordered = append(r.ordered, &reg)
	r.byURN[reg.Schema.ID] = &reg
	r.byName[reg.Name] = &reg

	return nil
}

// Registrations returns the registered models in registration order.
func (r *Registry) Registrations() []*Registration {
	return r.ordered
}

// Lookup resolves the registration for a typed resource through the schema
// URNs it carries.
func (r *Registry) Lookup(res Resource) (*Registration, error) {
	for _, urn := range res.ResourceSchemas() {
		if reg, ok := r.byURN[urn]; ok {
			return reg, nil
		}
	}

	return nil, errors.Errorf("no resource model registered for schemas %v", res.ResourceSchemas())
}

// LookupName resolves a registration by resource type name.
func (r *Registry) LookupName(name string) (*Registration, bool) {
	reg, ok := r.byName[name]
	return reg, ok
}

// LookupURN resolves a registration by core schema URN.
func (r *Registry) LookupURN(urn string) (*Registration, bool) {
	reg, ok := r.byURN[urn]
	return reg, ok
}

// GuessResource finds the registered model a raw payload belongs to by
// inspecting its schemas attribute.
func (r *Registry) GuessResource(payload map[string]any) (*Registration, error) {
	for _, urn := range RawResource(payload).ResourceSchemas() {
		if reg, ok := r.byURN[urn]; ok {
			return reg, nil
		}
	}

	return nil, ErrCannotGuessResource
}

func resourceAttributes(res Resource) (map[string]any, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal resource")
	}

	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Wrap(err, "failed to rebuild resource attributes")
	}

	return attrs, nil
}

func scrubReadOnly(attrs map[string]any, defs []SchemaAttribute) {
	for _, def := range defs {
		if def.ReadOnly() {
			delete(attrs, def.Name)
			continue
		}

		if len(def.SubAttributes) == 0 {
			continue
		}

		switch sub := attrs[def.Name].(type) {
		case map[string]any:
			scrubReadOnly(sub, def.SubAttributes)
		case []any:
			for _, item := range sub {
				if m, ok := item.(map[string]any); ok {
					scrubReadOnly(m, def.SubAttributes)
				}
			}
		}
	}
}

func describeSchema(s schema.Schema) (*Schema, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal schema %s", s.ID)
	}

	var out Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "failed to describe schema %s", s.ID)
	}

	return &out, nil
}
