package scimtest

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/elimity-com/scim"
	serrors "github.com/elimity-com/scim/errors"
	"github.com/elimity-com/scim/optional"
	"github.com/elimity-com/scim/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type storeConfig struct {
	resourceType string
	endpoint     string
	schema       schema.Schema
	extensions   []schema.Schema
	uniqueBy     string
	log          *zerolog.Logger
}

// Store keeps the resources of one type in memory, keyed by server-assigned
// uuid, and serves them as a resource handler for github.com/elimity-com/scim.
type Store struct {
	cfg storeConfig

	mu       sync.RWMutex
	records  map[string]*record
	order    []string
	revision int
}

type record struct {
	attributes scim.ResourceAttributes
	created    time.Time
	modified   time.Time
	version    string
}

func newStore(cfg storeConfig) *Store {
	return &Store{
		cfg:     cfg,
		records: map[string]*record{},
	}
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Insert adds a resource without going through HTTP, for seeding tests.
func (s *Store) Insert(attributes scim.ResourceAttributes) (scim.Resource, error) {
	return s.Create(nil, attributes)
}

func (s *Store) Create(r *http.Request, attributes scim.ResourceAttributes) (scim.Resource, error) {
	logger := s.cfg.log.With().Str("method", "Create").Logger()
	logger.Info().Msg("create resource")
	logger.Trace().Any("attributes", attributes).Msg("creating resource")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(attributes, ""); err != nil {
		logger.Error().Err(err).Msg("uniqueness conflict")
		return scim.Resource{}, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	rec := &record{
		attributes: cloneAttributes(attributes),
		created:    now,
		modified:   now,
		version:    s.nextVersion(),
	}

	s.records[id] = rec
	s.order = append(s.order, id)

	logger.Trace().Str("id", id).Msg("resource created")

	return s.resource(id, rec), nil
}

func (s *Store) Get(r *http.Request, id string) (scim.Resource, error) {
	logger := s.cfg.log.With().Str("method", "Get").Str("id", id).Logger()
	logger.Info().Msg("get resource")

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return scim.Resource{}, serrors.ScimErrorResourceNotFound(id)
	}

	return s.resource(id, rec), nil
}

func (s *Store) GetAll(r *http.Request, params scim.ListRequestParams) (scim.Page, error) {
	logger := s.cfg.log.With().Str("method", "GetAll").Logger()
	logger.Info().Msg("list resources")

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		resources = make([]scim.Resource, 0, len(s.order))
		total     = 0
		skipIndex = 1 // start index is 1-based
	)

	for _, id := range s.order {
		resource := s.resource(id, s.records[id])

		if params.FilterValidator != nil && params.FilterValidator.PassesFilter(resource.Attributes) != nil {
			continue
		}

		total++

		if skipIndex < params.StartIndex {
			skipIndex++
			continue
		}

		if params.Count > 0 && len(resources) == params.Count {
			continue
		}

		resources = append(resources, resource)
	}

	logger.Trace().Int("total_results", total).Msg("resources read")

	return scim.Page{
		TotalResults: total,
		Resources:    resources,
	}, nil
}

func (s *Store) Replace(r *http.Request, id string, attributes scim.ResourceAttributes) (scim.Resource, error) {
	logger := s.cfg.log.With().Str("method", "Replace").Str("id", id).Logger()
	logger.Info().Msg("replace resource")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return scim.Resource{}, serrors.ScimErrorResourceNotFound(id)
	}

	if err := s.checkUnique(attributes, id); err != nil {
		logger.Error().Err(err).Msg("uniqueness conflict")
		return scim.Resource{}, err
	}

	rec.attributes = cloneAttributes(attributes)
	rec.modified = time.Now().UTC()
	rec.version = s.nextVersion()

	return s.resource(id, rec), nil
}

func (s *Store) Delete(r *http.Request, id string) error {
	logger := s.cfg.log.With().Str("method", "Delete").Str("id", id).Logger()
	logger.Info().Msg("delete resource")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return serrors.ScimErrorResourceNotFound(id)
	}

	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(existing string) bool { return existing == id })

	return nil
}

func (s *Store) Patch(r *http.Request, id string, operations []scim.PatchOperation) (scim.Resource, error) {
	logger := s.cfg.log.With().Str("method", "Patch").Str("id", id).Logger()
	logger.Info().Msg("patch resource")
	logger.Trace().Any("operations", operations).Msg("patching resource")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return scim.Resource{}, serrors.ScimErrorResourceNotFound(id)
	}

	attrs := cloneAttributes(rec.attributes)

	var err error

	for _, op := range operations {
		switch op.Op {
		case scim.PatchOperationAdd:
			attrs, err = applyPatchAdd(attrs, op)
		case scim.PatchOperationRemove:
			attrs, err = applyPatchRemove(attrs, op)
		case scim.PatchOperationReplace:
			attrs, err = applyPatchReplace(attrs, op)
		}

		if err != nil {
			logger.Error().Err(err).Str("op", op.Op).Msg("patch operation failed")
			return scim.Resource{}, err
		}
	}

	if err := s.checkUnique(attrs, id); err != nil {
		return scim.Resource{}, err
	}

	rec.attributes = attrs
	rec.modified = time.Now().UTC()
	rec.version = s.nextVersion()

	return s.resource(id, rec), nil
}

// checkUnique enforces the store's unique attribute, userName for the User
// store. Comparison is case-insensitive, matching server uniqueness in
// RFC 7643. Callers hold the lock.
func (s *Store) checkUnique(attributes scim.ResourceAttributes, selfID string) error {
	if s.cfg.uniqueBy == "" {
		return nil
	}

	value, ok := attributes[s.cfg.uniqueBy].(string)
	if !ok || value == "" {
		return nil
	}

	for id, rec := range s.records {
		if id == selfID {
			continue
		}

		if existing, ok := rec.attributes[s.cfg.uniqueBy].(string); ok && strings.EqualFold(existing, value) {
			return serrors.ScimErrorUniqueness
		}
	}

	return nil
}

func (s *Store) nextVersion() string {
	s.revision++
	return fmt.Sprintf(`W/"%d"`, s.revision)
}

func (s *Store) resource(id string, rec *record) scim.Resource {
	externalID := optional.String{}
	if value, ok := rec.attributes["externalId"].(string); ok && value != "" {
		externalID = optional.NewString(value)
	}

	created := rec.created
	modified := rec.modified

	return scim.Resource{
		ID:         id,
		ExternalID: externalID,
		Attributes: cloneAttributes(rec.attributes),
		Meta: scim.Meta{
			Created:      &created,
			LastModified: &modified,
			Version:      rec.version,
		},
	}
}

// render returns the wire representation used in aggregated list responses.
func (s *Store) render(id string, rec *record) map[string]any {
	out := cloneAttributes(rec.attributes)

	schemas := []any{s.cfg.schema.ID}

	for _, ext := range s.cfg.extensions {
		if _, ok := rec.attributes[ext.ID]; ok {
			schemas = append(schemas, ext.ID)
		}
	}

	out["schemas"] = schemas
	out["id"] = id
	out["meta"] = map[string]any{
		"resourceType": s.cfg.resourceType,
		"created":      rec.created.Format(time.RFC3339),
		"lastModified": rec.modified.Format(time.RFC3339),
		"version":      rec.version,
		"location":     s.cfg.endpoint + "/" + id,
	}

	return out
}

func (s *Store) renderAll() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.render(id, s.records[id]))
	}

	return out
}

func cloneAttributes(attributes scim.ResourceAttributes) scim.ResourceAttributes {
	out := make(scim.ResourceAttributes, len(attributes))
	for key, value := range attributes {
		out[key] = cloneValue(value)
	}

	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}

		return out
	default:
		return v
	}
}
