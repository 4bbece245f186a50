package model

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/scim2/filter-parser/v2"
)

// SortOrder is the order in which a sorted query returns its resources.
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// SearchRequest is the query message defined in RFC 7644 section 3.4.3. The
// same message drives both GET queries, where it is flattened into URL
// parameters, and POST /.search queries, where it is sent as the body.
type SearchRequest struct {
	Schemas            []string  `json:"schemas,omitempty"`
	Attributes         []string  `json:"attributes,omitempty"`
	ExcludedAttributes []string  `json:"excludedAttributes,omitempty"`
	Filter             string    `json:"filter,omitempty"`
	SortBy             string    `json:"sortBy,omitempty"`
	SortOrder          SortOrder `json:"sortOrder,omitempty"`
	StartIndex         int       `json:"startIndex,omitempty"`
	Count              int       `json:"count,omitempty"`
}

func (s *SearchRequest) ResourceSchemas() []string {
	if len(s.Schemas) > 0 {
		return s.Schemas
	}

	return []string{MessageSearchRequest}
}

func (s *SearchRequest) ResourceID() string {
	return ""
}

// Validate checks the filter expression and the sort order before the
// request goes on the wire.
func (s *SearchRequest) Validate() error {
	if s.Filter != "" {
		if _, err := filter.ParseFilter([]byte(s.Filter)); err != nil {
			return errors.Wrapf(err, "invalid filter %q", s.Filter)
		}
	}

	if s.SortOrder != "" && s.SortOrder != SortAscending && s.SortOrder != SortDescending {
		return errors.Errorf("invalid sort order %q", s.SortOrder)
	}

	if s.StartIndex < 0 {
		return errors.Errorf("invalid start index %d", s.StartIndex)
	}

	if s.Count < 0 {
		return errors.Errorf("invalid count %d", s.Count)
	}

	return nil
}

// Values flattens the message into the URL query parameters defined for
// resource GET requests. Unset fields are left out.
func (s *SearchRequest) Values() url.Values {
	values := url.Values{}

	for _, attr := range s.Attributes {
		values.Add("attributes", attr)
	}

	for _, attr := range s.ExcludedAttributes {
		values.Add("excludedAttributes", attr)
	}

	if s.Filter != "" {
		values.Set("filter", s.Filter)
	}

	if s.SortBy != "" {
		values.Set("sortBy", s.SortBy)
	}

	if s.SortOrder != "" {
		values.Set("sortOrder", string(s.SortOrder))
	}

	if s.StartIndex > 0 {
		values.Set("startIndex", strconv.Itoa(s.StartIndex))
	}

	if s.Count > 0 {
		values.Set("count", strconv.Itoa(s.Count))
	}

	return values
}
