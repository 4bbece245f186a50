package model

import "encoding/json"

// ListResponse is the query response envelope defined in RFC 7644
// section 3.4.2. Resources holds the decoded members. The client fills it
// from a ListEnvelope rather than through encoding/json, because each member
// has to be matched to a registered model first.
type ListResponse struct {
	Schemas      []string   `json:"schemas,omitempty"`
	TotalResults int        `json:"totalResults"`
	StartIndex   int        `json:"startIndex,omitempty"`
	ItemsPerPage int        `json:"itemsPerPage,omitempty"`
	Resources    []Resource `json:"-"`
}

func (l *ListResponse) ResourceSchemas() []string {
	if len(l.Schemas) > 0 {
		return l.Schemas
	}

	return []string{MessageListResponse}
}

func (l *ListResponse) ResourceID() string {
	return ""
}

// MarshalJSON re-emits the envelope with the decoded members in place.
func (l *ListResponse) MarshalJSON() ([]byte, error) {
	envelope := ListEnvelope{
		Schemas:      l.ResourceSchemas(),
		TotalResults: l.TotalResults,
		StartIndex:   l.StartIndex,
		ItemsPerPage: l.ItemsPerPage,
	}

	for _, res := range l.Resources {
		member, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}

		envelope.Resources = append(envelope.Resources, member)
	}

	return json.Marshal(&envelope)
}

// ListEnvelope is the wire form of a ListResponse with the members still
// undecoded.
type ListEnvelope struct {
	Schemas      []string          `json:"schemas,omitempty"`
	TotalResults int               `json:"totalResults"`
	StartIndex   int               `json:"startIndex,omitempty"`
	ItemsPerPage int               `json:"itemsPerPage,omitempty"`
	Resources    []json.RawMessage `json:"Resources,omitempty"`
}
