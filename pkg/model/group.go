package model

// Group is the core "Group" resource defined in RFC 7643 section 4.2.
type Group struct {
	Schemas    []string `json:"schemas,omitempty"`
	ID         string   `json:"id,omitempty"`
	ExternalID string   `json:"externalId,omitempty"`
	Meta       *Meta    `json:"meta,omitempty"`

	DisplayName string        `json:"displayName,omitempty"`
	Members     []GroupMember `json:"members,omitempty"`
}

func (g *Group) ResourceSchemas() []string {
	if len(g.Schemas) > 0 {
		return g.Schemas
	}

	return []string{SchemaGroup}
}

func (g *Group) ResourceID() string {
	return g.ID
}

// A list of members of the Group.
type GroupMember struct {
	Value   string `json:"value,omitempty"`
	Ref     string `json:"$ref,omitempty"`
	Type    string `json:"type,omitempty"`
	Display string `json:"display,omitempty"`
}
