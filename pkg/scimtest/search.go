package scimtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/scim2/filter-parser/v2"

	"github.com/provision-tools/scim2/pkg/model"
)

// search serves POST /.search across every resource type, RFC 7644
// section 3.4.3. An empty body means an unconstrained search.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ScimTypeInvalidSyntax, "failed to read request body")
		return
	}

	sr := model.SearchRequest{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &sr); err != nil {
			writeError(w, http.StatusBadRequest, model.ScimTypeInvalidSyntax, "request body is not a valid search request")
			return
		}
	}

	s.respondList(w, &sr)
}

// listRoot serves GET / across every resource type, RFC 7644
// section 3.4.2.1.
func (s *Server) listRoot(w http.ResponseWriter, r *http.Request) {
	s.respondList(w, searchFromQuery(r.URL.Query()))
}

func searchFromQuery(values url.Values) *model.SearchRequest {
	startIndex, _ := strconv.Atoi(values.Get("startIndex"))
	count, _ := strconv.Atoi(values.Get("count"))

	return &model.SearchRequest{
		Attributes:         values["attributes"],
		ExcludedAttributes: values["excludedAttributes"],
		Filter:             values.Get("filter"),
		SortBy:             values.Get("sortBy"),
		SortOrder:          model.SortOrder(values.Get("sortOrder")),
		StartIndex:         startIndex,
		Count:              count,
	}
}

func (s *Server) respondList(w http.ResponseWriter, sr *model.SearchRequest) {
	members := []map[string]any{}
	for _, store := range []*Store{s.users, s.groups} {
		members = append(members, store.renderAll()...)
	}

	if sr.Filter != "" {
		expr, err := filter.ParseFilter([]byte(sr.Filter))
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ScimTypeInvalidFilter, fmt.Sprintf("invalid filter %q", sr.Filter))
			return
		}

		filtered := make([]map[string]any, 0, len(members))

		for _, member := range members {
			if matchExpression(expr, member) {
				filtered = append(filtered, member)
			}
		}

		members = filtered
	}

	if sr.SortBy != "" {
		sortBy := filter.AttributePath{AttributeName: sr.SortBy}

		slices.SortStableFunc(members, func(a, b map[string]any) int {
			left, _ := lookupAttribute(a, sortBy)
			right, _ := lookupAttribute(b, sortBy)

			result := strings.Compare(fmt.Sprint(left), fmt.Sprint(right))
			if sr.SortOrder == model.SortDescending {
				return -result
			}

			return result
		})
	}

	total := len(members)

	start := sr.StartIndex
	if start < 1 {
		start = 1
	}

	if start-1 < len(members) {
		members = members[start-1:]
	} else {
		members = nil
	}

	if sr.Count > 0 && len(members) > sr.Count {
		members = members[:sr.Count]
	}

	switch {
	case len(sr.Attributes) > 0:
		for i, member := range members {
			members[i] = projectAttributes(member, sr.Attributes)
		}
	case len(sr.ExcludedAttributes) > 0:
		for _, member := range members {
			dropAttributes(member, sr.ExcludedAttributes)
		}
	}

	payload := map[string]any{
		"schemas":      []any{model.MessageListResponse},
		"totalResults": total,
		"startIndex":   start,
		"itemsPerPage": len(members),
	}

	if len(members) > 0 {
		payload["Resources"] = members
	}

	w.Header().Set("Content-Type", "application/scim+json")
	w.WriteHeader(http.StatusOK)

	_ = json.NewEncoder(w).Encode(payload)
}

// matchExpression evaluates the filter grammar subset the provider
// supports: attribute comparisons, presence, value paths, and
// and/or/not grouping.
func matchExpression(expr filter.Expression, attrs map[string]any) bool {
	switch e := expr.(type) {
	case *filter.AttributeExpression:
		return matchAttribute(e, attrs)
	case *filter.LogicalExpression:
		if e.Operator == filter.AND {
			return matchExpression(e.Left, attrs) && matchExpression(e.Right, attrs)
		}

		return matchExpression(e.Left, attrs) || matchExpression(e.Right, attrs)
	case *filter.NotExpression:
		return !matchExpression(e.Expression, attrs)
	case *filter.ValuePath:
		members, _ := attrs[e.AttributePath.AttributeName].([]any)
		for _, item := range members {
			if member, ok := item.(map[string]any); ok && matchExpression(e.ValueFilter, member) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func matchAttribute(e *filter.AttributeExpression, attrs map[string]any) bool {
	value, ok := lookupAttribute(attrs, e.AttributePath)
	if e.Operator == filter.PR {
		return ok && value != nil
	}

	if !ok {
		return false
	}

	given := strings.ToLower(fmt.Sprint(value))
	compare := strings.ToLower(fmt.Sprint(e.CompareValue))

	switch e.Operator {
	case filter.EQ:
		return given == compare
	case filter.NE:
		return given != compare
	case filter.CO:
		return strings.Contains(given, compare)
	case filter.SW:
		return strings.HasPrefix(given, compare)
	case filter.EW:
		return strings.HasSuffix(given, compare)
	default:
		return false
	}
}

// lookupAttribute resolves an attribute path against a rendered resource.
// Attribute names are case-insensitive on the wire.
func lookupAttribute(attrs map[string]any, path filter.AttributePath) (any, bool) {
	value, ok := attrs[path.AttributeName]
	if !ok {
		for key, item := range attrs {
			if strings.EqualFold(key, path.AttributeName) {
				value, ok = item, true
				break
			}
		}
	}

	if !ok {
		return nil, false
	}

	if path.SubAttribute == nil {
		return value, true
	}

	switch v := value.(type) {
	case map[string]any:
		sub, ok := v[*path.SubAttribute]
		return sub, ok
	case []any:
		for _, item := range v {
			if member, ok := item.(map[string]any); ok {
				if sub, ok := member[*path.SubAttribute]; ok {
					return sub, true
				}
			}
		}
	}

	return nil, false
}

// projectAttributes keeps the requested attributes. The schemas, id, and
// meta attributes are always returned, RFC 7644 section 3.4.2.5.
func projectAttributes(member map[string]any, attributes []string) map[string]any {
	out := map[string]any{
		"schemas": member["schemas"],
		"id":      member["id"],
		"meta":    member["meta"],
	}

	for _, name := range attributes {
		for key, value := range member {
			if strings.EqualFold(key, name) {
				out[key] = value
			}
		}
	}

	return out
}

func dropAttributes(member map[string]any, excluded []string) {
	for _, name := range excluded {
		for key := range member {
			switch key {
			case "schemas", "id", "meta":
				continue
			}

			if strings.EqualFold(key, name) {
				delete(member, key)
			}
		}
	}
}
