package scimtest

import (
	"strings"

	"github.com/elimity-com/scim"
	serrors "github.com/elimity-com/scim/errors"
	"github.com/scim2/filter-parser/v2"
)

// Patch semantics follow RFC 7644 section 3.5.2, scoped to the attribute
// shapes the core schemas produce: scalars, complex attributes, and lists
// of complex members addressed by an eq value filter.

func applyPatchAdd(attrs scim.ResourceAttributes, op scim.PatchOperation) (scim.ResourceAttributes, error) {
	if op.Path == nil {
		values, ok := op.Value.(map[string]any)
		if !ok {
			return nil, serrors.ScimErrorInvalidSyntax
		}

		for key, value := range values {
			attrs[key] = value
		}

		return attrs, nil
	}

	name := op.Path.AttributePath.AttributeName

	if op.Path.ValueExpression == nil {
		if sub := op.Path.AttributePath.SubAttribute; sub != nil {
			member, ok := attrs[name].(map[string]any)
			if !ok {
				member = map[string]any{}
			}

			member[*sub] = op.Value
			attrs[name] = member

			return attrs, nil
		}

		if values, ok := op.Value.([]any); ok {
			current, _ := attrs[name].([]any)
			attrs[name] = append(current, values...)

			return attrs, nil
		}

		attrs[name] = op.Value

		return attrs, nil
	}

	expr, err := valueExpression(op.Path)
	if err != nil {
		return nil, err
	}

	members, _ := attrs[name].([]any)
	for _, item := range members {
		member, ok := item.(map[string]any)
		if !ok || !matchesValueFilter(member, expr) {
			continue
		}

		if op.Path.SubAttribute != nil {
			member[*op.Path.SubAttribute] = op.Value
		}

		return attrs, nil
	}

	// no member matched, add one carrying the filter value
	member := map[string]any{expr.AttributePath.AttributeName: expr.CompareValue}
	if op.Path.SubAttribute != nil {
		member[*op.Path.SubAttribute] = op.Value
	}

	attrs[name] = append(members, member)

	return attrs, nil
}

func applyPatchRemove(attrs scim.ResourceAttributes, op scim.PatchOperation) (scim.ResourceAttributes, error) {
	if op.Path == nil {
		return nil, serrors.ScimErrorInvalidSyntax
	}

	name := op.Path.AttributePath.AttributeName

	if op.Path.ValueExpression == nil {
		if sub := op.Path.AttributePath.SubAttribute; sub != nil {
			if member, ok := attrs[name].(map[string]any); ok {
				delete(member, *sub)
			}

			return attrs, nil
		}

		delete(attrs, name)

		return attrs, nil
	}

	expr, err := valueExpression(op.Path)
	if err != nil {
		return nil, err
	}

	members, _ := attrs[name].([]any)

	index := -1

	for i, item := range members {
		if member, ok := item.(map[string]any); ok && matchesValueFilter(member, expr) {
			index = i
			break
		}
	}

	if index == -1 {
		return nil, serrors.ScimErrorMutability
	}

	if op.Path.SubAttribute != nil {
		member, _ := members[index].(map[string]any)
		delete(member, *op.Path.SubAttribute)

		return attrs, nil
	}

	remaining := append(members[:index], members[index+1:]...)
	if len(remaining) == 0 {
		delete(attrs, name)
	} else {
		attrs[name] = remaining
	}

	return attrs, nil
}

func applyPatchReplace(attrs scim.ResourceAttributes, op scim.PatchOperation) (scim.ResourceAttributes, error) {
	if op.Path == nil {
		values, ok := op.Value.(map[string]any)
		if !ok {
			return nil, serrors.ScimErrorInvalidSyntax
		}

		for key, value := range values {
			attrs[key] = value
		}

		return attrs, nil
	}

	name := op.Path.AttributePath.AttributeName

	if op.Path.ValueExpression == nil {
		if sub := op.Path.AttributePath.SubAttribute; sub != nil {
			member, ok := attrs[name].(map[string]any)
			if !ok {
				member = map[string]any{}
			}

			member[*sub] = op.Value
			attrs[name] = member

			return attrs, nil
		}

		attrs[name] = op.Value

		return attrs, nil
	}

	expr, err := valueExpression(op.Path)
	if err != nil {
		return nil, err
	}

	members, _ := attrs[name].([]any)
	for i, item := range members {
		member, ok := item.(map[string]any)
		if !ok || !matchesValueFilter(member, expr) {
			continue
		}

		if op.Path.SubAttribute != nil {
			member[*op.Path.SubAttribute] = op.Value
			return attrs, nil
		}

		replacement, ok := op.Value.(map[string]any)
		if !ok {
			return nil, serrors.ScimErrorInvalidSyntax
		}

		members[i] = replacement

		return attrs, nil
	}

	return nil, serrors.ScimErrorMutability
}

func valueExpression(path *filter.Path) (*filter.AttributeExpression, error) {
	expr, ok := path.ValueExpression.(*filter.AttributeExpression)
	if !ok || expr.Operator != filter.EQ {
		return nil, serrors.ScimErrorInvalidPath
	}

	return expr, nil
}

func matchesValueFilter(member map[string]any, expr *filter.AttributeExpression) bool {
	value, ok := member[expr.AttributePath.AttributeName].(string)
	compare, _ := expr.CompareValue.(string)

	return ok && strings.EqualFold(value, compare)
}
