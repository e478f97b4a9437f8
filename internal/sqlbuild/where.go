// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlbuild

import (
	"fmt"
	"strings"

	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// Where renders the predicates of cons. Client filters come first, in
// declaration order then undeclared names sorted; forced predicates follow.
// exprOf maps a field to its SQL expression; nil means the quoted name.
func Where(d dialect.Dialect, rec *entity.Record, cons *criteria.Constraints, exprOf func(string) string) ([]string, error) {
	if exprOf == nil {
		exprOf = d.QuoteIdent
	}
	desc := rec.Descriptor()
	var preds []string
	for _, name := range cons.FilterFields(desc) {
		var v any
		if desc.Has(name) {
			if !rec.IsSet(name) {
				continue
			}
			v = rec.Value(name)
		} else {
			var ok bool
			if v, ok = cons.Extra[name]; !ok {
				continue
			}
		}
		p, err := Predicate(d, exprOf(name), cons.Filters[name], v, desc.TypeOf(name))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	for _, f := range cons.Forced {
		p, err := Predicate(d, exprOf(f.Field), f.Operator, f.Value, desc.TypeOf(f.Field))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Predicate renders one comparison of expr against v.
func Predicate(d dialect.Dialect, expr string, op criteria.Operator, v any, t entity.FieldType) (string, error) {
	switch op {
	case criteria.OpIsNull:
		return expr + " IS NULL", nil
	case criteria.OpNotNull:
		return expr + " IS NOT NULL", nil
	}
	if v == nil {
		switch op {
		case criteria.OpEquals, criteria.OpIEquals:
			return expr + " IS NULL", nil
		case criteria.OpNotEqual:
			return expr + " IS NOT NULL", nil
		}
		return "", apperrors.Newf(apperrors.InvalidArgument, "operator %s needs a value for %s", op, expr)
	}

	switch op {
	case criteria.OpEquals, criteria.OpNotEqual, criteria.OpLessThan, criteria.OpLessOrEqual,
		criteria.OpGreaterThan, criteria.OpGreaterOrEqual:
		return expr + " " + string(op) + " " + d.Literal(v, t), nil
	case criteria.OpIEquals:
		if t != entity.TypeString {
			return expr + " = " + d.Literal(v, t), nil
		}
		return "LOWER(" + expr + ") = LOWER(" + d.Literal(v, t) + ")", nil
	case criteria.OpInSet:
		return inSet(d, expr, v, t), nil
	}

	if t != entity.TypeString {
		expr = d.AsText(expr)
	}
	s := valueText(v)
	switch op {
	case criteria.OpContains:
		return expr + " LIKE " + d.QuoteString("%"+s+"%"), nil
	case criteria.OpIContains:
		return d.ILike(expr, d.QuoteString("%"+s+"%")), nil
	case criteria.OpStartsWith:
		return expr + " LIKE " + d.QuoteString(s+"%"), nil
	case criteria.OpIStartsWith:
		return d.ILike(expr, d.QuoteString(s+"%")), nil
	case criteria.OpEndsWith:
		return expr + " LIKE " + d.QuoteString("%"+s), nil
	case criteria.OpIEndsWith:
		return d.ILike(expr, d.QuoteString("%"+s)), nil
	}
	return "", apperrors.Newf(apperrors.InvalidArgument, "unsupported operator %q", op)
}

// inSet accepts a slice or a comma-separated string. An empty set matches
// nothing.
func inSet(d dialect.Dialect, expr string, v any, t entity.FieldType) string {
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	default:
		for _, s := range strings.Split(valueText(v), ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
	}
	if len(items) == 0 {
		return "1 = 0"
	}
	lits := make([]string, len(items))
	for i, it := range items {
		lits[i] = d.Literal(it, t)
	}
	return expr + " IN (" + strings.Join(lits, ", ") + ")"
}

func valueText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
