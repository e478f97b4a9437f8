// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package criteria turns SmartClient-style request parameters into
// normalized constraints: filters with their operators, sort pairs and
// pagination, while filling the entity record with the supplied values.
//
// Two input shapes are understood: flat parameters, where every non-reserved
// key is a filter field, and an advanced criteria blob (_acriteria) holding a
// JSON list of {fieldName, operator, value} triples.
package criteria

import (
	"sort"
	"strconv"
	"strings"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// Request parameter keys.
const (
	KeyOperation      = "op"
	KeyOperationID    = "_operationId"
	KeyStartRow       = "_startRow"
	KeyEndRow         = "_endRow"
	KeySortBy         = "_sortBy"
	KeyCriteria       = "_acriteria"
	KeyTextMatchStyle = "_textMatchStyle"
)

// Params is the raw request parameter mapping.
type Params map[string]string

// Request is the parsed form of a data request.
type Request struct {
	Operation   string
	OperationID string
	Constraints *Constraints
}

var reservedKeys = map[string]struct{}{
	KeyOperation:    {},
	"operationType": {},
	"dataSource":    {},
	"componentId":   {},
	"callback":      {},
}

// IsReserved reports whether key is a routing or control key rather than a
// filter field.
func IsReserved(key string) bool {
	if strings.HasPrefix(key, "_") || strings.HasPrefix(key, "isc_") {
		return true
	}
	_, ok := reservedKeys[key]
	return ok
}

// Parse reads params into a Request and fills rec with the supplied field
// values. A missing op is an error, as is malformed _acriteria JSON.
func Parse(params Params, rec *entity.Record) (*Request, error) {
	op, ok := params[KeyOperation]
	if !ok || strings.TrimSpace(op) == "" {
		return nil, apperrors.New(apperrors.MissingOperation, `request parameter "op" is required`)
	}

	req := &Request{
		Operation:   strings.TrimSpace(op),
		OperationID: params[KeyOperationID],
		Constraints: NewConstraints(),
	}
	c := req.Constraints

	var err error
	if c.StartRow, c.Paged, err = intParam(params, KeyStartRow, c.Paged); err != nil {
		return nil, err
	}
	if c.EndRow, c.Paged, err = intParam(params, KeyEndRow, c.Paged); err != nil {
		return nil, err
	}

	if sortBy := strings.TrimSpace(params[KeySortBy]); sortBy != "" {
		if strings.HasPrefix(sortBy, "-") {
			c.Sort = append(c.Sort, SortPair{Field: strings.TrimPrefix(sortBy, "-"), Direction: Desc})
		} else {
			c.Sort = append(c.Sort, SortPair{Field: sortBy, Direction: Asc})
		}
	}

	matchOp := MatchStyleOperator(params[KeyTextMatchStyle])
	if err := parseFlat(params, rec, c, matchOp); err != nil {
		return nil, err
	}

	if blob, ok := params[KeyCriteria]; ok && strings.TrimSpace(blob) != "" {
		ac, err := DecodeAdvanced(blob)
		if err != nil {
			return nil, err
		}
		if err := mergeAdvanced(ac, rec, c); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func intParam(params Params, key string, paged bool) (int, bool, error) {
	raw, ok := params[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, paged, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, paged, apperrors.Wrap(apperrors.InvalidArgument, key+" must be an integer", err)
	}
	return n, true, nil
}

func parseFlat(params Params, rec *entity.Record, c *Constraints, op Operator) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !IsReserved(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	d := rec.Descriptor()
	for _, k := range keys {
		v := params[k]
		c.Filters[k] = op
		if !d.Has(k) {
			c.Extra[k] = v
			continue
		}
		var value any = v
		if strings.EqualFold(v, "null") {
			value = nil
		}
		if err := rec.Set(k, value); err != nil {
			return err
		}
	}
	return nil
}

// mergeAdvanced fills fields from criteria only where no direct value exists.
func mergeAdvanced(ac *AdvancedCriteria, rec *entity.Record, c *Constraints) error {
	d := rec.Descriptor()
	for _, cr := range ac.Flatten() {
		value := normalizeJSONValue(cr.Value)
		op := NormalizeOperator(cr.Operator)
		if d.Has(cr.FieldName) {
			if !rec.IsEmpty(cr.FieldName) {
				continue
			}
			if err := rec.Set(cr.FieldName, value); err != nil {
				return err
			}
			c.Filters[cr.FieldName] = op
			continue
		}
		if existing, ok := c.Extra[cr.FieldName]; ok && existing != nil && existing != "" {
			continue
		}
		c.Extra[cr.FieldName] = value
		c.Filters[cr.FieldName] = op
	}
	return nil
}
