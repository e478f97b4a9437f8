// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package criteria

import (
	"encoding/json"
	"strings"

	apperrors "sqlbridge/cli/internal/errors"
)

// AdvancedCriteria is the structured filter payload sent in _acriteria.
type AdvancedCriteria struct {
	Operator string      `json:"operator"`
	Criteria []Criterion `json:"criteria"`
}

// Criterion is one element of an advanced criteria payload. Nested groups
// carry their own Criteria.
type Criterion struct {
	FieldName string      `json:"fieldName"`
	Operator  string      `json:"operator"`
	Value     any         `json:"value"`
	Criteria  []Criterion `json:"criteria,omitempty"`
}

// DecodeAdvanced decodes an _acriteria blob. Numbers keep their textual form.
func DecodeAdvanced(text string) (*AdvancedCriteria, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var ac AdvancedCriteria
	if err := dec.Decode(&ac); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedCriteria, "cannot decode _acriteria", err)
	}
	return &ac, nil
}

// Flatten returns every leaf criterion, depth first.
func (a *AdvancedCriteria) Flatten() []Criterion {
	var out []Criterion
	var walk func([]Criterion)
	walk = func(cs []Criterion) {
		for _, c := range cs {
			if len(c.Criteria) > 0 {
				walk(c.Criteria)
				continue
			}
			if c.FieldName != "" {
				out = append(out, c)
			}
		}
	}
	walk(a.Criteria)
	return out
}

// normalizeJSONValue turns decoded numbers into their text so that they
// render the same way as flat parameters.
func normalizeJSONValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeJSONValue(e)
		}
		return out
	default:
		return v
	}
}
