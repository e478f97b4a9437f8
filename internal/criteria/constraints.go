// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package criteria

import (
	"sort"

	"sqlbridge/cli/internal/entity"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortPair is one ORDER BY term.
type SortPair struct {
	Field     string
	Direction Direction
}

// Forced is a predicate applied regardless of client input.
type Forced struct {
	Field    string
	Operator Operator
	Value    any
}

// Constraints is the normalized form of a client request's filtering,
// sorting and pagination.
//
// StartRow and EndRow are zero-based; EndRow is exclusive, so the page size
// is EndRow-StartRow. Paged is false when neither bound was supplied.
type Constraints struct {
	StartRow int
	EndRow   int
	Paged    bool
	Sort     []SortPair
	// Filters maps a field to its comparison operator. Values of declared
	// fields live in the record; values of undeclared fields live in Extra.
	Filters map[string]Operator
	Extra   map[string]any
	Forced  []Forced
}

// NewConstraints returns empty constraints.
func NewConstraints() *Constraints {
	return &Constraints{
		Filters: make(map[string]Operator),
		Extra:   make(map[string]any),
	}
}

// Count is the requested page size. It may be zero or negative.
func (c *Constraints) Count() int { return c.EndRow - c.StartRow }

// Force appends a predicate that does not depend on client input.
func (c *Constraints) Force(field string, op Operator, value any) {
	c.Forced = append(c.Forced, Forced{Field: field, Operator: op, Value: value})
}

// FilterFields returns filter field names in a deterministic order: declared
// fields in declaration order, then undeclared fields sorted by name.
func (c *Constraints) FilterFields(d *entity.Descriptor) []string {
	out := make([]string, 0, len(c.Filters))
	var extra []string
	for name := range c.Filters {
		if !d.Has(name) {
			extra = append(extra, name)
		}
	}
	for _, f := range d.Fields() {
		if _, ok := c.Filters[f.Name]; ok {
			out = append(out, f.Name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
