// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlbuild renders SELECT, INSERT, UPDATE and DELETE statements for
// an entity descriptor in a given SQL dialect.
//
// SELECT statements are assembled from a structured clause model (columns,
// source, predicates, ordering, page) so that accessors can add computed
// columns and forced predicates without touching generated text.
package sqlbuild

import (
	"strings"

	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
)

// Column is one entry of the select list. Expr is empty for a plain column.
type Column struct {
	Name string
	Expr string
}

// Order is one ORDER BY term; Expr is already rendered.
type Order struct {
	Expr string
	Desc bool
}

// Select is a SELECT statement under construction.
type Select struct {
	d        dialect.Dialect
	desc     *entity.Descriptor
	computed map[string]string
	extra    []Column

	Where   []string
	OrderBy []Order

	paged     bool
	start     int
	count     int
	emptyPage bool
}

// NewSelect starts a SELECT over every stored field of desc.
func NewSelect(d dialect.Dialect, desc *entity.Descriptor) *Select {
	return &Select{d: d, desc: desc, computed: make(map[string]string)}
}

// Compute supplies the expression of a computed field. Declared computed
// fields keep their declaration position in the select list; other names are
// appended after the declared fields in call order.
func (s *Select) Compute(name, expr string) *Select {
	if f, ok := s.desc.Field(name); ok && f.Computed() {
		s.computed[name] = expr
		return s
	}
	for i, c := range s.extra {
		if c.Name == name {
			s.extra[i].Expr = expr
			return s
		}
	}
	s.extra = append(s.extra, Column{Name: name, Expr: expr})
	return s
}

// Columns returns the select list. Computed fields without an expression are
// omitted.
func (s *Select) Columns() []Column {
	out := make([]Column, 0, len(s.desc.Fields())+len(s.extra))
	for _, f := range s.desc.Fields() {
		if !f.Computed() {
			out = append(out, Column{Name: f.Name})
			continue
		}
		if expr, ok := s.computed[f.Name]; ok {
			out = append(out, Column{Name: f.Name, Expr: expr})
		}
	}
	return append(out, s.extra...)
}

// expr is the SQL that yields field name in a predicate.
func (s *Select) expr(name string) string {
	if e, ok := s.computed[name]; ok {
		return e
	}
	for _, c := range s.extra {
		if c.Name == name {
			return c.Expr
		}
	}
	return s.d.QuoteIdent(name)
}

// Filter appends the predicates of cons to the WHERE clause: client filters
// in field order, then forced predicates.
func (s *Select) Filter(rec *entity.Record, cons *criteria.Constraints) error {
	preds, err := Where(s.d, rec, cons, s.expr)
	if err != nil {
		return err
	}
	s.Where = append(s.Where, preds...)
	return nil
}

// Sort sets the ordering from cons, followed by the key fields ascending as
// a tiebreak so pages are stable.
func (s *Select) Sort(cons *criteria.Constraints) {
	s.OrderBy = OrderBy(s.d, s.desc, cons)
}

// Page applies the row window of cons, if any.
func (s *Select) Page(cons *criteria.Constraints) {
	s.paged = cons.Paged
	s.start = cons.StartRow
	s.count = cons.Count()
	if s.paged {
		_, ok := s.d.LimitOffset(s.start, s.count)
		s.emptyPage = !ok
	}
}

// Apply is Filter, Sort and Page in one call.
func (s *Select) Apply(rec *entity.Record, cons *criteria.Constraints) error {
	if err := s.Filter(rec, cons); err != nil {
		return err
	}
	s.Sort(cons)
	s.Page(cons)
	return nil
}

func (s *Select) from() string { return s.d.QuoteIdent(s.desc.Table()) }

func whereClause(preds []string) string {
	if len(preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// SQL renders the statement. The page clause always follows ORDER BY. A page
// the dialect cannot express is replaced by an always-false predicate.
func (s *Select) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	cols := s.Columns()
	if len(cols) == 0 {
		b.WriteString("*")
	}
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		if c.Expr == "" {
			b.WriteString(s.d.QuoteIdent(c.Name))
			continue
		}
		b.WriteString(c.Expr + " AS " + s.d.QuoteIdent(c.Name))
	}
	b.WriteString(" FROM " + s.from())

	preds := s.Where
	if s.emptyPage {
		preds = append(append([]string(nil), preds...), "1 = 0")
	}
	b.WriteString(whereClause(preds))

	if len(s.OrderBy) > 0 {
		terms := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			terms[i] = o.Expr
			if o.Desc {
				terms[i] += " DESC"
			}
		}
		b.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}
	if s.paged && !s.emptyPage {
		clause, _ := s.d.LimitOffset(s.start, s.count)
		b.WriteString(" " + clause)
	}
	return b.String()
}

// CountSQL renders a COUNT(*) over the same predicates, ignoring the page.
func (s *Select) CountSQL() string {
	return "SELECT COUNT(*) FROM " + s.from() + whereClause(s.Where)
}

// OrderBy renders the explicit sort pairs of cons, then every key field not
// already sorted on, ascending.
func OrderBy(d dialect.Dialect, desc *entity.Descriptor, cons *criteria.Constraints) []Order {
	seen := make(map[string]bool)
	var out []Order
	for _, p := range cons.Sort {
		if p.Field == "" || seen[p.Field] {
			continue
		}
		seen[p.Field] = true
		out = append(out, Order{Expr: d.QuoteIdent(p.Field), Desc: p.Direction == criteria.Desc})
	}
	for _, k := range desc.Keys() {
		if !seen[k] {
			out = append(out, Order{Expr: d.QuoteIdent(k)})
		}
	}
	return out
}
