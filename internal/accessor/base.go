// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package accessor

import (
	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
	"sqlbridge/cli/internal/sqlbuild"
)

// Base implements Accessor for any descriptor.
type Base struct {
	d    dialect.Dialect
	desc *entity.Descriptor
	// computed holds the expressions of computed fields, applied to every
	// SELECT before filtering so predicates on them use the expression.
	computed []sqlbuild.Column
}

// New returns the generic accessor for desc.
func New(d dialect.Dialect, desc *entity.Descriptor) *Base {
	return &Base{d: d, desc: desc}
}

func (b *Base) Descriptor() *entity.Descriptor { return b.desc }
func (b *Base) Dialect() dialect.Dialect       { return b.d }

// Compute registers the SQL expression of a computed field.
func (b *Base) Compute(name, expr string) {
	b.computed = append(b.computed, sqlbuild.Column{Name: name, Expr: expr})
}

func (b *Base) newSelect() *sqlbuild.Select {
	sel := sqlbuild.NewSelect(b.d, b.desc)
	for _, c := range b.computed {
		sel.Compute(c.Name, c.Expr)
	}
	return sel
}

// FetchSelect returns the filtered, sorted and paged SELECT for cons.
func (b *Base) FetchSelect(rec *entity.Record, cons *criteria.Constraints) (*sqlbuild.Select, error) {
	sel := b.newSelect()
	if err := sel.Apply(rec, cons); err != nil {
		return nil, err
	}
	return sel, nil
}

func (b *Base) FetchQuery(rec *entity.Record, cons *criteria.Constraints) (*Fetch, error) {
	sel, err := b.FetchSelect(rec, cons)
	if err != nil {
		return nil, err
	}
	return &Fetch{SQL: sel.SQL(), Count: sel.CountSQL()}, nil
}

// ReadQuery selects the single row addressed by the record's key.
func (b *Base) ReadQuery(rec *entity.Record) (string, error) {
	where, err := b.KeyPredicates(rec)
	if err != nil {
		return "", err
	}
	sel := b.newSelect()
	sel.Where = where
	return sel.SQL(), nil
}

// KeyPredicates renders key = value for every key field.
func (b *Base) KeyPredicates(rec *entity.Record) ([]string, error) {
	values, err := rec.KeyValues()
	if err != nil {
		return nil, err
	}
	keys := b.desc.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = b.d.QuoteIdent(k) + " = " + b.d.Literal(values[i], b.desc.TypeOf(k))
	}
	return out, nil
}

// versionPredicate matches the version the client last read. ok is false
// when the entity is not versioned or the record carries no version.
func (b *Base) versionPredicate(rec *entity.Record) (string, bool) {
	name, versioned := b.desc.VersionField()
	if !versioned || rec.IsEmpty(name) {
		return "", false
	}
	return b.d.QuoteIdent(name) + " = " + b.d.Literal(rec.Value(name), entity.TypeRowVersion), true
}

// AddColumns lists the insertable fields that hold a value, in declaration
// order, as rendered literals.
func (b *Base) AddColumns(rec *entity.Record) []sqlbuild.Assign {
	var out []sqlbuild.Assign
	for _, f := range b.desc.Fields() {
		if !f.Addable() || f.Type == entity.TypeRowVersion || !rec.IsSet(f.Name) {
			continue
		}
		out = append(out, sqlbuild.Assign{Column: f.Name, Value: b.d.Literal(rec.Value(f.Name), f.Type)})
	}
	return out
}

func (b *Base) AddQuery(rec *entity.Record) (string, error) {
	cols := b.AddColumns(rec)
	if len(cols) == 0 {
		return "", apperrors.Newf(apperrors.InvalidArgument, "no insertable values for entity %s", b.desc.Name())
	}
	if _, err := rec.KeyValues(); err != nil {
		return "", err
	}
	return sqlbuild.Insert(b.d, b.desc.Table(), cols), nil
}

// UpdateStatement is the generic UPDATE: every updatable non-key field that
// holds a value, addressed by key and, for versioned entities, by version.
func (b *Base) UpdateStatement(rec *entity.Record) (*Write, error) {
	where, err := b.KeyPredicates(rec)
	if err != nil {
		return nil, err
	}
	w := &Write{Table: b.desc.Table(), Where: where}
	for _, f := range b.desc.Fields() {
		if !f.Updatable() || b.desc.IsKey(f.Name) || f.Type == entity.TypeRowVersion || !rec.IsSet(f.Name) {
			continue
		}
		w.Set = append(w.Set, sqlbuild.Assign{Column: f.Name, Value: b.d.Literal(rec.Value(f.Name), f.Type)})
	}
	if len(w.Set) == 0 {
		return nil, apperrors.Newf(apperrors.InvalidArgument, "no updatable values for entity %s", b.desc.Name())
	}
	if name, ok := b.desc.VersionField(); ok {
		q := b.d.QuoteIdent(name)
		w.Set = append(w.Set, sqlbuild.Assign{Column: name, Value: q + " + 1"})
		if p, ok := b.versionPredicate(rec); ok {
			w.Where = append(w.Where, p)
		}
	}
	return w, nil
}

func (b *Base) UpdateQuery(rec *entity.Record) (string, error) {
	w, err := b.UpdateStatement(rec)
	if err != nil {
		return "", err
	}
	return w.UpdateSQL(b.d), nil
}

// RemoveStatement is the generic DELETE by key and version.
func (b *Base) RemoveStatement(rec *entity.Record) (*Write, error) {
	where, err := b.KeyPredicates(rec)
	if err != nil {
		return nil, err
	}
	if p, ok := b.versionPredicate(rec); ok {
		where = append(where, p)
	}
	return &Write{Table: b.desc.Table(), Where: where}, nil
}

func (b *Base) RemoveQuery(rec *entity.Record) (string, error) {
	w, err := b.RemoveStatement(rec)
	if err != nil {
		return "", err
	}
	return w.DeleteSQL(b.d), nil
}
