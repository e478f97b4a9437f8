// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package accessor

import (
	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	"sqlbridge/cli/internal/sqlbuild"
)

const protectedSuffix = "_protected"

// Protected guards writes on entities with a protected flag: updates and
// deletes only match rows whose flag is false.
type Protected struct {
	*Base
	field string
}

// NewProtected wraps the generic accessor with the guard on field.
func NewProtected(d dialect.Dialect, desc *entity.Descriptor, field string) *Protected {
	return &Protected{Base: New(d, desc), field: field}
}

// NewPaises returns the accessor for countries, guarded on paises_protected.
func NewPaises(d dialect.Dialect, desc *entity.Descriptor) *Protected {
	return NewProtected(d, desc, "paises"+protectedSuffix)
}

// guard renders the protected flag as a forced predicate, so it never depends
// on client filters.
func (p *Protected) guard(rec *entity.Record) ([]string, error) {
	cons := criteria.NewConstraints()
	cons.Force(p.field, criteria.OpEquals, false)
	return sqlbuild.Where(p.d, rec, cons, nil)
}

func (p *Protected) UpdateQuery(rec *entity.Record) (string, error) {
	w, err := p.Base.UpdateStatement(rec)
	if err != nil {
		return "", err
	}
	g, err := p.guard(rec)
	if err != nil {
		return "", err
	}
	w.Where = append(w.Where, g...)
	return w.UpdateSQL(p.d), nil
}

func (p *Protected) RemoveQuery(rec *entity.Record) (string, error) {
	w, err := p.Base.RemoveStatement(rec)
	if err != nil {
		return "", err
	}
	g, err := p.guard(rec)
	if err != nil {
		return "", err
	}
	w.Where = append(w.Where, g...)
	return w.DeleteSQL(p.d), nil
}
