// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package accessor turns a parsed request into the SQL text of one data
// operation. Base covers the generic case; entity accessors embed it, call
// it first and then add their own rules (computed columns, protected-row
// predicates, stored routines).
package accessor

import (
	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	"sqlbridge/cli/internal/sqlbuild"
)

// Accessor builds the statements for the five data operations of an entity.
type Accessor interface {
	Descriptor() *entity.Descriptor
	Dialect() dialect.Dialect

	FetchQuery(rec *entity.Record, cons *criteria.Constraints) (*Fetch, error)
	ReadQuery(rec *entity.Record) (string, error)
	AddQuery(rec *entity.Record) (string, error)
	UpdateQuery(rec *entity.Record) (string, error)
	RemoveQuery(rec *entity.Record) (string, error)
}

// Fetch holds a page query and the matching row count query.
type Fetch struct {
	SQL   string
	Count string
}

// Write is an UPDATE or DELETE before rendering, so that entity accessors can
// append predicates or assignments to the generic statement.
type Write struct {
	Table string
	Set   []sqlbuild.Assign
	Where []string
	// Limit caps the rows touched by an UPDATE; 0 means no cap.
	Limit int
}

// UpdateSQL renders w as an UPDATE.
func (w *Write) UpdateSQL(d dialect.Dialect) string {
	return sqlbuild.Update(d, w.Table, w.Set, w.Where, w.Limit)
}

// DeleteSQL renders w as a DELETE. Set and Limit are ignored.
func (w *Write) DeleteSQL(d dialect.Dialect) string {
	return sqlbuild.Delete(d, w.Table, w.Where)
}
