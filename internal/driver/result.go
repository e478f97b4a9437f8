// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// Row maps column names to values. Column order is kept by the owning
// ResultSet.
type Row map[string]any

// ResultSet is one tabular result.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Result is everything a statement produced. Rows are read eagerly; Free
// releases what the server still holds for it (transaction, cursors) and
// returns the driver to the connected state.
type Result struct {
	sets     []ResultSet
	affected int64
	output   Row
	cursor   int

	release func(context.Context) error
	done    func()
	freed   bool
}

func newResult(sets []ResultSet, affected int64) *Result {
	return &Result{sets: sets, affected: affected, cursor: -1}
}

func (r *Result) first() ResultSet {
	if len(r.sets) == 0 {
		return ResultSet{}
	}
	return r.sets[0]
}

// RowCount is the number of rows in the first result set.
func (r *Result) RowCount() int { return len(r.first().Rows) }

// AffectedRows is the number of rows changed by a DML statement.
func (r *Result) AffectedRows() int64 { return r.affected }

// Columns of the first result set, in select-list order.
func (r *Result) Columns() []string { return r.first().Columns }

// Rows of the first result set.
func (r *Result) Rows() []Row { return r.first().Rows }

// Sets returns every result set, for statements that produce several.
func (r *Result) Sets() []ResultSet { return r.sets }

// Output holds the output arguments of a routine call, or nil.
func (r *Result) Output() Row { return r.output }

// Next advances the row cursor over the first result set.
func (r *Result) Next() bool {
	if r.cursor+1 >= r.RowCount() {
		return false
	}
	r.cursor++
	return true
}

// Row is the row under the cursor.
func (r *Result) Row() Row {
	if r.cursor < 0 || r.cursor >= r.RowCount() {
		return nil
	}
	return r.first().Rows[r.cursor]
}

// Free releases the result. It is safe to call more than once.
func (r *Result) Free(ctx context.Context) error {
	if r == nil || r.freed {
		return nil
	}
	r.freed = true
	var err error
	if r.release != nil {
		err = r.release(ctx)
	}
	if r.done != nil {
		r.done()
	}
	return err
}

// takeOutput exposes the first row of the last set as the output arguments.
func (r *Result) takeOutput() {
	if len(r.sets) == 0 {
		return
	}
	if last := r.sets[len(r.sets)-1]; len(last.Rows) > 0 {
		r.output = last.Rows[0]
	}
}

// normalizeValue converts driver values into plain Go values.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		return normalizeValue(val)
	}
	return v
}
