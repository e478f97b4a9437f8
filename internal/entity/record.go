// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package entity

import (
	"fmt"

	apperrors "sqlbridge/cli/internal/errors"
)

// Record is the field map of one entity instance. Only declared fields can be
// read or written. A field can be unset, set to nil (SQL NULL), or set to a
// value.
type Record struct {
	desc   *Descriptor
	values map[string]any
}

// NewRecord returns an empty record for d.
func NewRecord(d *Descriptor) *Record {
	return &Record{desc: d, values: make(map[string]any)}
}

func (r *Record) Descriptor() *Descriptor { return r.desc }

func (r *Record) unknown(name string) error {
	return apperrors.Newf(apperrors.InvalidArgument, "field %q is not declared on entity %s", name, r.desc.Name())
}

// Set assigns a value to a declared field.
func (r *Record) Set(name string, v any) error {
	if !r.desc.Has(name) {
		return r.unknown(name)
	}
	r.values[name] = v
	return nil
}

// Get returns the value of a declared field and whether it is set.
func (r *Record) Get(name string) (any, bool, error) {
	if !r.desc.Has(name) {
		return nil, false, r.unknown(name)
	}
	v, ok := r.values[name]
	return v, ok, nil
}

// Unset removes the value of a declared field.
func (r *Record) Unset(name string) error {
	if !r.desc.Has(name) {
		return r.unknown(name)
	}
	delete(r.values, name)
	return nil
}

// IsSet reports whether name holds a value, nil included.
func (r *Record) IsSet(name string) bool {
	_, ok := r.values[name]
	return ok
}

// IsEmpty reports whether name is unset, nil, or the empty string.
func (r *Record) IsEmpty(name string) bool {
	v, ok := r.values[name]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// Value returns the value of name without validation. Callers use it after
// checking the descriptor themselves.
func (r *Record) Value(name string) any { return r.values[name] }

// Values returns a copy of the set values.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// KeyValues returns the key values in key order. It fails when a key is
// unset or nil, since the record could not be addressed.
func (r *Record) KeyValues() ([]any, error) {
	keys := r.desc.Keys()
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		v, ok := r.values[k]
		if !ok || v == nil {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "key field %q of entity %s has no value", k, r.desc.Name())
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.desc.Name(), r.values)
}
