// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package entity

import (
	apperrors "sqlbridge/cli/internal/errors"
)

// Descriptor is the immutable metadata of an entity: table name, ordered key
// fields and ordered field declarations.
type Descriptor struct {
	name   string
	table  string
	keys   []string
	fields []Field
	index  map[string]int
}

// NewDescriptor validates and builds a descriptor. Keys must be non-empty,
// declared, and field names unique.
func NewDescriptor(name, table string, keys []string, fields ...Field) (*Descriptor, error) {
	if table == "" {
		return nil, apperrors.New(apperrors.InvalidArgument, "entity table name is required")
	}
	if len(keys) == 0 {
		return nil, apperrors.Newf(apperrors.InvalidArgument, "entity %s must declare at least one key field", name)
	}
	d := &Descriptor{
		name:   name,
		table:  table,
		keys:   append([]string(nil), keys...),
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range d.fields {
		if f.Name == "" {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "entity %s has a field without name", name)
		}
		if _, dup := d.index[f.Name]; dup {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "entity %s declares field %q twice", name, f.Name)
		}
		d.index[f.Name] = i
	}
	for _, k := range d.keys {
		f, ok := d.Field(k)
		if !ok {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "entity %s key %q is not a declared field", name, k)
		}
		if f.Computed() {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "entity %s key %q cannot be computed", name, k)
		}
	}
	return d, nil
}

// MustDescriptor is NewDescriptor that panics on invalid declarations.
// It is meant for package-level catalog entries.
func MustDescriptor(name, table string, keys []string, fields ...Field) *Descriptor {
	d, err := NewDescriptor(name, table, keys, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) Name() string  { return d.name }
func (d *Descriptor) Table() string { return d.table }

// Keys returns the key field names in declaration order.
func (d *Descriptor) Keys() []string { return append([]string(nil), d.keys...) }

// Fields returns the field declarations in declaration order.
func (d *Descriptor) Fields() []Field { return append([]Field(nil), d.fields...) }

// Field returns the declaration of name.
func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

// Has reports whether name is a declared field.
func (d *Descriptor) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// IsKey reports whether name is one of the key fields.
func (d *Descriptor) IsKey(name string) bool {
	for _, k := range d.keys {
		if k == name {
			return true
		}
	}
	return false
}

// TypeOf returns the type tag of name. Undeclared names resolve to
// TypeString so they are quoted like strings.
func (d *Descriptor) TypeOf(name string) FieldType {
	if f, ok := d.Field(name); ok {
		return f.Type
	}
	return TypeString
}

// VersionField returns the row-version field, if the entity declares one.
func (d *Descriptor) VersionField() (string, bool) {
	for _, f := range d.fields {
		if f.Type == TypeRowVersion {
			return f.Name, true
		}
	}
	return "", false
}

// Position returns the declaration index of name, or -1.
func (d *Descriptor) Position(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}
