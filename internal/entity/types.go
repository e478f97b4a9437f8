// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package entity describes business record types: their table, key fields,
// declared fields with type and operation metadata, and a validated field map
// holding the values of one record during a request.
//
// Field access is checked against the descriptor. Reading or writing a field
// that is not declared fails with an invalid-argument error, which guards
// against typos in request parameters and schema drift.
package entity

// FieldType is the semantic type tag of a field. It decides how values are
// quoted and cast when they are rendered into SQL.
type FieldType int

const (
	// TypeString is the default: values are rendered as quoted string literals.
	TypeString FieldType = iota
	// TypeNumeric values are rendered unquoted when they parse as numbers.
	TypeNumeric
	// TypeBoolean values are rendered as the dialect's boolean literal.
	TypeBoolean
	// TypeDate values are rendered as quoted literals cast to a date.
	TypeDate
	// TypeRowVersion marks the optimistic concurrency token of a row.
	TypeRowVersion
)

func (t FieldType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeRowVersion:
		return "rowversion"
	default:
		return "string"
	}
}

// FieldOp restricts the operations a field takes part in. The zero value
// means the field is selected, inserted and updated normally.
type FieldOp uint8

const (
	// OpComputed fields are produced by an expression at fetch time and never
	// appear in INSERT or UPDATE value lists.
	OpComputed FieldOp = 1 << iota
	// OpReadOnly fields are selected but never written.
	OpReadOnly
	// OpAddOnly fields are written when a record is created and never updated.
	OpAddOnly
	// OpUpdateOnly fields are written on update and skipped on add.
	OpUpdateOnly
)

// Has reports whether all bits of o are set.
func (f FieldOp) Has(o FieldOp) bool { return f&o == o }

// Field declares one field of an entity.
type Field struct {
	Name string
	Type FieldType
	Ops  FieldOp
}

// NewField declares a field with the given type and operation restrictions.
func NewField(name string, t FieldType, ops ...FieldOp) Field {
	f := Field{Name: name, Type: t}
	for _, o := range ops {
		f.Ops |= o
	}
	return f
}

// Computed reports whether the field is computed.
func (f Field) Computed() bool { return f.Ops.Has(OpComputed) }

// Addable reports whether the field may appear in an add (insert) value list.
func (f Field) Addable() bool {
	return !f.Ops.Has(OpComputed) && !f.Ops.Has(OpReadOnly) && !f.Ops.Has(OpUpdateOnly)
}

// Updatable reports whether the field may appear in an update SET list.
func (f Field) Updatable() bool {
	return !f.Ops.Has(OpComputed) && !f.Ops.Has(OpReadOnly) && !f.Ops.Has(OpAddOnly)
}
