// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// RoutineKind distinguishes functions from procedures.
type RoutineKind int

const (
	Function RoutineKind = iota
	Procedure
)

// ResultShape says whether a function returns one value or a row set.
type ResultShape int

const (
	Scalar ResultShape = iota
	Records
)

// ArgMode is the direction of a routine argument.
type ArgMode int

const (
	ArgIn ArgMode = iota
	ArgOut
)

// Arg is one routine argument.
type Arg struct {
	Name  string
	Value any
	// Type drives literal rendering for string values; bool and numeric Go
	// values are rendered by their own type.
	Type entity.FieldType
	// TypeName, when set, wraps the literal in a cast; Size is appended as a
	// length, e.g. varchar(20).
	TypeName string
	Size     int
	Mode     ArgMode
}

// Call describes a stored routine invocation.
type Call struct {
	Routine string
	Kind    RoutineKind
	Returns ResultShape
	Args    []Arg
	// Named renders arguments as name/value pairs where the product allows.
	Named bool
}

// HasOutput reports whether any argument is an output argument.
func (c Call) HasOutput() bool {
	for _, a := range c.Args {
		if a.Mode == ArgOut {
			return true
		}
	}
	return false
}

func (c Call) validate() error {
	if strings.TrimSpace(c.Routine) == "" {
		return apperrors.New(apperrors.InvalidArgument, "routine name is required")
	}
	for i, a := range c.Args {
		if a.Mode == ArgOut && a.Name == "" {
			return apperrors.Newf(apperrors.InvalidArgument, "output argument %d of %s needs a name", i+1, c.Routine)
		}
		if c.Named && a.Name == "" {
			return apperrors.Newf(apperrors.InvalidArgument, "argument %d of %s needs a name for a named call", i+1, c.Routine)
		}
	}
	return nil
}

func (a Arg) castType() string {
	if a.Size > 0 {
		return fmt.Sprintf("%s(%d)", a.TypeName, a.Size)
	}
	return a.TypeName
}

func (a Arg) fieldType() entity.FieldType {
	switch a.Value.(type) {
	case bool:
		return entity.TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return entity.TypeNumeric
	}
	return a.Type
}

// renderArg renders the value of an input argument with its optional cast.
func renderArg(d Dialect, a Arg) string {
	lit := d.Literal(a.Value, a.fieldType())
	if a.TypeName != "" {
		return d.Cast(lit, a.castType())
	}
	return lit
}
