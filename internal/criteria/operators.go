// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package criteria

import "strings"

// Operator is a normalized filter operator. Plain comparisons keep their SQL
// symbol; the other operators use the SmartClient operator names.
type Operator string

const (
	OpEquals         Operator = "="
	OpNotEqual       Operator = "<>"
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="

	OpIEquals     Operator = "iEquals"
	OpIContains   Operator = "iContains"
	OpContains    Operator = "contains"
	OpIStartsWith Operator = "iStartsWith"
	OpStartsWith  Operator = "startsWith"
	OpIEndsWith   Operator = "iEndsWith"
	OpEndsWith    Operator = "endsWith"
	OpIsNull      Operator = "isNull"
	OpNotNull     Operator = "notNull"
	OpInSet       Operator = "inSet"
)

var operatorTable = map[string]Operator{
	"=":              OpEquals,
	"==":             OpEquals,
	"equals":         OpEquals,
	"!=":             OpNotEqual,
	"<>":             OpNotEqual,
	"notequal":       OpNotEqual,
	"<":              OpLessThan,
	"lessthan":       OpLessThan,
	"<=":             OpLessOrEqual,
	"lessorequal":    OpLessOrEqual,
	">":              OpGreaterThan,
	"greaterthan":    OpGreaterThan,
	">=":             OpGreaterOrEqual,
	"greaterorequal": OpGreaterOrEqual,
	"iequals":        OpIEquals,
	"icontains":      OpIContains,
	"contains":       OpContains,
	"istartswith":    OpIStartsWith,
	"startswith":     OpStartsWith,
	"iendswith":      OpIEndsWith,
	"endswith":       OpEndsWith,
	"isnull":         OpIsNull,
	"notnull":        OpNotNull,
	"inset":          OpInSet,
}

// NormalizeOperator maps a client operator token to an Operator. Unknown
// tokens fall back to equality.
func NormalizeOperator(s string) Operator {
	if op, ok := operatorTable[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op
	}
	return OpEquals
}

// IsComparison reports whether o renders as "lhs symbol rhs".
func (o Operator) IsComparison() bool {
	switch o {
	case OpEquals, OpNotEqual, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return true
	}
	return false
}

// textMatchStyles maps _textMatchStyle values to operators.
var textMatchStyles = map[string]Operator{
	"exact":      OpEquals,
	"substring":  OpIContains,
	"startsWith": OpIStartsWith,
}

// MatchStyleOperator returns the operator for a _textMatchStyle value,
// defaulting to equality.
func MatchStyleOperator(style string) Operator {
	if op, ok := textMatchStyles[style]; ok {
		return op
	}
	return OpEquals
}
