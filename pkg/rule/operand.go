// Package rule implements the typed predicate/combinator tree that
// filters descriptors: operators are a closed tagged enum per value
// type rather than operator strings, and operands are a sum type
// dispatched by pattern match rather than a duck-typed object —
// modelled the way a Camlistore-family search constraint tree
// compiles its matcher once per query.
package rule

import (
	"fmt"
	"regexp"
	"time"
)

// ValueType is the closed set of predicate value types.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeString
	TypeRegex
	TypeEnum
	TypeList
	TypeDate
	TypeDateTime
)

// Operator is the closed tagged enum of comparison operators; string
// parsing happens only at the serialisation boundary, in querymodel.
type Operator int

const (
	OpEQ Operator = iota
	OpNE
	OpLT
	OpGT
	OpLE
	OpGE
	OpIN
	OpNotIN
	OpBetween
	OpNotBetween
	OpMatch
	OpNotMatch
)

// Operand is the sum type:
//
//	Operand = Int(i64) | Float(f64) | Date(ts) | String(s) | Regex(r)
//	        | List(Vec<Operand>) | Range(Operand, Operand)
type Operand interface {
	isOperand()
}

type IntOperand int64
type FloatOperand float64
type StringOperand string
type DateOperand time.Time
type RegexOperand struct{ *regexp.Regexp }
type ListOperand []Operand
type RangeOperand struct{ Low, High Operand }

func (IntOperand) isOperand()    {}
func (FloatOperand) isOperand()  {}
func (StringOperand) isOperand() {}
func (DateOperand) isOperand()   {}
func (RegexOperand) isOperand()  {}
func (ListOperand) isOperand()   {}
func (RangeOperand) isOperand()  {}

// allowedOperators is the operator-set-per-type table.
var allowedOperators = map[ValueType]map[Operator]bool{
	TypeInt:      numericOps(),
	TypeFloat:    numericOps(),
	TypeDate:     numericOps(),
	TypeDateTime: numericOps(),
	TypeString: {
		OpEQ: true, OpNE: true, OpIN: true, OpNotIN: true,
	},
	TypeEnum: {
		OpEQ: true, OpNE: true, OpIN: true, OpNotIN: true,
	},
	TypeRegex: {
		OpMatch: true, OpNotMatch: true,
	},
}

func numericOps() map[Operator]bool {
	return map[Operator]bool{
		OpEQ: true, OpNE: true, OpLT: true, OpGT: true, OpLE: true, OpGE: true,
		OpIN: true, OpNotIN: true, OpBetween: true, OpNotBetween: true,
	}
}

var operatorNames = map[Operator]string{
	OpEQ: "EQ", OpNE: "NE", OpLT: "LT", OpGT: "GT", OpLE: "LE", OpGE: "GE",
	OpIN: "IN", OpNotIN: "NOT_IN", OpBetween: "BETWEEN", OpNotBetween: "NOT_BETWEEN",
	OpMatch: "MATCH", OpNotMatch: "NOT_MATCH",
}

func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return "UNKNOWN"
}

// OperatorFromName maps a query document's operator name back to its
// Operator value — string parsing only happens at this serialisation
// boundary.
func OperatorFromName(name string) (Operator, bool) {
	for op, s := range operatorNames {
		if s == name {
			return op, true
		}
	}
	return 0, false
}

// ValidateOperator reports an error if op is not permitted for vt: the
// operator must be in the operator set permitted for the property's
// value type.
func ValidateOperator(vt ValueType, op Operator) error {
	if !allowedOperators[vt][op] {
		return fmt.Errorf("rule: operator %v not permitted for value type %v", op, vt)
	}
	return nil
}
