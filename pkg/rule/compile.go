package rule

import (
	"fmt"
	"time"

	"github.com/grum999/bulicore/pkg/descriptor"
)

// Compiled is a validated, pre-compiled rule tree: regexes compiled,
// unit-suffixed operands normalised, date-only predicates expanded
// into explicit range semantics. Built once per query, then reused
// for every descriptor in the pipeline's filter phase.
type Compiled struct {
	root compiledNode
}

type compiledNode struct {
	match func(d descriptor.Descriptor) bool
}

// Compile validates and compiles a Node tree. An empty tree (the Node
// zero value, with no Predicate and no Children) is the identity —
// it matches everything.
func Compile(n Node) (Compiled, error) {
	if n.Predicate == nil && len(n.Children) == 0 && n.Combinator == CombAnd {
		return Compiled{root: compiledNode{match: func(descriptor.Descriptor) bool { return true }}}, nil
	}
	if err := validateTree(n); err != nil {
		return Compiled{}, err
	}
	cn, err := compileNode(n)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{root: cn}, nil
}

// Eval reports whether d matches the compiled tree.
func (c Compiled) Eval(d descriptor.Descriptor) bool {
	if c.root.match == nil {
		return true
	}
	return c.root.match(d)
}

func compileNode(n Node) (compiledNode, error) {
	if n.isLeaf() {
		return compileLeaf(*n.Predicate)
	}
	children := make([]compiledNode, 0, len(n.Children))
	for _, c := range n.Children {
		cc, err := compileNode(c)
		if err != nil {
			return compiledNode{}, err
		}
		children = append(children, cc)
	}
	switch n.Combinator {
	case CombNot:
		child := children[0]
		return compiledNode{match: func(d descriptor.Descriptor) bool { return !child.match(d) }}, nil
	case CombAnd:
		return compiledNode{match: func(d descriptor.Descriptor) bool {
			for _, c := range children {
				if !c.match(d) { // AND short-circuits on first false
					return false
				}
			}
			return true
		}}, nil
	case CombOr:
		return compiledNode{match: func(d descriptor.Descriptor) bool {
			for _, c := range children {
				if c.match(d) { // OR short-circuits on first true
					return true
				}
			}
			return false
		}}, nil
	default:
		return compiledNode{}, fmt.Errorf("rule: unknown combinator %v", n.Combinator)
	}
}

func compileLeaf(p Predicate) (compiledNode, error) {
	if err := p.validate(); err != nil {
		return compiledNode{}, err
	}

	op1, err := resolveOperand(p.Type, p.CaseInsensitive, p.Operand1)
	if err != nil {
		return compiledNode{}, err
	}
	var op2 Operand
	if p.Operand2 != nil {
		op2, err = resolveOperand(p.Type, p.CaseInsensitive, p.Operand2)
		if err != nil {
			return compiledNode{}, err
		}
	}

	if (p.Type == TypeDate || p.Type == TypeDateTime) && p.DateOnly {
		return compileDateOnlyLeaf(p, op1, op2)
	}

	prop := p.Property
	op := p.Operator
	caseInsensitive := p.CaseInsensitive

	return compiledNode{match: func(d descriptor.Descriptor) bool {
		val, ok := d.Property(prop)
		if !ok {
			// A directory always passes any predicate whose property
			// is undefined for it.
			return true
		}
		return evalOperator(op, val, op1, op2, caseInsensitive)
	}}, nil
}

// compileDateOnlyLeaf implements date-only semantics by rewriting the
// operator into an explicit range comparison against the property's
// Unix-timestamp value.
func compileDateOnlyLeaf(p Predicate, op1, op2 Operand) (compiledNode, error) {
	d1, ok := op1.(DateOperand)
	if !ok {
		return compiledNode{}, fmt.Errorf("rule: date-only predicate requires a Date operand")
	}
	startOfDay := func(t time.Time) int64 {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Unix()
	}
	endOfDay := func(t time.Time) int64 {
		y, m, d := t.Date()
		return time.Date(y, m, d, 23, 59, 59, 999900000, t.Location()).Unix()
	}

	prop := p.Property
	dayStart := startOfDay(time.Time(d1))
	dayEnd := endOfDay(time.Time(d1))

	var inRange func(ts int64) bool
	switch p.Operator {
	case OpGT, OpGE:
		inRange = func(ts int64) bool { return ts >= dayStart }
	case OpLT:
		inRange = func(ts int64) bool { return ts < dayStart }
	case OpLE:
		inRange = func(ts int64) bool { return ts <= dayEnd }
	case OpEQ:
		inRange = func(ts int64) bool { return ts >= dayStart && ts <= dayEnd }
	case OpNE:
		inRange = func(ts int64) bool { return !(ts >= dayStart && ts <= dayEnd) }
	case OpBetween, OpNotBetween:
		d2, ok := op2.(DateOperand)
		if !ok {
			return compiledNode{}, fmt.Errorf("rule: BETWEEN requires two Date operands")
		}
		lo := startOfDay(time.Time(d1))
		hi := endOfDay(time.Time(d2))
		within := func(ts int64) bool { return ts >= lo && ts <= hi }
		if p.Operator == OpBetween {
			inRange = within
		} else {
			inRange = func(ts int64) bool { return !within(ts) }
		}
	default:
		return compiledNode{}, fmt.Errorf("rule: operator %v not supported for date-only predicates", p.Operator)
	}

	return compiledNode{match: func(d descriptor.Descriptor) bool {
		val, ok := d.Property(prop)
		if !ok {
			return true
		}
		ts, ok := val.(int64)
		if !ok {
			return false
		}
		return inRange(ts)
	}}, nil
}

func evalOperator(op Operator, propVal interface{}, op1, op2 Operand, caseInsensitive bool) bool {
	switch op {
	case OpMatch, OpNotMatch:
		re, ok := op1.(RegexOperand)
		if !ok {
			return false
		}
		s := toComparableString(propVal)
		matched := re.MatchString(s)
		if op == OpNotMatch {
			return !matched
		}
		return matched
	case OpIN, OpNotIN:
		list, ok := op1.(ListOperand)
		if !ok {
			list = ListOperand{op1}
		}
		found := false
		for _, item := range list {
			if compareEqual(propVal, item, caseInsensitive) {
				found = true
				break
			}
		}
		if op == OpNotIN {
			return !found
		}
		return found
	case OpBetween, OpNotBetween:
		within := compareOrder(propVal, op1) >= 0 && compareOrder(propVal, op2) <= 0
		if op == OpNotBetween {
			return !within
		}
		return within
	case OpEQ:
		return compareEqual(propVal, op1, caseInsensitive)
	case OpNE:
		return !compareEqual(propVal, op1, caseInsensitive)
	case OpLT:
		return compareOrder(propVal, op1) < 0
	case OpGT:
		return compareOrder(propVal, op1) > 0
	case OpLE:
		return compareOrder(propVal, op1) <= 0
	case OpGE:
		return compareOrder(propVal, op1) >= 0
	default:
		return false
	}
}

func toComparableString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if tag, ok := v.(descriptor.FormatTag); ok {
		return formatEnumName(tag)
	}
	return fmt.Sprint(v)
}

// formatEnumName maps a FormatTag to the short enum name predicates
// compare against — the wire/query vocabulary drops the RASTER_
// prefix.
func formatEnumName(tag descriptor.FormatTag) string {
	switch tag {
	case descriptor.RASTER_PNG:
		return "PNG"
	case descriptor.RASTER_JPEG:
		return "JPEG"
	case descriptor.VECTOR_SVG:
		return "SVG"
	case descriptor.KRA:
		return "KRA"
	case descriptor.ORA:
		return "ORA"
	case descriptor.DIRECTORY:
		return "DIRECTORY"
	default:
		return "UNKNOWN"
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func operandToFloat(o Operand) (float64, bool) {
	switch v := o.(type) {
	case IntOperand:
		return float64(v), true
	case FloatOperand:
		return float64(v), true
	case DateOperand:
		return float64(time.Time(v).Unix()), true
	}
	return 0, false
}

// compareOrder returns -1/0/1 comparing propVal (as read off a
// descriptor) against the operand, for numeric/date properties.
func compareOrder(propVal interface{}, o Operand) int {
	if pf, ok := toFloat(propVal); ok {
		if of, ok := operandToFloat(o); ok {
			switch {
			case pf < of:
				return -1
			case pf > of:
				return 1
			default:
				return 0
			}
		}
	}
	ps := toComparableString(propVal)
	if so, ok := o.(StringOperand); ok {
		switch {
		case ps < string(so):
			return -1
		case ps > string(so):
			return 1
		default:
			return 0
		}
	}
	return 0
}

func compareEqual(propVal interface{}, o Operand, caseInsensitive bool) bool {
	if pf, ok := toFloat(propVal); ok {
		if of, ok := operandToFloat(o); ok {
			return pf == of
		}
	}
	ps := toComparableString(propVal)
	switch v := o.(type) {
	case StringOperand:
		if caseInsensitive {
			return equalFold(ps, string(v))
		}
		return ps == string(v)
	default:
		return false
	}
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
