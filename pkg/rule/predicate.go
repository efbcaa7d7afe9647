package rule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/grum999/bulicore/pkg/descriptor"
)

// Predicate is a single comparison of a descriptor property against
// one or two raw operand values, before compilation. Operand1/Operand2
// are left as interface{} here — strings, numbers, or []interface{} —
// because this is the authoring shape a query document deserialises
// into; Compile converts them into the typed Operand sum type and
// validates them against Type.
type Predicate struct {
	Property        descriptor.Property
	Type            ValueType
	Operator        Operator
	Operand1        interface{}
	Operand2        interface{} // only used by BETWEEN/NOT_BETWEEN
	CaseInsensitive bool
	DateOnly        bool
}

// CombinatorKind is AND, OR, or NOT.
type CombinatorKind int

const (
	CombAnd CombinatorKind = iota
	CombOr
	CombNot
)

// Node is either a leaf Predicate or a Combinator over child Nodes.
type Node struct {
	Predicate  *Predicate // non-nil for a leaf
	Combinator CombinatorKind
	Children   []Node // non-empty for a combinator node
}

// Leaf builds a predicate leaf node.
func Leaf(p Predicate) Node { return Node{Predicate: &p} }

// And/Or/Not build combinator nodes.
func And(children ...Node) Node { return Node{Combinator: CombAnd, Children: children} }
func Or(children ...Node) Node  { return Node{Combinator: CombOr, Children: children} }
func Not(child Node) Node       { return Node{Combinator: CombNot, Children: []Node{child}} }

func (n Node) isLeaf() bool { return n.Predicate != nil }

// PropertyValueType maps a descriptor property to its value type. The
// query model resolver uses this to fill in a FilterRulePayload's
// Type before constructing a Predicate, since the wire format carries
// only the property name.
func PropertyValueType(p descriptor.Property) ValueType { return propertyType(p) }

// propertyType maps a descriptor property to its value type, used
// both for operator validation and to pick the right comparison at
// match time.
func propertyType(p descriptor.Property) ValueType {
	switch p {
	case descriptor.FILE_NAME, descriptor.PATH, descriptor.FULL_PATHNAME:
		return TypeString
	case descriptor.FILE_FORMAT:
		return TypeEnum
	case descriptor.FILE_SIZE, descriptor.IMAGE_WIDTH, descriptor.IMAGE_HEIGHT:
		return TypeInt
	case descriptor.FILE_DATE:
		return TypeDateTime
	default:
		return TypeString
	}
}

// validate checks the predicate's operator is legal for its declared
// type, and that BETWEEN/NOT_BETWEEN carry a second operand.
func (p Predicate) validate() error {
	if err := ValidateOperator(p.Type, p.Operator); err != nil {
		return err
	}
	if (p.Operator == OpBetween || p.Operator == OpNotBetween) && p.Operand2 == nil {
		return fmt.Errorf("rule: %v requires two operands", p.Operator)
	}
	return nil
}

// validateTree enforces the RuleNode invariant: NOT has exactly one
// child; AND/OR have at least one.
func validateTree(n Node) error {
	if n.isLeaf() {
		return n.Predicate.validate()
	}
	switch n.Combinator {
	case CombNot:
		if len(n.Children) != 1 {
			return fmt.Errorf("rule: NOT must have exactly one child, got %d", len(n.Children))
		}
	case CombAnd, CombOr:
		if len(n.Children) < 1 {
			return fmt.Errorf("rule: AND/OR must have at least one child")
		}
	default:
		return fmt.Errorf("rule: unknown combinator %v", n.Combinator)
	}
	for _, c := range n.Children {
		if err := validateTree(c); err != nil {
			return err
		}
	}
	return nil
}

// resolveOperand converts a raw authoring-time value into the typed
// Operand sum type, normalising byte-unit suffixes (B/KB/KiB/MB/MiB/
// GB/GiB) for numeric properties and compiling regex text into
// *regexp.Regexp. LIKE patterns are not translated here; LikeToRegex
// does that.
func resolveOperand(vt ValueType, caseInsensitive bool, raw interface{}) (Operand, error) {
	switch v := raw.(type) {
	case []interface{}:
		items := make(ListOperand, 0, len(v))
		for _, e := range v {
			op, err := resolveOperand(vt, caseInsensitive, e)
			if err != nil {
				return nil, err
			}
			items = append(items, op)
		}
		return items, nil
	}

	switch vt {
	case TypeInt, TypeFloat:
		switch v := raw.(type) {
		case string:
			bytesVal, err := humanize.ParseBytes(v)
			if err == nil {
				return IntOperand(bytesVal), nil
			}
			return nil, fmt.Errorf("rule: cannot parse numeric operand %q: %w", v, err)
		case int:
			return IntOperand(v), nil
		case int64:
			return IntOperand(v), nil
		case float64:
			if vt == TypeFloat {
				return FloatOperand(v), nil
			}
			return IntOperand(int64(v)), nil
		default:
			return nil, fmt.Errorf("rule: unsupported numeric operand of type %T", raw)
		}
	case TypeDate, TypeDateTime:
		switch v := raw.(type) {
		case time.Time:
			return DateOperand(v), nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("rule: cannot parse date operand %q: %w", v, err)
			}
			return DateOperand(t), nil
		default:
			return nil, fmt.Errorf("rule: unsupported date operand of type %T", raw)
		}
	case TypeRegex:
		pattern, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("rule: regex operand must be a string, got %T", raw)
		}
		re, err := regexp.Compile(withCaseFlag(pattern, caseInsensitive))
		if err != nil {
			return nil, fmt.Errorf("rule: invalid regex %q: %w", pattern, err)
		}
		return RegexOperand{re}, nil
	case TypeString, TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("rule: string/enum operand must be a string, got %T", raw)
		}
		return StringOperand(s), nil
	default:
		return nil, fmt.Errorf("rule: unsupported value type %v", vt)
	}
}

func withCaseFlag(pattern string, caseInsensitive bool) string {
	if caseInsensitive {
		return "(?i)" + pattern
	}
	return pattern
}

// LikeToRegex compiles a LIKE/NOT_LIKE pattern to a regex pattern, by
// escaping regex metacharacters then mapping the two SQL-style
// wildcards (?→., *→.*).
func LikeToRegex(like string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range like {
		switch r {
		case '?':
			b.WriteByte('.')
		case '*':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
