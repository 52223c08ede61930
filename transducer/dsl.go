package transducer

import (
	"golang.org/x/exp/slices"

	"treep/ast"
)

// KindPatternOption configures a KindPattern built via MatchKind.
type KindPatternOption func(*KindPattern)

// CaptureNameAs binds the matched node's name.
func CaptureNameAs(v string) KindPatternOption {
	return func(p *KindPattern) { p.NameVar = v }
}

// CaptureChildrenAs binds every child of the matched node as a list,
// with no fixed prefix.
func CaptureChildrenAs(v string) KindPatternOption {
	return func(p *KindPattern) { p.ChildPatterns = []Pattern{ListPattern{Rest: v}} }
}

// WithAttrs installs attribute patterns to check on the matched node.
func WithAttrs(attrs ...AttrPattern) KindPatternOption {
	return func(p *KindPattern) { p.AttrPatterns = attrs }
}

// WithChildren installs fixed child patterns to check on the matched
// node. It and CaptureChildrenAs both set the child patterns, so when
// both are given the one applied last wins.
func WithChildren(children ...Pattern) KindPatternOption {
	return func(p *KindPattern) { p.ChildPatterns = children }
}

// MatchKind builds a KindPattern for kind, applying opts in order.
func MatchKind(kind ast.Kind, opts ...KindPatternOption) KindPattern {
	p := KindPattern{Kind: kind}
	for _, o := range opts {
		o(&p)
	}
	return p
}

// MatchBinaryOp matches a two-argument call named op, per spec.md
// §4.4's DSL table: kind=call, name captured, children [$left,
// $right], condition requiring the captured name equal op.
func MatchBinaryOp(op string) (Pattern, func(Bindings) bool) {
	pat := KindPattern{
		Kind:          ast.KindCall,
		NameVar:       "op",
		ChildPatterns: []Pattern{VarPattern{Name: "left"}, VarPattern{Name: "right"}},
	}
	cond := func(b Bindings) bool {
		name, _ := b["op"].(string)
		return name == op
	}
	return pat, cond
}

// MatchUnaryOp is MatchBinaryOp's one-argument analogue.
func MatchUnaryOp(op string) (Pattern, func(Bindings) bool) {
	pat := KindPattern{
		Kind:          ast.KindCall,
		NameVar:       "op",
		ChildPatterns: []Pattern{VarPattern{Name: "x"}},
	}
	cond := func(b Bindings) bool {
		name, _ := b["op"].(string)
		return name == op
	}
	return pat, cond
}

// When AND-composes pred with an existing condition, so a rule built
// from a helper like MatchBinaryOp can layer additional checks.
func When(existing func(Bindings) bool, pred func(Bindings) bool) func(Bindings) bool {
	return func(b Bindings) bool {
		if existing != nil && !existing(b) {
			return false
		}
		return pred(b)
	}
}

// GenerateNode, GenerateVar and GenerateLiteral are shorthand
// constructors for the corresponding Template variants.
func GenerateNode(kind ast.Kind, name Expr, attrs []AttrTemplate, children ...Template) NodeTemplate {
	return NodeTemplate{Kind: kind, Name: name, AttrTemplates: attrs, ChildTemplates: children}
}

func GenerateVar(name string) VarTemplate { return VarTemplate{Name: name} }

func GenerateLiteral(value string) LiteralTemplate { return LiteralTemplate{Value: value} }

// IsLiteral reports whether node is a literal, optionally matching
// one of the given values.
func IsLiteral(node *ast.Element, values ...string) bool {
	if node == nil || node.Kind != ast.KindLiteral {
		return false
	}
	if len(values) == 0 {
		return true
	}
	val, _ := node.Attr("value")
	return slices.Contains(values, val)
}

// IsVar reports whether node is a var reference, optionally matching
// one of the given names.
func IsVar(node *ast.Element, names ...string) bool {
	if node == nil || node.Kind != ast.KindVar {
		return false
	}
	if len(names) == 0 {
		return true
	}
	return slices.Contains(names, node.Name)
}

// MakeLiteral builds a literal(type, value) node directly.
func MakeLiteral(typ, value string) *ast.Element {
	return ast.NewWithAttrs(ast.KindLiteral, "", []ast.Attr{{Key: "type", Value: typ}, {Key: "value", Value: value}})
}
