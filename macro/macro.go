// Package macro rewrites ET call nodes into larger trees according to
// a fixed table of built-in expansions (spec.md §4.2). Matching is
// positional name capture, not true pattern matching: a rule's
// pattern is just its declared arity.
package macro

import (
	"golang.org/x/exp/slices"

	"treep/ast"
)

// Rule is one built-in macro's expansion. args holds every child of
// the call; a rule reads only its first Arity entries, so surplus call
// arguments are ignored. An arity underflow is reported by Expand
// before the rule ever runs.
type Rule struct {
	Arity int
	Body  func(args []*ast.Element, loc ast.Location) (*ast.Element, error)
}

// Table is the closed set of ten built-ins from spec.md §4.2.
var Table = map[string]Rule{
	"when":       {Arity: 2, Body: expandWhen},
	"assert":     {Arity: 1, Body: expandAssert},
	"debug":      {Arity: 1, Body: expandDebug},
	"log":        {Arity: 1, Body: expandLog},
	"trace":      {Arity: 1, Body: expandTrace},
	"inc":        {Arity: 1, Body: expandInc},
	"dec":        {Arity: 1, Body: expandDec},
	"ifZero":     {Arity: 2, Body: expandIfZero},
	"ifPositive": {Arity: 2, Body: expandIfPositive},
	"until":      {Arity: 2, Body: expandUntil},
}

var registeredNames = func() []string {
	names := make([]string, 0, len(Table))
	for name := range Table {
		names = append(names, name)
	}
	return names
}()

// IsRegistered reports whether name is one of the ten built-ins.
func IsRegistered(name string) bool {
	return slices.Contains(registeredNames, name)
}

// Expand applies the macro table bottom-up: every child of n is
// expanded first, and if the (now fully expanded) node is itself a
// registered macro call, its expansion is produced and recursively
// re-expanded (spec.md §4.2's "recursive" contract). A call whose name
// is not registered is left untouched, children already expanded.
func Expand(n *ast.Element) (*ast.Element, error) {
	if n == nil {
		return nil, nil
	}

	children := make([]*ast.Element, len(n.Children))
	for i, c := range n.Children {
		ec, err := Expand(c)
		if err != nil {
			return nil, err
		}
		children[i] = ec
	}
	expandedNode := &ast.Element{Kind: n.Kind, Name: n.Name, Attrs: n.Attrs, Children: children, Span: n.Span}

	if expandedNode.Kind != ast.KindCall {
		return expandedNode, nil
	}
	rule, ok := Table[expandedNode.Name]
	if !ok {
		return expandedNode, nil
	}

	loc := ast.Location{}
	if expandedNode.Span != nil {
		loc = expandedNode.Span.Start
	}
	if len(children) < rule.Arity {
		return nil, ast.NewMacroError(loc, "macro %q expects %d argument(s), got %d", expandedNode.Name, rule.Arity, len(children))
	}
	result, err := rule.Body(children, loc)
	if err != nil {
		return nil, err
	}
	return Expand(result)
}

// Lift implements the `lift(body)` helper from spec.md §4.2's table:
// a lambda with a single block child unwraps to that block; anything
// else is wrapped in a fresh single-statement block.
func Lift(body *ast.Element) *ast.Element {
	if body.Kind == ast.KindLambda && len(body.Children) == 1 && body.Children[0].Kind == ast.KindBlock {
		return body.Children[0]
	}
	return ast.New(ast.KindBlock, "", body)
}

func call(name string, children ...*ast.Element) *ast.Element {
	return ast.New(ast.KindCall, name, children...)
}

func strLit(s string) *ast.Element {
	return ast.NewWithAttrs(ast.KindLiteral, "", []ast.Attr{{Key: "type", Value: "String"}, {Key: "value", Value: s}})
}

func intLit(v string) *ast.Element {
	return ast.NewWithAttrs(ast.KindLiteral, "", []ast.Attr{{Key: "type", Value: "Int"}, {Key: "value", Value: v}})
}

func varRef(name string) *ast.Element {
	return ast.New(ast.KindVar, name)
}

func condition(expr *ast.Element) *ast.Element {
	return ast.New(ast.KindCondition, "", expr)
}

func expandWhen(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	cond, body := args[0], args[1]
	return ast.New(ast.KindIf, "", condition(cond), Lift(body)), nil
}

func expandAssert(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	cond := args[0]
	fail := ast.New(ast.KindBlock, "", call("error", strLit("Assertion failed")))
	return ast.New(ast.KindIf, "", condition(call("unary_!", cond)), fail), nil
}

func expandDebug(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	expr := args[0]
	return call("println", call("+", strLit("Debug: "), call("toString", expr))), nil
}

func expandLog(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	msg := args[0]
	return call("println", call("+", strLit("[LOG] "), msg)), nil
}

func expandTrace(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	expr := args[0]
	const tmp = "__trace_result"
	return ast.New(ast.KindBlock, "",
		ast.New(ast.KindLet, tmp, expr),
		call("println", call("+", strLit("Trace: "), call("toString", varRef(tmp)))),
		varRef(tmp),
	), nil
}

func expandInc(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	x := args[0]
	return call("=", x, call("+", x.Clone(), intLit("1"))), nil
}

func expandDec(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	x := args[0]
	return call("=", x, call("-", x.Clone(), intLit("1"))), nil
}

func expandIfZero(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	x, body := args[0], args[1]
	return ast.New(ast.KindIf, "", condition(call("==", x, intLit("0"))), Lift(body)), nil
}

func expandIfPositive(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	x, body := args[0], args[1]
	return ast.New(ast.KindIf, "", condition(call(">", x, intLit("0"))), Lift(body)), nil
}

func expandUntil(args []*ast.Element, _ ast.Location) (*ast.Element, error) {
	cond, body := args[0], args[1]
	return ast.New(ast.KindWhile, "", condition(call("unary_!", cond)), Lift(body)), nil
}
