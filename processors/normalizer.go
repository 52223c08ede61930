// Package processors lowers the concrete syntax tree produced by the
// parser into the Element tree (ET) that every later stage operates
// on. Normalize never mutates its input and constructs a fresh
// *ast.Element for every CST node it visits.
package processors

import (
	"slices"
	"strconv"

	"treep/ast"
	"treep/cst"
)

// NormalizeProgram lowers every top-level declaration in source order.
// MacroDef nodes normalize to a bare `macro` element carrying the
// registered name; the expander never looks at them (spec.md §1
// Non-goals: user-defined macros are a parsed hook, not a wired
// feature).
func NormalizeProgram(decls []cst.TopLevel) ([]*ast.Element, error) {
	out := make([]*ast.Element, 0, len(decls))
	for _, d := range decls {
		el, err := normalizeNode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// Normalize lowers a single function definition.
func Normalize(f cst.FuncDef) (*ast.Element, error) {
	el, err := normalizeFuncDef(f)
	if err != nil {
		return nil, err
	}
	return el, nil
}

func normalizeNode(n cst.Node) (*ast.Element, error) {
	switch v := n.(type) {
	case cst.FuncDef:
		return normalizeFuncDef(v)
	case cst.MacroDef:
		return ast.New(ast.KindMacro, v.Name), nil
	case cst.LetStmt:
		return normalizeLet(v)
	case cst.If:
		return normalizeIf(v)
	case cst.While:
		return normalizeWhile(v)
	case cst.For:
		return normalizeFor(v)
	case cst.Return:
		return normalizeReturn(v)
	case cst.Block:
		return normalizeBlock(v)
	case cst.Lambda:
		return normalizeLambda(v)
	case cst.BinOp:
		return normalizeBinOp(v)
	case cst.UnaryOp:
		return normalizeUnaryOp(v)
	case cst.Call:
		return normalizeCall(v)
	case cst.Var:
		el := ast.New(ast.KindVar, v.Name)
		el.Span = span(v.Location)
		return el, nil
	case cst.IntLit:
		return normalizeLiteral(v.Location, "Int", strconv.FormatInt(v.Value, 10)), nil
	case cst.StringLit:
		return normalizeLiteral(v.Location, "String", v.Value), nil
	case cst.BoolLit:
		return normalizeLiteral(v.Location, "Bool", strconv.FormatBool(v.Value)), nil
	default:
		return nil, ast.NewNormalizeError(n.Loc(), "unhandled CST node %T", n)
	}
}

func span(loc ast.Location) *ast.Span {
	return &ast.Span{Start: loc, End: loc}
}

func normalizeLiteral(loc ast.Location, typ, value string) *ast.Element {
	el := ast.NewWithAttrs(ast.KindLiteral, "", []ast.Attr{{Key: "type", Value: typ}, {Key: "value", Value: value}})
	el.Span = span(loc)
	return el
}

func normalizeFuncDef(f cst.FuncDef) (*ast.Element, error) {
	for i, p := range f.Params {
		if slices.ContainsFunc(f.Params[:i], func(q cst.Param) bool { return q.Name == p.Name }) {
			return nil, ast.NewNormalizeError(p.Location, "duplicate parameter name %q", p.Name)
		}
	}

	var attrs []ast.Attr
	children := make([]*ast.Element, 0, len(f.Params)+1)
	for _, p := range f.Params {
		var paramAttrs []ast.Attr
		if p.Type != "" {
			attrs = append(attrs, ast.Attr{Key: p.Name, Value: p.Type})
			paramAttrs = []ast.Attr{{Key: "type", Value: p.Type}}
		}
		param := ast.NewWithAttrs(ast.KindParam, p.Name, paramAttrs)
		param.Span = span(p.Location)
		children = append(children, param)
	}
	if f.Returns != "" {
		attrs = append(attrs, ast.Attr{Key: "returns", Value: f.Returns})
	}

	body, err := normalizeBlock(*f.Body)
	if err != nil {
		return nil, err
	}
	children = append(children, body)

	el := ast.NewWithAttrs(ast.KindDef, f.Name, attrs, children...)
	el.Span = span(f.Location)
	return el, nil
}

func normalizeBlock(b cst.Block) (*ast.Element, error) {
	children := make([]*ast.Element, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		el, err := normalizeNode(s)
		if err != nil {
			return nil, err
		}
		children = append(children, el)
	}
	out := ast.New(ast.KindBlock, "", children...)
	out.Span = span(b.Location)
	return out, nil
}

func normalizeLet(s cst.LetStmt) (*ast.Element, error) {
	val, err := normalizeNode(s.Value)
	if err != nil {
		return nil, err
	}
	var attrs []ast.Attr
	if s.Type != "" {
		attrs = []ast.Attr{{Key: "type", Value: s.Type}}
	}
	el := ast.NewWithAttrs(ast.KindLet, s.Name, attrs, val)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeIf(s cst.If) (*ast.Element, error) {
	cond, err := normalizeNode(s.Cond)
	if err != nil {
		return nil, err
	}
	then, err := normalizeBlock(*s.Then)
	if err != nil {
		return nil, err
	}
	children := []*ast.Element{ast.New(ast.KindCondition, "", cond), then}
	if s.Else != nil {
		elseEl, err := normalizeBlock(*s.Else)
		if err != nil {
			return nil, err
		}
		children = append(children, elseEl)
	}
	el := ast.New(ast.KindIf, "", children...)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeWhile(s cst.While) (*ast.Element, error) {
	cond, err := normalizeNode(s.Cond)
	if err != nil {
		return nil, err
	}
	body, err := normalizeBlock(*s.Body)
	if err != nil {
		return nil, err
	}
	el := ast.New(ast.KindWhile, "", ast.New(ast.KindCondition, "", cond), body)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeFor(s cst.For) (*ast.Element, error) {
	from, err := normalizeNode(s.From)
	if err != nil {
		return nil, err
	}
	to, err := normalizeNode(s.To)
	if err != nil {
		return nil, err
	}
	body, err := normalizeBlock(*s.Body)
	if err != nil {
		return nil, err
	}
	el := ast.NewWithAttrs(ast.KindFor, "", []ast.Attr{{Key: "var", Value: s.Var}},
		ast.New(ast.KindFrom, "", from), ast.New(ast.KindTo, "", to), body)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeReturn(s cst.Return) (*ast.Element, error) {
	var children []*ast.Element
	if s.Value != nil {
		val, err := normalizeNode(s.Value)
		if err != nil {
			return nil, err
		}
		children = append(children, val)
	}
	el := ast.New(ast.KindReturn, "", children...)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeLambda(s cst.Lambda) (*ast.Element, error) {
	children := make([]*ast.Element, 0, len(s.Params)+1)
	for _, p := range s.Params {
		var attrs []ast.Attr
		if p.Type != "" {
			attrs = []ast.Attr{{Key: "type", Value: p.Type}}
		}
		param := ast.NewWithAttrs(ast.KindParam, p.Name, attrs)
		param.Span = span(p.Location)
		children = append(children, param)
	}
	body, err := normalizeBlock(*s.Body)
	if err != nil {
		return nil, err
	}
	children = append(children, body)
	el := ast.New(ast.KindLambda, "", children...)
	el.Span = span(s.Location)
	return el, nil
}

func normalizeBinOp(b cst.BinOp) (*ast.Element, error) {
	left, err := normalizeNode(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := normalizeNode(b.Right)
	if err != nil {
		return nil, err
	}
	el := ast.New(ast.KindCall, b.Op, left, right)
	el.Span = span(b.Location)
	return el, nil
}

func normalizeUnaryOp(u cst.UnaryOp) (*ast.Element, error) {
	operand, err := normalizeNode(u.Operand)
	if err != nil {
		return nil, err
	}
	el := ast.New(ast.KindCall, "unary_"+u.Op, operand)
	el.Span = span(u.Location)
	return el, nil
}

// normalizeCall lowers a call, applying the block-argument desugaring:
// a trailing `{ BLOCK }` becomes one extra zero-parameter lambda
// argument (spec.md §4.1), producing the identical tree a call written
// with an explicit `() -> { BLOCK }` trailing argument would produce.
func normalizeCall(c cst.Call) (*ast.Element, error) {
	name, ok := c.Callee.(cst.Var)
	if !ok {
		return nil, ast.NewNormalizeError(c.Location, "call target must be a plain identifier")
	}

	children := make([]*ast.Element, 0, len(c.Args)+1)
	for _, a := range c.Args {
		el, err := normalizeNode(a)
		if err != nil {
			return nil, err
		}
		children = append(children, el)
	}

	if c.Block != nil {
		body, err := normalizeBlock(*c.Block)
		if err != nil {
			return nil, err
		}
		children = append(children, ast.New(ast.KindLambda, "", body))
	}

	el := ast.New(ast.KindCall, name.Name, children...)
	el.Span = span(c.Location)
	return el, nil
}
