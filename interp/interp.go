// Package interp is the tree-walking evaluator that runs post-macro,
// post-inference ET (spec.md §4.5). It is a collaborator: a
// conventional environment-model evaluator, not itself a subject of
// this specification.
package interp

import (
	"strconv"

	"treep/ast"
)

// control threads a latched return value through nested block and
// loop execution: once set, every enclosing block and loop
// short-circuits without running further statements or iterations.
type control struct {
	returned bool
	value    ast.Value
}

// Run executes a normalized, expanded, type-checked program: each
// top-level `def` binds a closure into the root environment, every
// other top-level node executes immediately, and if a `main` was
// defined it is invoked with no arguments once all top-level
// statements have run (spec.md §4.5).
func Run(defs []*ast.Element) (ast.Value, error) {
	root := ast.NewScope(nil)
	seedBuiltins(root)

	var last ast.Value = ast.VUnit{}
	var hasMain bool
	for _, d := range defs {
		if d.Kind == ast.KindDef {
			root.Set(d.Name, makeClosure(root, d))
			if d.Name == "main" {
				hasMain = true
			}
			continue
		}
		ctl := &control{}
		v, err := execNode(root, d, ctl)
		if err != nil {
			return nil, err
		}
		last = v
	}

	if hasMain {
		mainVal, _ := root.Get("main")
		return callClosure(mainVal.(ast.VClosure), nil)
	}
	return last, nil
}

func makeClosure(env *ast.Scope, def *ast.Element) ast.VClosure {
	var params []string
	var body *ast.Element
	for _, c := range def.Children {
		switch c.Kind {
		case ast.KindParam:
			params = append(params, c.Name)
		case ast.KindBlock:
			body = c
		}
	}
	return ast.VClosure{Params: params, Body: body, Env: env}
}

func callClosure(c ast.VClosure, args []ast.Value) (ast.Value, error) {
	callEnv := ast.NewScope(c.Env)
	for i, p := range c.Params {
		var v ast.Value = ast.VUnit{}
		if i < len(args) {
			v = args[i]
		}
		callEnv.Set(p, v)
	}
	ctl := &control{}
	result, err := execBlock(callEnv, c.Body, ctl)
	if err != nil {
		return nil, err
	}
	if ctl.returned {
		return ctl.value, nil
	}
	return result, nil
}

// execBlock runs a block's statements in the given scope, stopping
// early once ctl.returned latches. The block's value is its last
// statement's value, or Unit for an empty block.
func execBlock(env *ast.Scope, block *ast.Element, ctl *control) (ast.Value, error) {
	var result ast.Value = ast.VUnit{}
	for _, stmt := range block.Children {
		v, err := execNode(env, stmt, ctl)
		if err != nil {
			return nil, err
		}
		result = v
		if ctl.returned {
			break
		}
	}
	return result, nil
}

func execNode(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	switch n.Kind {
	case ast.KindLiteral:
		return literalValue(n)

	case ast.KindVar:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, ast.NewRuntimeError(locOf(n), "unbound identifier %q", n.Name)
		}
		return v, nil

	case ast.KindLet:
		v, err := execNode(env, n.Children[0], ctl)
		if err != nil {
			return nil, err
		}
		env.Set(n.Name, v)
		return ast.VUnit{}, nil

	case ast.KindLambda:
		var params []string
		var body *ast.Element
		for _, c := range n.Children {
			switch c.Kind {
			case ast.KindParam:
				params = append(params, c.Name)
			case ast.KindBlock:
				body = c
			}
		}
		return ast.VClosure{Params: params, Body: body, Env: env}, nil

	case ast.KindCall:
		return execCall(env, n, ctl)

	case ast.KindIf:
		return execIf(env, n, ctl)

	case ast.KindWhile:
		return execWhile(env, n, ctl)

	case ast.KindFor:
		return execFor(env, n, ctl)

	case ast.KindReturn:
		var v ast.Value = ast.VUnit{}
		if len(n.Children) > 0 {
			var err error
			v, err = execNode(env, n.Children[0], ctl)
			if err != nil {
				return nil, err
			}
		}
		ctl.returned = true
		ctl.value = v
		return v, nil

	case ast.KindBlock:
		return execBlock(ast.NewScope(env), n, ctl)

	case ast.KindMacro:
		return ast.VUnit{}, nil

	default:
		return nil, ast.NewRuntimeError(locOf(n), "cannot execute %s node at runtime", n.Kind)
	}
}

func literalValue(n *ast.Element) (ast.Value, error) {
	typ, _ := n.Attr("type")
	val, _ := n.Attr("value")
	switch typ {
	case ast.TypeInt:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, ast.NewRuntimeError(locOf(n), "malformed int literal %q", val)
		}
		return ast.VInt(i), nil
	case ast.TypeString:
		return ast.VString(val), nil
	case ast.TypeBool:
		return ast.VBool(val == "true"), nil
	default:
		return nil, ast.NewRuntimeError(locOf(n), "unknown literal type %q", typ)
	}
}

func execIf(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	cond := n.Child(0).Child(0)
	condVal, err := execNode(env, cond, ctl)
	if err != nil {
		return nil, err
	}
	b, ok := condVal.(ast.VBool)
	if !ok {
		return nil, ast.NewRuntimeError(locOf(cond), "if requires a boolean condition, got %s", condVal)
	}
	if b {
		return execBlock(ast.NewScope(env), n.Child(1), ctl)
	}
	if elseBlock := n.Child(2); elseBlock != nil {
		return execBlock(ast.NewScope(env), elseBlock, ctl)
	}
	return ast.VUnit{}, nil
}

func execWhile(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	cond := n.Child(0).Child(0)
	for {
		condVal, err := execNode(env, cond, ctl)
		if err != nil {
			return nil, err
		}
		b, ok := condVal.(ast.VBool)
		if !ok {
			return nil, ast.NewRuntimeError(locOf(cond), "while requires a boolean condition, got %s", condVal)
		}
		if !b {
			break
		}
		if _, err := execBlock(ast.NewScope(env), n.Child(1), ctl); err != nil {
			return nil, err
		}
		if ctl.returned {
			break
		}
	}
	return ast.VUnit{}, nil
}

func execFor(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	fromEl := n.Child(0).Child(0)
	toEl := n.Child(1).Child(0)
	fromVal, err := execNode(env, fromEl, ctl)
	if err != nil {
		return nil, err
	}
	fromInt, ok := fromVal.(ast.VInt)
	if !ok {
		return nil, ast.NewRuntimeError(locOf(fromEl), "for bound must be Int, got %s", fromVal)
	}
	toVal, err := execNode(env, toEl, ctl)
	if err != nil {
		return nil, err
	}
	toInt, ok := toVal.(ast.VInt)
	if !ok {
		return nil, ast.NewRuntimeError(locOf(toEl), "for bound must be Int, got %s", toVal)
	}
	varName, _ := n.Attr("var")
	body := n.Child(2)
	for i := int64(fromInt); i <= int64(toInt); i++ {
		loopEnv := ast.NewScope(env)
		loopEnv.Set(varName, ast.VInt(i))
		if _, err := execBlock(loopEnv, body, ctl); err != nil {
			return nil, err
		}
		if ctl.returned {
			break
		}
	}
	return ast.VUnit{}, nil
}

func locOf(n *ast.Element) ast.Location {
	if n.Span != nil {
		return n.Span.Start
	}
	return ast.Location{}
}
