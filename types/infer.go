package types

import (
	"treep/ast"
)

// Builtins seeds the type environment with the signatures from
// spec.md §4.3's table. + is intentionally monomorphic Int -> Int ->
// Int here even though the interpreter overloads it for string
// concatenation at runtime — the known gap spec.md §9 note 1 calls out
// is preserved rather than patched.
func Builtins() ast.TypeEnv {
	binIntInt := ast.Scheme{Type: ast.TFunc{From: ast.Int(), To: ast.TFunc{From: ast.Int(), To: ast.Int()}}}
	cmpInt := ast.Scheme{Type: ast.TFunc{From: ast.Int(), To: ast.TFunc{From: ast.Int(), To: ast.Bool()}}}
	binBoolBool := ast.Scheme{Type: ast.TFunc{From: ast.Bool(), To: ast.TFunc{From: ast.Bool(), To: ast.Bool()}}}

	env := ast.TypeEnv{}
	for _, name := range []string{"+", "-", "*", "/", "%"} {
		env = env.Extend(name, binIntInt)
	}
	for _, name := range []string{"<", ">", "<=", ">=", "==", "!="} {
		env = env.Extend(name, cmpInt)
	}
	for _, name := range []string{"&&", "||"} {
		env = env.Extend(name, binBoolBool)
	}
	env = env.Extend("unary_!", ast.Scheme{Type: ast.TFunc{From: ast.Bool(), To: ast.Bool()}})
	env = env.Extend("unary_-", ast.Scheme{Type: ast.TFunc{From: ast.Int(), To: ast.Int()}})
	env = env.Extend("println", ast.Scheme{Vars: []string{"a"}, Type: ast.TFunc{From: ast.TVar{Name: "a"}, To: ast.Unit()}})
	env = env.Extend("toString", ast.Scheme{Vars: []string{"a"}, Type: ast.TFunc{From: ast.TVar{Name: "a"}, To: ast.Str()}})
	env = env.Extend("error", ast.Scheme{Vars: []string{"a"}, Type: ast.TFunc{From: ast.Str(), To: ast.TVar{Name: "a"}}})
	return env
}

func locOf(el *ast.Element) ast.Location {
	if el.Span != nil {
		return el.Span.Start
	}
	return ast.Location{}
}

// Infer runs inference over a sequence of top-level definitions,
// binding each `def` into the running environment with
// let-polymorphism (spec.md §8 testable property 6) before inferring
// the next.
func Infer(defs []*ast.Element) (ast.TypeEnv, error) {
	s := NewSolver()
	env := Builtins()
	for _, def := range defs {
		if def.Kind != ast.KindDef {
			if _, err := s.infer(env, def); err != nil {
				return nil, err
			}
			continue
		}
		var err error
		env, err = s.inferDef(env, def)
		if err != nil {
			return nil, err
		}
	}
	return env, nil
}

func foldFunc(params []ast.Type, result ast.Type) ast.Type {
	acc := result
	for i := len(params) - 1; i >= 0; i-- {
		acc = ast.TFunc{From: params[i], To: acc}
	}
	return acc
}

// inferDef infers F's own type against an environment where F and its
// parameters are bound monomorphically, so that a self-recursive call
// inside the body type-checks (spec.md §8 testable property 7),  then
// generalizes the result against the outer environment and binds F
// there — classical let-polymorphism on top-level definitions.
func (s *Solver) inferDef(outer ast.TypeEnv, def *ast.Element) (ast.TypeEnv, error) {
	selfType := s.Fresh()
	inner := outer.Extend(def.Name, ast.Scheme{Type: selfType})

	var paramTypes []ast.Type
	var body *ast.Element
	for _, c := range def.Children {
		if c.Kind == ast.KindParam {
			pt := s.Fresh()
			paramTypes = append(paramTypes, pt)
			inner = inner.Extend(c.Name, ast.Scheme{Type: pt})
			continue
		}
		if c.Kind == ast.KindBlock {
			body = c
		}
	}
	if body == nil {
		return nil, ast.NewTypeError(locOf(def), "def %q has no body", def.Name)
	}

	bodyType, err := s.infer(inner, body)
	if err != nil {
		return nil, err
	}
	fnType := foldFunc(paramTypes, bodyType)
	if err := s.Unify(selfType, fnType, locOf(def)); err != nil {
		return nil, err
	}
	scheme := s.Generalize(outer, s.Apply(fnType))
	return outer.Extend(def.Name, scheme), nil
}

// infer dispatches per spec.md §4.3's per-construct rules. env is
// immutable per call; only inferBlock threads an extended copy across
// sibling statements as `let` bindings come into scope.
func (s *Solver) infer(env ast.TypeEnv, n *ast.Element) (ast.Type, error) {
	switch n.Kind {
	case ast.KindLiteral:
		typ, _ := n.Attr("type")
		return ast.TCon{Name: typ}, nil

	case ast.KindVar:
		scheme, ok := env.Lookup(n.Name)
		if !ok {
			return nil, ast.NewTypeError(locOf(n), "unbound identifier %q", n.Name)
		}
		return s.Instantiate(scheme), nil

	case ast.KindCall:
		return s.inferCall(env, n)

	case ast.KindLambda:
		return s.inferLambda(env, n)

	case ast.KindIf:
		return s.inferIf(env, n)

	case ast.KindWhile:
		cond := n.Child(0).Child(0)
		condType, err := s.infer(env, cond)
		if err != nil {
			return nil, err
		}
		if err := s.Unify(condType, ast.Bool(), locOf(cond)); err != nil {
			return nil, err
		}
		if _, err := s.infer(env, n.Child(1)); err != nil {
			return nil, err
		}
		return ast.Unit(), nil

	case ast.KindFor:
		from := n.Child(0).Child(0)
		to := n.Child(1).Child(0)
		fromType, err := s.infer(env, from)
		if err != nil {
			return nil, err
		}
		if err := s.Unify(fromType, ast.Int(), locOf(from)); err != nil {
			return nil, err
		}
		toType, err := s.infer(env, to)
		if err != nil {
			return nil, err
		}
		if err := s.Unify(toType, ast.Int(), locOf(to)); err != nil {
			return nil, err
		}
		varName, _ := n.Attr("var")
		bodyEnv := env.Extend(varName, ast.Scheme{Type: ast.Int()})
		if _, err := s.infer(bodyEnv, n.Child(2)); err != nil {
			return nil, err
		}
		return ast.Unit(), nil

	case ast.KindReturn:
		if len(n.Children) == 0 {
			return ast.Unit(), nil
		}
		return s.infer(env, n.Children[0])

	case ast.KindBlock:
		return s.inferBlock(env, n)

	default:
		return nil, ast.NewTypeError(locOf(n), "cannot infer type of %s node", n.Kind)
	}
}

func (s *Solver) inferCall(env ast.TypeEnv, n *ast.Element) (ast.Type, error) {
	scheme, ok := env.Lookup(n.Name)
	if !ok {
		return nil, ast.NewTypeError(locOf(n), "unbound identifier %q", n.Name)
	}
	funcType := s.Instantiate(scheme)
	for _, arg := range n.Children {
		argType, err := s.infer(env, arg)
		if err != nil {
			return nil, err
		}
		result := s.Fresh()
		if err := s.Unify(funcType, ast.TFunc{From: argType, To: result}, locOf(n)); err != nil {
			return nil, err
		}
		funcType = s.Apply(result)
	}
	return funcType, nil
}

func (s *Solver) inferLambda(env ast.TypeEnv, n *ast.Element) (ast.Type, error) {
	var paramTypes []ast.Type
	inner := env
	var body *ast.Element
	for _, c := range n.Children {
		if c.Kind == ast.KindParam {
			pt := s.Fresh()
			paramTypes = append(paramTypes, pt)
			inner = inner.Extend(c.Name, ast.Scheme{Type: pt})
			continue
		}
		if c.Kind == ast.KindBlock {
			body = c
		}
	}
	bodyType, err := s.infer(inner, body)
	if err != nil {
		return nil, err
	}
	return foldFunc(paramTypes, bodyType), nil
}

func (s *Solver) inferIf(env ast.TypeEnv, n *ast.Element) (ast.Type, error) {
	cond := n.Child(0).Child(0)
	condType, err := s.infer(env, cond)
	if err != nil {
		return nil, err
	}
	if err := s.Unify(condType, ast.Bool(), locOf(cond)); err != nil {
		return nil, err
	}
	thenType, err := s.infer(env, n.Child(1))
	if err != nil {
		return nil, err
	}
	if elseBlock := n.Child(2); elseBlock != nil {
		elseType, err := s.infer(env, elseBlock)
		if err != nil {
			return nil, err
		}
		if err := s.Unify(thenType, elseType, locOf(n)); err != nil {
			return nil, err
		}
	}
	return s.Apply(thenType), nil
}

// inferBlock types the last statement's type as the block's type
// (Unit for an empty block); `let` bindings extend the environment
// visible to later statements in the same block but are generalized,
// not made self-referential (spec.md §9 note 2).
func (s *Solver) inferBlock(env ast.TypeEnv, block *ast.Element) (ast.Type, error) {
	result := ast.Type(ast.Unit())
	for _, stmt := range block.Children {
		if stmt.Kind == ast.KindLet {
			valType, err := s.infer(env, stmt.Children[0])
			if err != nil {
				return nil, err
			}
			scheme := s.Generalize(env, valType)
			env = env.Extend(stmt.Name, scheme)
			result = ast.Unit()
			continue
		}
		t, err := s.infer(env, stmt)
		if err != nil {
			return nil, err
		}
		result = t
	}
	return result, nil
}
