package interp

import (
	"fmt"
	"os"

	"treep/ast"
)

func seedBuiltins(env *ast.Scope) {
	env.Set("println", ast.VBuiltin{Name: "println", Fn: builtinPrintln})
	env.Set("toString", ast.VBuiltin{Name: "toString", Fn: builtinToString})
	env.Set("error", ast.VBuiltin{Name: "error", Fn: builtinError})
}

func builtinPrintln(args []ast.Value) (ast.Value, error) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stdout)
		return ast.VUnit{}, nil
	}
	fmt.Fprintln(os.Stdout, args[0].String())
	return ast.VUnit{}, nil
}

func builtinToString(args []ast.Value) (ast.Value, error) {
	if len(args) == 0 {
		return ast.VString(""), nil
	}
	return ast.VString(args[0].String()), nil
}

func builtinError(args []ast.Value) (ast.Value, error) {
	msg := ""
	if len(args) > 0 {
		msg = args[0].String()
	}
	return nil, ast.NewRuntimeError(ast.Location{}, "%s", msg)
}

// execCall dispatches a call node to a hardcoded operator, a builtin,
// or a user-defined closure. Operators bypass environment lookup
// entirely — the language does not allow shadowing them.
func execCall(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	if n.Name == "=" {
		return execAssign(env, n, ctl)
	}
	if isOperator(n.Name) {
		return execOperator(env, n, ctl)
	}

	callee, ok := env.Get(n.Name)
	if !ok {
		return nil, ast.NewRuntimeError(locOf(n), "unbound identifier %q", n.Name)
	}
	args := make([]ast.Value, len(n.Children))
	for i, c := range n.Children {
		v, err := execNode(env, c, ctl)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch fn := callee.(type) {
	case ast.VClosure:
		return callClosure(fn, args)
	case ast.VBuiltin:
		return fn.Fn(args)
	default:
		return nil, ast.NewRuntimeError(locOf(n), "%q is not callable", n.Name)
	}
}

func execAssign(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	target := n.Children[0]
	if target.Kind != ast.KindVar {
		return nil, ast.NewRuntimeError(locOf(n), "assignment target must be a variable")
	}
	v, err := execNode(env, n.Children[1], ctl)
	if err != nil {
		return nil, err
	}
	if !env.Assign(target.Name, v) {
		return nil, ast.NewRuntimeError(locOf(n), "unbound identifier %q", target.Name)
	}
	return v, nil
}

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
	"&&": true, "||": true,
}

var unaryOperators = map[string]bool{"unary_!": true, "unary_-": true}

func isOperator(name string) bool {
	return binaryOperators[name] || unaryOperators[name]
}

func execOperator(env *ast.Scope, n *ast.Element, ctl *control) (ast.Value, error) {
	if unaryOperators[n.Name] {
		v, err := execNode(env, n.Children[0], ctl)
		if err != nil {
			return nil, err
		}
		return applyUnary(n, v)
	}
	left, err := execNode(env, n.Children[0], ctl)
	if err != nil {
		return nil, err
	}
	right, err := execNode(env, n.Children[1], ctl)
	if err != nil {
		return nil, err
	}
	return applyBinary(n, left, right)
}

func applyUnary(n *ast.Element, v ast.Value) (ast.Value, error) {
	switch n.Name {
	case "unary_!":
		b, ok := v.(ast.VBool)
		if !ok {
			return nil, ast.NewRuntimeError(locOf(n), "unary ! requires Bool, got %s", v)
		}
		return !b, nil
	case "unary_-":
		i, ok := v.(ast.VInt)
		if !ok {
			return nil, ast.NewRuntimeError(locOf(n), "unary - requires Int, got %s", v)
		}
		return -i, nil
	default:
		return nil, ast.NewRuntimeError(locOf(n), "unknown unary operator %q", n.Name)
	}
}

// applyBinary implements the runtime overload spec.md §9 note 1 calls
// out: `+` also concatenates when either operand is a string, a
// mismatch against its monomorphic Int -> Int -> Int type-system
// signature that is preserved here rather than patched.
func applyBinary(n *ast.Element, l, r ast.Value) (ast.Value, error) {
	if n.Name == "+" {
		if ls, ok := l.(ast.VString); ok {
			return ls + ast.VString(r.String()), nil
		}
		if rs, ok := r.(ast.VString); ok {
			return ast.VString(l.String()) + rs, nil
		}
	}

	if n.Name == "&&" || n.Name == "||" {
		lb, lok := l.(ast.VBool)
		rb, rok := r.(ast.VBool)
		if !lok || !rok {
			return nil, ast.NewRuntimeError(locOf(n), "%s requires Bool operands", n.Name)
		}
		if n.Name == "&&" {
			return lb && rb, nil
		}
		return lb || rb, nil
	}

	li, lok := l.(ast.VInt)
	ri, rok := r.(ast.VInt)
	if !lok || !rok {
		if n.Name == "==" || n.Name == "!=" {
			eq, err := valuesEqual(n, l, r)
			if err != nil {
				return nil, err
			}
			if n.Name == "!=" {
				eq = !eq
			}
			return ast.VBool(eq), nil
		}
		return nil, ast.NewRuntimeError(locOf(n), "%s requires Int operands, got %s and %s", n.Name, l, r)
	}

	switch n.Name {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/":
		if ri == 0 {
			return nil, ast.NewRuntimeError(locOf(n), "division by zero")
		}
		return floorDiv(li, ri), nil
	case "%":
		if ri == 0 {
			return nil, ast.NewRuntimeError(locOf(n), "division by zero")
		}
		return li - floorDiv(li, ri)*ri, nil
	case "<":
		return ast.VBool(li < ri), nil
	case ">":
		return ast.VBool(li > ri), nil
	case "<=":
		return ast.VBool(li <= ri), nil
	case ">=":
		return ast.VBool(li >= ri), nil
	case "==":
		return ast.VBool(li == ri), nil
	case "!=":
		return ast.VBool(li != ri), nil
	default:
		return nil, ast.NewRuntimeError(locOf(n), "unknown binary operator %q", n.Name)
	}
}

// valuesEqual compares scalar runtime values; closures and builtins
// have no equality (their captured environments aren't comparable),
// so comparing them is a RuntimeError rather than a Go panic.
func valuesEqual(n *ast.Element, l, r ast.Value) (bool, error) {
	switch lv := l.(type) {
	case ast.VInt:
		rv, ok := r.(ast.VInt)
		return ok && lv == rv, nil
	case ast.VString:
		rv, ok := r.(ast.VString)
		return ok && lv == rv, nil
	case ast.VBool:
		rv, ok := r.(ast.VBool)
		return ok && lv == rv, nil
	case ast.VUnit:
		_, ok := r.(ast.VUnit)
		return ok, nil
	default:
		return false, ast.NewRuntimeError(locOf(n), "values of type %T are not comparable", l)
	}
}

func floorDiv(a, b ast.VInt) ast.VInt {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
