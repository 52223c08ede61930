package types

import (
	"testing"

	"treep/ast"
	"treep/parser"
	"treep/processors"
)

func mustInfer(t *testing.T, src string) ast.TypeEnv {
	t.Helper()
	decls, err := parser.Parse("test.tp", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	els, err := processors.NormalizeProgram(decls)
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	env, err := Infer(els)
	if err != nil {
		t.Fatalf("infer error for %q: %v", src, err)
	}
	return env
}

func schemeString(sc ast.Scheme) string { return sc.Type.String() }

func TestInferTypedArithmetic(t *testing.T) {
	env := mustInfer(t, `def add(x,y) { return x + y }`)
	sc, ok := env.Lookup("add")
	if !ok {
		t.Fatalf("add not bound")
	}
	want := "(Int -> (Int -> Int))"
	if got := schemeString(sc); got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

// TestLetPolymorphism covers spec.md §8 property 6: identity used at
// two different types in one program.
func TestLetPolymorphism(t *testing.T) {
	_ = mustInfer(t, `
		def identity(x) { return x }
		def main() {
			let a = identity(42)
			let b = identity("x")
		}
	`)
}

// TestOccursCheckThroughRecursiveDef covers spec.md §8 property 7:
// self-application through a named def type-checks.
func TestOccursCheckThroughRecursiveDef(t *testing.T) {
	_ = mustInfer(t, `def loop(x) { return loop(x) }`)
}

func TestOccursCheckDirectFailure(t *testing.T) {
	s := NewSolver()
	v := s.Fresh()
	fn := ast.TFunc{From: v, To: s.Fresh()}
	if err := s.Unify(v, fn, ast.Location{}); err == nil {
		t.Fatalf("expected occurs-check failure unifying %s with %s", v, fn)
	}
}

// TestUnifyAtomicConstructor covers the reference's deliberate
// simplification: constructors are compared by name only, never
// recursed into.
func TestUnifyAtomicConstructor(t *testing.T) {
	s := NewSolver()
	a := ast.TCon{Name: "List", Args: []ast.Type{ast.Int()}}
	b := ast.TCon{Name: "List", Args: []ast.Type{ast.Str()}}
	if err := s.Unify(a, b, ast.Location{}); err != nil {
		t.Fatalf("expected atomic-by-name unify to succeed despite differing Args, got %v", err)
	}
}

func TestUnboundIdentifierErrors(t *testing.T) {
	if _, err := mustInferErr(`def main() { return y }`); err == nil {
		t.Fatalf("expected unbound identifier error")
	}
}

func mustInferErr(src string) (ast.TypeEnv, error) {
	decls, err := parser.Parse("test.tp", src)
	if err != nil {
		return nil, err
	}
	els, err := processors.NormalizeProgram(decls)
	if err != nil {
		return nil, err
	}
	return Infer(els)
}
