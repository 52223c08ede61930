package interp

import (
	"testing"

	"treep/ast"
	"treep/macro"
	"treep/parser"
	"treep/processors"
)

func mustRun(t *testing.T, src string) ast.Value {
	t.Helper()
	decls, err := parser.Parse("test.tp", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	els, err := processors.NormalizeProgram(decls)
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	expanded := make([]*ast.Element, len(els))
	for i, el := range els {
		e, err := macro.Expand(el)
		if err != nil {
			t.Fatalf("expand error: %v", err)
		}
		expanded[i] = e
	}
	v, err := Run(expanded)
	if err != nil {
		t.Fatalf("run error for %q: %v", src, err)
	}
	return v
}

// TestHelloWorld covers end-to-end scenario E1.
func TestHelloWorld(t *testing.T) {
	v := mustRun(t, `def main() returns:Int { println("Hello, TreeP!") return 0 }`)
	if v != ast.VInt(0) {
		t.Fatalf("want exit value 0, got %v", v)
	}
}

// TestTypedArithmetic covers end-to-end scenario E2.
func TestTypedArithmetic(t *testing.T) {
	v := mustRun(t, `
		def add(x,y) { return x + y }
		def main() returns:Int {
			let r = add(10, 20)
			println(r)
			return r
		}
	`)
	if v != ast.VInt(30) {
		t.Fatalf("want 30, got %v", v)
	}
}

// TestFactorial covers end-to-end scenario E4.
func TestFactorial(t *testing.T) {
	v := mustRun(t, `
		def factorial(n) {
			if (n <= 1) { return 1 } else { return n * factorial(n - 1) }
		}
		def main() returns:Int { return factorial(5) }
	`)
	if v != ast.VInt(120) {
		t.Fatalf("want 120, got %v", v)
	}
}

func TestFloorDivision(t *testing.T) {
	v := mustRun(t, `def main() returns:Int { return (0 - 7) / 2 }`)
	if v != ast.VInt(-4) {
		t.Fatalf("want floor(-7/2)=-4, got %v", v)
	}
}

func TestStringConcatenationOverload(t *testing.T) {
	v := mustRun(t, `def main() returns:String { return "a" + "b" }`)
	if v != ast.VString("ab") {
		t.Fatalf("want \"ab\", got %v", v)
	}
}

func TestWhenMacroExpandsAndRuns(t *testing.T) {
	v := mustRun(t, `
		def main() returns:Int {
			let x = 1
			when(x > 0) { return 42 }
			return 0
		}
	`)
	if v != ast.VInt(42) {
		t.Fatalf("want 42, got %v", v)
	}
}

func TestForLoopInclusive(t *testing.T) {
	v := mustRun(t, `
		def main() returns:Int {
			let total = 0
			for (i = 1, 3) { total = total + i }
			return total
		}
	`)
	if v != ast.VInt(6) {
		t.Fatalf("want 1+2+3=6, got %v", v)
	}
}
