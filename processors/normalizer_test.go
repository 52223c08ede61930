package processors

import (
	"testing"

	"treep/ast"
	"treep/parser"
)

func mustNormalize(t *testing.T, src string) []*ast.Element {
	t.Helper()
	decls, err := parser.Parse("test.tp", src)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	els, err := NormalizeProgram(decls)
	if err != nil {
		t.Fatalf("normalize error for %q: %v", src, err)
	}
	return els
}

func TestNormalizeFuncDefShape(t *testing.T) {
	els := mustNormalize(t, `def add(x:Int, y:Int) returns:Int { return x + y }`)
	if len(els) != 1 {
		t.Fatalf("want 1 top-level element, got %d", len(els))
	}
	def := els[0]
	if def.Kind != ast.KindDef || def.Name != "add" {
		t.Fatalf("want def add, got %s %s", def.Kind, def.Name)
	}
	if v, ok := def.Attr("x"); !ok || v != "Int" {
		t.Fatalf("want attr x=Int, got %q %v", v, ok)
	}
	if v, ok := def.Attr("returns"); !ok || v != "Int" {
		t.Fatalf("want attr returns=Int, got %q %v", v, ok)
	}
	if len(def.Children) != 3 { // param x, param y, block
		t.Fatalf("want 3 children, got %d", len(def.Children))
	}
	if def.Children[0].Kind != ast.KindParam || def.Children[0].Name != "x" {
		t.Fatalf("want param x first, got %+v", def.Children[0])
	}
	body := def.Children[2]
	if body.Kind != ast.KindBlock || len(body.Children) != 1 {
		t.Fatalf("want single-statement block, got %+v", body)
	}
	ret := body.Children[0]
	if ret.Kind != ast.KindReturn || len(ret.Children) != 1 {
		t.Fatalf("want return with value, got %+v", ret)
	}
	call := ret.Children[0]
	if call.Kind != ast.KindCall || call.Name != "+" {
		t.Fatalf("want call +, got %+v", call)
	}
}

// TestBlockArgumentEquivalence checks spec.md §8 property 2: a call
// with a trailing brace block normalizes identically to the same call
// with an explicit zero-parameter lambda argument.
func TestBlockArgumentEquivalence(t *testing.T) {
	withBlock := mustNormalize(t, `def main() { when(true) { log("hi") } }`)
	withLambda := mustNormalize(t, `def main() { when(true, () -> { log("hi") }) }`)

	a := withBlock[0].Children[0].Children[0] // block -> call(when, ...)
	b := withLambda[0].Children[0].Children[0]
	if !a.Equal(b) {
		t.Fatalf("block-argument desugaring mismatch:\n%+v\nvs\n%+v", a, b)
	}
}

func TestNormalizeLiterals(t *testing.T) {
	els := mustNormalize(t, `def main() { let x = 1 let y = "s" let z = true }`)
	body := els[0].Children[0]
	cases := []struct {
		typ, val string
	}{
		{"Int", "1"},
		{"String", "s"},
		{"Bool", "true"},
	}
	for i, c := range cases {
		lit := body.Children[i].Children[0]
		if lit.Kind != ast.KindLiteral {
			t.Fatalf("want literal, got %s", lit.Kind)
		}
		if v, _ := lit.Attr("type"); v != c.typ {
			t.Fatalf("case %d: want type %s, got %s", i, c.typ, v)
		}
		if v, _ := lit.Attr("value"); v != c.val {
			t.Fatalf("case %d: want value %s, got %s", i, c.val, v)
		}
	}
}

func TestNormalizeForLoop(t *testing.T) {
	els := mustNormalize(t, `def main() { for (i = 1, 10) { log("x") } }`)
	loop := els[0].Children[0].Children[0]
	if loop.Kind != ast.KindFor {
		t.Fatalf("want for, got %s", loop.Kind)
	}
	if v, ok := loop.Attr("var"); !ok || v != "i" {
		t.Fatalf("want var=i, got %q %v", v, ok)
	}
	if loop.Children[0].Kind != ast.KindFrom || loop.Children[1].Kind != ast.KindTo {
		t.Fatalf("want from/to children, got %+v", loop.Children[:2])
	}
}
