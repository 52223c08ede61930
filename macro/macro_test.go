package macro

import (
	"testing"

	"treep/ast"
)

func mustExpand(t *testing.T, n *ast.Element) *ast.Element {
	t.Helper()
	out, err := Expand(n)
	if err != nil {
		t.Fatalf("expand error: %v", err)
	}
	return out
}

func TestExpandWhenFidelity(t *testing.T) {
	// when(x > 0, log("positive"))
	cond := call(">", varRef("x"), intLit("0"))
	body := call("log", strLit("positive"))
	src := call("when", cond, body)

	got := mustExpand(t, src)

	want := ast.New(ast.KindIf, "",
		condition(call(">", varRef("x"), intLit("0"))),
		ast.New(ast.KindBlock, "", call("println", call("+", strLit("[LOG] "), strLit("positive")))),
	)
	if !got.Equal(want) {
		t.Fatalf("when expansion mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestExpandIdempotence(t *testing.T) {
	src := call("when", varRef("x"), call("log", strLit("hi")))
	once := mustExpand(t, src)
	twice := mustExpand(t, once)
	if !once.Equal(twice) {
		t.Fatalf("expand not idempotent:\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestExpandCoverageNoMacroCallsSurvive(t *testing.T) {
	src := ast.New(ast.KindBlock, "",
		call("inc", varRef("x")),
		call("until", varRef("done"), call("dec", varRef("n"))),
	)
	out := mustExpand(t, src)
	var walk func(*ast.Element)
	walk = func(n *ast.Element) {
		if n.Kind == ast.KindCall {
			if _, registered := Table[n.Name]; registered {
				t.Fatalf("registered macro call %q survived expansion", n.Name)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(out)
}

func TestExpandUnregisteredCallUntouched(t *testing.T) {
	src := call("myFunc", varRef("x"))
	out := mustExpand(t, src)
	if out.Name != "myFunc" || out.Kind != ast.KindCall {
		t.Fatalf("expected untouched call, got %+v", out)
	}
}

func TestExpandArityUnderflow(t *testing.T) {
	src := call("when", varRef("x")) // missing body
	if _, err := Expand(src); err == nil {
		t.Fatalf("expected arity error, got nil")
	}
}

func TestExpandTraceUsesHygienicName(t *testing.T) {
	out := mustExpand(t, call("trace", varRef("x")))
	if out.Kind != ast.KindBlock || len(out.Children) != 3 {
		t.Fatalf("want 3-statement block, got %+v", out)
	}
	if out.Children[0].Kind != ast.KindLet || out.Children[0].Name != "__trace_result" {
		t.Fatalf("want let __trace_result, got %+v", out.Children[0])
	}
}
