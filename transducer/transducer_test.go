package transducer

import (
	"testing"

	"treep/ast"
)

func TestIdentityDefault(t *testing.T) {
	tr := New(nil)
	tree := ast.New(ast.KindCall, "f", ast.New(ast.KindVar, "x"), MakeLiteral("Int", "1"))
	out := tr.Transform(tree)
	if !out.Equal(tree) {
		t.Fatalf("identity transducer changed the tree:\ngot  %+v\nwant %+v", out, tree)
	}
}

// TestRuleOrderPriority covers spec.md §8 property 9: the
// earlier-declared matching rule fires.
func TestRuleOrderPriority(t *testing.T) {
	renameToA := Rule{
		Pattern:  MatchKind(ast.KindVar),
		Template: GenerateNode(ast.KindVar, LiteralExpr{Value: "a"}, nil),
	}
	renameToB := Rule{
		Pattern:  MatchKind(ast.KindVar),
		Template: GenerateNode(ast.KindVar, LiteralExpr{Value: "b"}, nil),
	}

	first := New([]Rule{renameToA, renameToB})
	out := first.Transform(ast.New(ast.KindVar, "x"))
	if out.Name != "a" {
		t.Fatalf("want earlier rule to win, got name %q", out.Name)
	}

	swapped := New([]Rule{renameToB, renameToA})
	out = swapped.Transform(ast.New(ast.KindVar, "x"))
	if out.Name != "b" {
		t.Fatalf("want swapped rule order to change result, got name %q", out.Name)
	}
}

// TestRestCaptureRenamesDefToFunction covers spec.md §8 property 10 and end-to-end
// scenario E5: renaming a def into a function node with its param
// list captured wholesale and its own children individually renamed.
func TestRestCaptureRenamesDefToFunction(t *testing.T) {
	renameDef := Rule{
		Pattern: MatchKind(ast.KindDef, CaptureNameAs("fname"), CaptureChildrenAs("kids")),
		Template: GenerateNode(ast.Kind("function"), VarExpr{Name: "fname"}, nil,
			ListTemplate{Items: []Template{VarTemplate{Name: "kids"}}}),
	}
	renameParam := Rule{
		Pattern:  MatchKind(ast.KindParam, CaptureNameAs("pname")),
		Template: GenerateNode(ast.Kind("argument"), VarExpr{Name: "pname"}, nil),
	}
	tr := New([]Rule{renameDef, renameParam})

	input := ast.New(ast.KindDef, "add", ast.New(ast.KindParam, "x"), ast.New(ast.KindParam, "y"))
	out := tr.Transform(input)

	want := ast.New(ast.Kind("function"), "add",
		ast.New(ast.Kind("argument"), "x"),
		ast.New(ast.Kind("argument"), "y"),
	)
	if !out.Equal(want) {
		t.Fatalf("rest-capture rename mismatch:\ngot  %+v\nwant %+v", out, want)
	}
}

func TestRestCaptureRequiresEqualArityWithoutRest(t *testing.T) {
	twoChildren := KindPattern{Kind: ast.KindCall, ChildPatterns: []Pattern{VarPattern{Name: "a"}, VarPattern{Name: "b"}}}
	b := Bindings{}
	one := ast.New(ast.KindCall, "f", ast.New(ast.KindVar, "x"))
	if matchKindPattern(twoChildren, one, b) {
		t.Fatalf("expected arity mismatch to fail without a rest-capture")
	}
}

// TestFixpointArithmeticIdentities covers spec.md §8 property 11 and
// end-to-end scenario E6.
func TestFixpointArithmeticIdentities(t *testing.T) {
	opPattern := func(op string, l, r Pattern) Pattern {
		return KindPattern{Kind: ast.KindCall, NameVar: "op", ChildPatterns: []Pattern{l, r}}
	}
	fixedOp := func(op string) func(Bindings) bool {
		return func(b Bindings) bool { name, _ := b["op"].(string); return name == op }
	}
	intLit := func(v string) Pattern {
		lit := v
		typ := "Int"
		return KindPattern{Kind: ast.KindLiteral, AttrPatterns: []AttrPattern{{Key: "type", Literal: &typ}, {Key: "value", Literal: &lit}}}
	}

	rules := []Rule{
		{Pattern: opPattern("+", VarPattern{Name: "x"}, intLit("0")), Condition: fixedOp("+"), Template: VarTemplate{Name: "x"}},
		{Pattern: opPattern("+", intLit("0"), VarPattern{Name: "x"}), Condition: fixedOp("+"), Template: VarTemplate{Name: "x"}},
		{Pattern: opPattern("*", VarPattern{Name: "x"}, intLit("1")), Condition: fixedOp("*"), Template: VarTemplate{Name: "x"}},
		{Pattern: opPattern("*", intLit("1"), VarPattern{Name: "x"}), Condition: fixedOp("*"), Template: VarTemplate{Name: "x"}},
		{Pattern: opPattern("*", AnyPattern{}, intLit("0")), Condition: fixedOp("*"), Template: GenerateLiteral("0")},
		{Pattern: opPattern("*", intLit("0"), AnyPattern{}), Condition: fixedOp("*"), Template: GenerateLiteral("0")},
	}

	base := New(rules)
	fp := Fixpoint(base, 3)

	// ((x+0)*1)+0
	x := ast.New(ast.KindVar, "x")
	tree := call2("+", call2("*", call2("+", x, MakeLiteral("Int", "0")), MakeLiteral("Int", "1")), MakeLiteral("Int", "0"))

	out := fp.Transform(tree)
	if out.Kind != ast.KindVar || out.Name != "x" {
		t.Fatalf("expected fixpoint to converge to var(x), got %+v", out)
	}
}

func call2(op string, l, r *ast.Element) *ast.Element {
	return ast.New(ast.KindCall, op, l, r)
}
