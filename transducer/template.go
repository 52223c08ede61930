package transducer

import "treep/ast"

// Bindings holds one rule attempt's captures: each value is a
// *ast.Element, a []*ast.Element, or a string. Populated during a
// single match and discarded on failure (spec.md §4.4).
type Bindings map[string]any

// Expr builds a string from bindings for a template's name or
// attribute value position.
type Expr interface {
	_expr()
}

// VarExpr resolves to a bound string, or the Name of a bound node.
type VarExpr struct{ Name string }

func (VarExpr) _expr() {}

// LiteralExpr resolves to a fixed string.
type LiteralExpr struct{ Value string }

func (LiteralExpr) _expr() {}

// ConcatExpr resolves to the concatenation of its parts.
type ConcatExpr struct{ Parts []Expr }

func (ConcatExpr) _expr() {}

func evalExpr(e Expr, b Bindings) (string, error) {
	switch v := e.(type) {
	case VarExpr:
		val, ok := b[v.Name]
		if !ok {
			return "", ast.NewTransducerError(ast.Location{}, "unbound template variable %q", v.Name)
		}
		switch x := val.(type) {
		case string:
			return x, nil
		case *ast.Element:
			return x.Name, nil
		default:
			return "", ast.NewTransducerError(ast.Location{}, "variable %q is not a scalar", v.Name)
		}
	case LiteralExpr:
		return v.Value, nil
	case ConcatExpr:
		out := ""
		for _, part := range v.Parts {
			s, err := evalExpr(part, b)
			if err != nil {
				return "", err
			}
			out += s
		}
		return out, nil
	default:
		return "", ast.NewTransducerError(ast.Location{}, "unknown expr type %T", e)
	}
}

// AttrTemplate builds one output attribute from bound values.
type AttrTemplate struct {
	Key   string
	Value Expr
}

// Template is the closed set of output shapes from spec.md §4.4.
type Template interface {
	_template()
}

// NodeTemplate builds a fresh Element node.
type NodeTemplate struct {
	Kind           ast.Kind
	Name           Expr // nil for an unnamed node
	AttrTemplates  []AttrTemplate
	ChildTemplates []Template
}

func (NodeTemplate) _template() {}

// VarTemplate emits a bound value: a node is emitted as-is, a list is
// spliced into the surrounding children, and a plain string is
// wrapped into literal(String, s).
type VarTemplate struct{ Name string }

func (VarTemplate) _template() {}

// LiteralTemplate emits literal(String, Value).
type LiteralTemplate struct{ Value string }

func (LiteralTemplate) _template() {}

// ListTemplate splices the generated output of every item template
// into the surrounding children list.
type ListTemplate struct{ Items []Template }

func (ListTemplate) _template() {}

func stringLiteral(s string) *ast.Element {
	return ast.NewWithAttrs(ast.KindLiteral, "", []ast.Attr{{Key: "type", Value: "String"}, {Key: "value", Value: s}})
}

// genNode produces a single output node from a template. VarTemplate
// bound to a list is an error here (spec.md's TransducerError: "a
// list-template unexpectedly produces a list where a single node is
// required").
func genNode(t Template, b Bindings) (*ast.Element, error) {
	switch v := t.(type) {
	case NodeTemplate:
		var name string
		if v.Name != nil {
			var err error
			name, err = evalExpr(v.Name, b)
			if err != nil {
				return nil, err
			}
		}
		attrs, err := genAttrs(v.AttrTemplates, b)
		if err != nil {
			return nil, err
		}
		children, err := genChildren(v.ChildTemplates, b)
		if err != nil {
			return nil, err
		}
		return ast.NewWithAttrs(v.Kind, name, attrs, children...), nil

	case VarTemplate:
		val, ok := b[v.Name]
		if !ok {
			return nil, ast.NewTransducerError(ast.Location{}, "unbound template variable %q", v.Name)
		}
		switch x := val.(type) {
		case *ast.Element:
			return x, nil
		case string:
			return stringLiteral(x), nil
		case []*ast.Element:
			return nil, ast.NewTransducerError(ast.Location{}, "variable %q is a list where a single node is required", v.Name)
		default:
			return nil, ast.NewTransducerError(ast.Location{}, "variable %q has an unsupported binding type %T", v.Name, x)
		}

	case LiteralTemplate:
		return stringLiteral(v.Value), nil

	default:
		return nil, ast.NewTransducerError(ast.Location{}, "unknown template type %T", t)
	}
}

func genAttrs(templates []AttrTemplate, b Bindings) ([]ast.Attr, error) {
	if len(templates) == 0 {
		return nil, nil
	}
	out := make([]ast.Attr, 0, len(templates))
	for _, at := range templates {
		val, err := evalExpr(at.Value, b)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Attr{Key: at.Key, Value: val})
	}
	return out, nil
}

// genChildren expands a child-template list, splicing ListTemplate
// and list-bound VarTemplate entries into the surrounding sequence.
func genChildren(templates []Template, b Bindings) ([]*ast.Element, error) {
	var out []*ast.Element
	for _, t := range templates {
		switch v := t.(type) {
		case ListTemplate:
			items, err := genChildren(v.Items, b)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		case VarTemplate:
			val, ok := b[v.Name]
			if !ok {
				return nil, ast.NewTransducerError(ast.Location{}, "unbound template variable %q", v.Name)
			}
			switch x := val.(type) {
			case []*ast.Element:
				out = append(out, x...)
			case *ast.Element:
				out = append(out, x)
			case string:
				out = append(out, stringLiteral(x))
			default:
				return nil, ast.NewTransducerError(ast.Location{}, "variable %q has an unsupported binding type %T", v.Name, x)
			}
		default:
			el, err := genNode(t, b)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
	}
	return out, nil
}
