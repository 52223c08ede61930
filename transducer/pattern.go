package transducer

import "treep/ast"

// Pattern is the closed set of match shapes from spec.md §4.4. Sealed
// the same way ast.Type and ast.Value are: an unexported marker
// method restricts implementers to this file.
type Pattern interface {
	_pattern()
}

// AttrPattern matches a single (key, value) entry on the node's attr
// list. Exactly one of Literal or ValueVar is normally set: Literal
// requires an exact string match, ValueVar binds whatever value is
// found under Key.
type AttrPattern struct {
	Key      string
	Literal  *string
	ValueVar string
}

// KindPattern matches a node by kind, optionally capturing its name
// and matching its attrs and children.
type KindPattern struct {
	Kind          ast.Kind
	NameVar       string
	AttrPatterns  []AttrPattern
	ChildPatterns []Pattern
}

func (KindPattern) _pattern() {}

// VarPattern matches any node and binds it under Name.
type VarPattern struct {
	Name string
}

func (VarPattern) _pattern() {}

// AnyPattern matches any node, binding nothing.
type AnyPattern struct{}

func (AnyPattern) _pattern() {}

// ListPattern is only legal as the last entry of a KindPattern's
// ChildPatterns: Prefix matches one-to-one against however many
// leading children remain, and Rest (if non-empty) binds the
// remaining sibling tail as a list.
type ListPattern struct {
	Prefix []Pattern
	Rest   string
}

func (ListPattern) _pattern() {}

func matchPattern(p Pattern, n *ast.Element, b Bindings) bool {
	if n == nil {
		return false
	}
	switch v := p.(type) {
	case KindPattern:
		return matchKindPattern(v, n, b)
	case VarPattern:
		b[v.Name] = n
		return true
	case AnyPattern:
		return true
	default:
		return false
	}
}

func matchKindPattern(p KindPattern, n *ast.Element, b Bindings) bool {
	if n.Kind != p.Kind {
		return false
	}
	if p.NameVar != "" {
		if n.Name == "" {
			return false
		}
		b[p.NameVar] = n.Name
	}
	for _, ap := range p.AttrPatterns {
		val, ok := n.Attr(ap.Key)
		if !ok {
			return false
		}
		if ap.Literal != nil && val != *ap.Literal {
			return false
		}
		if ap.ValueVar != "" {
			b[ap.ValueVar] = val
		}
	}
	return matchChildren(p.ChildPatterns, n.Children, b)
}

func matchChildren(patterns []Pattern, children []*ast.Element, b Bindings) bool {
	if n := len(patterns); n > 0 {
		if lp, ok := patterns[n-1].(ListPattern); ok {
			fixed := patterns[:n-1]
			fixedLen := len(fixed) + len(lp.Prefix)
			if len(children) < fixedLen {
				return false
			}
			for i, cp := range fixed {
				if !matchPattern(cp, children[i], b) {
					return false
				}
			}
			for i, cp := range lp.Prefix {
				if !matchPattern(cp, children[len(fixed)+i], b) {
					return false
				}
			}
			if lp.Rest != "" {
				b[lp.Rest] = append([]*ast.Element(nil), children[fixedLen:]...)
			}
			return true
		}
	}
	if len(patterns) != len(children) {
		return false
	}
	for i, cp := range patterns {
		if !matchPattern(cp, children[i], b) {
			return false
		}
	}
	return true
}
