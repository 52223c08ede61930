// Package types implements the Hindley-Milner inferencer over ET
// (spec.md §4.3): fresh type variables, a monotonically accumulated
// substitution, unification with the reference's deliberate
// simplification of comparing type constructors atomically by name,
// occurs-check, and let-polymorphism for `def` and `let` bindings
// (only `def` may refer to itself).
package types

import (
	"fmt"
	"slices"

	"treep/ast"
)

// Solver owns the fresh-variable counter and the substitution for one
// inference run. Substitution is applied idempotently: Apply always
// walks to a fixed point before returning.
type Solver struct {
	counter int
	subst   map[string]ast.Type
}

func NewSolver() *Solver {
	return &Solver{subst: map[string]ast.Type{}}
}

func (s *Solver) Fresh() ast.TVar {
	s.counter++
	return ast.TVar{Name: fmt.Sprintf("t%d", s.counter)}
}

// Apply walks t substituting any bound variable to its current image,
// recursively, until reaching a fixed point.
func (s *Solver) Apply(t ast.Type) ast.Type {
	switch v := t.(type) {
	case ast.TVar:
		if bound, ok := s.subst[v.Name]; ok {
			return s.Apply(bound)
		}
		return v
	case ast.TCon:
		return v
	case ast.TFunc:
		return ast.TFunc{From: s.Apply(v.From), To: s.Apply(v.To)}
	default:
		return t
	}
}

// Unify normalizes both sides via Apply, then case-splits per
// spec.md §4.3: a variable on either side binds after the occurs
// check; two constructors unify iff their names match — the reference
// implementation does not recurse into constructor argument lists;
// function types unify domain-to-domain and codomain-to-codomain.
func (s *Solver) Unify(a, b ast.Type, loc ast.Location) error {
	a, b = s.Apply(a), s.Apply(b)

	if va, ok := a.(ast.TVar); ok {
		return s.bind(va.Name, b, loc)
	}
	if vb, ok := b.(ast.TVar); ok {
		return s.bind(vb.Name, a, loc)
	}
	if ca, ok := a.(ast.TCon); ok {
		if cb, ok := b.(ast.TCon); ok {
			if ca.Name == cb.Name {
				return nil
			}
		}
	}
	if fa, ok := a.(ast.TFunc); ok {
		if fb, ok := b.(ast.TFunc); ok {
			if err := s.Unify(fa.From, fb.From, loc); err != nil {
				return err
			}
			return s.Unify(s.Apply(fa.To), s.Apply(fb.To), loc)
		}
	}
	return ast.NewTypeError(loc, "cannot unify %s with %s", a, b)
}

func (s *Solver) bind(name string, t ast.Type, loc ast.Location) error {
	if tv, ok := t.(ast.TVar); ok && tv.Name == name {
		return nil
	}
	if s.Occurs(name, t) {
		return ast.NewTypeError(loc, "occurs check failed: %s occurs in %s", name, t)
	}
	s.subst[name] = t
	return nil
}

// Occurs reports whether v appears free in apply(t), recursing
// through function types (constructor arguments are never traversed,
// matching Unify's atomic treatment of TCon).
func (s *Solver) Occurs(v string, t ast.Type) bool {
	switch x := s.Apply(t).(type) {
	case ast.TVar:
		return x.Name == v
	case ast.TFunc:
		return s.Occurs(v, x.From) || s.Occurs(v, x.To)
	default:
		return false
	}
}

func freeVars(t ast.Type) []string {
	switch v := t.(type) {
	case ast.TVar:
		return []string{v.Name}
	case ast.TFunc:
		return append(freeVars(v.From), freeVars(v.To)...)
	default:
		return nil
	}
}

func (s *Solver) freeVarsEnv(env ast.TypeEnv) []string {
	var out []string
	for _, scheme := range env {
		for _, v := range freeVars(s.Apply(scheme.Type)) {
			if !slices.Contains(scheme.Vars, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// Generalize computes the free variables of apply(t) minus those free
// in env, and quantifies over the remainder.
func (s *Solver) Generalize(env ast.TypeEnv, t ast.Type) ast.Scheme {
	applied := s.Apply(t)
	envFree := s.freeVarsEnv(env)
	var quantified []string
	for _, v := range freeVars(applied) {
		if !slices.Contains(envFree, v) && !slices.Contains(quantified, v) {
			quantified = append(quantified, v)
		}
	}
	return ast.Scheme{Vars: quantified, Type: applied}
}

// Instantiate replaces each quantified variable in the scheme with a
// fresh one.
func (s *Solver) Instantiate(scheme ast.Scheme) ast.Type {
	mapping := map[string]ast.Type{}
	for _, v := range scheme.Vars {
		mapping[v] = s.Fresh()
	}
	return substitute(scheme.Type, mapping)
}

func substitute(t ast.Type, mapping map[string]ast.Type) ast.Type {
	switch v := t.(type) {
	case ast.TVar:
		if fresh, ok := mapping[v.Name]; ok {
			return fresh
		}
		return v
	case ast.TFunc:
		return ast.TFunc{From: substitute(v.From, mapping), To: substitute(v.To, mapping)}
	default:
		return t
	}
}
