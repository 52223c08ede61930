package ast

import (
	"fmt"
	"strings"
)

// Type is a closed union of the three type-language variants spec.md
// §3 describes: a type variable, a type constructor, and a function
// type. Sealed the way the teacher seals ConstValue and typed.Type: an
// unexported marker method restricts implementers to this file.
type Type interface {
	fmt.Stringer
	_type()
}

// TVar is a type variable, identified by name.
type TVar struct {
	Name string
}

func (TVar) _type() {}

func (t TVar) String() string { return t.Name }

// TCon is a type constructor: a name plus optional argument types.
// Unification treats two TCons as equal iff their Names match — it
// does not recurse into Args (spec.md §4.3, the unify contract's
// explicit "structurally atomic by name" note). Args is carried for
// display and for callers that want richer types than the base
// language uses (Int, String, Bool, Unit have no args).
type TCon struct {
	Name string
	Args []Type
}

func (TCon) _type() {}

func (t TCon) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

// TFunc is a function type.
type TFunc struct {
	From Type
	To   Type
}

func (TFunc) _type() {}

func (t TFunc) String() string {
	return fmt.Sprintf("(%v -> %v)", t.From, t.To)
}

// Scheme is a type closed over a set of quantified variables.
type Scheme struct {
	Vars []string
	Type Type
}

// TypeEnv maps identifiers to type schemes. Order is irrelevant
// (spec.md §3), but shadowing inside a nested scope must be
// observable — Extend returns a new map so an inner scope's bindings
// never leak back into the outer one it was copied from.
type TypeEnv map[string]Scheme

// Extend returns a new environment with name bound to scheme, leaving
// the receiver untouched.
func (env TypeEnv) Extend(name string, scheme Scheme) TypeEnv {
	out := make(TypeEnv, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[name] = scheme
	return out
}

// Lookup returns the scheme bound to name, if any.
func (env TypeEnv) Lookup(name string) (Scheme, bool) {
	s, ok := env[name]
	return s, ok
}

// Known base type constructors.
const (
	TypeInt    = "Int"
	TypeString = "String"
	TypeBool   = "Bool"
	TypeUnit   = "Unit"
)

func Int() Type    { return TCon{Name: TypeInt} }
func Str() Type    { return TCon{Name: TypeString} }
func Bool() Type   { return TCon{Name: TypeBool} }
func Unit() Type   { return TCon{Name: TypeUnit} }
