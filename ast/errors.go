package ast

import "fmt"

// kindError is the shared shape of every stage-specific error kind:
// a location and a message, formatted as "file:line:col kind: message"
// when the location is known and as "kind: message" otherwise (grounded
// on common.Error.Error() in the teacher).
type kindError struct {
	kind     string
	Location Location
	Message  string
}

func (e kindError) Error() string {
	if e.Location.IsEmpty() {
		return fmt.Sprintf("%s: %s", e.kind, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Location, e.kind, e.Message)
}

func newKindError(kind string, loc Location, format string, args ...any) kindError {
	return kindError{kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// LexError signals unexpected characters or an unterminated string.
type LexError struct{ kindError }

func NewLexError(loc Location, format string, args ...any) LexError {
	return LexError{newKindError("lex error", loc, format, args...)}
}

// ParseError signals a mismatched delimiter, unexpected token, or
// malformed construct.
type ParseError struct{ kindError }

func NewParseError(loc Location, format string, args ...any) ParseError {
	return ParseError{newKindError("parse error", loc, format, args...)}
}

// NormalizeError signals an ET construction invariant violated during
// CST lowering. Should be unreachable from a valid CST.
type NormalizeError struct{ kindError }

func NewNormalizeError(loc Location, format string, args ...any) NormalizeError {
	return NormalizeError{newKindError("normalize error", loc, format, args...)}
}

// MacroError signals an arity underflow referencing an unbound
// pattern variable during macro expansion. An unregistered macro name
// is not an error — it is left as an ordinary call.
type MacroError struct{ kindError }

func NewMacroError(loc Location, format string, args ...any) MacroError {
	return MacroError{newKindError("macro error", loc, format, args...)}
}

// TypeError signals a unification failure, occurs-check failure,
// unbound identifier, or call-site arity mismatch.
type TypeError struct{ kindError }

func NewTypeError(loc Location, format string, args ...any) TypeError {
	return TypeError{newKindError("type error", loc, format, args...)}
}

// RuntimeError signals a failed assertion, explicit `error` call,
// division by zero, or a type mismatch that leaked past inference.
type RuntimeError struct{ kindError }

func NewRuntimeError(loc Location, format string, args ...any) RuntimeError {
	return RuntimeError{newKindError("runtime error", loc, format, args...)}
}

// TransducerError signals a template referencing an unbound variable,
// or a list-template producing a list where a single node is
// required.
type TransducerError struct{ kindError }

func NewTransducerError(loc Location, format string, args ...any) TransducerError {
	return TransducerError{newKindError("transducer error", loc, format, args...)}
}

// SystemError marks an internal invariant violation that should be
// unreachable given a valid pipeline input. Panicked, not returned,
// mirroring common.SystemError in the teacher.
type SystemError struct {
	Message string
}

func (e SystemError) Error() string { return fmt.Sprintf("system error: %s", e.Message) }
