package minimeta

import (
	"errors"
	"fmt"
	"strings"
)

// Phase records where an error was raised.
type Phase string

const (
	PhaseRegister Phase = "register" // descriptor construction
	PhaseEncode   Phase = "encode"
	PhaseDecode   Phase = "decode"
)

// Kind classifies an error. The set is closed.
type Kind string

const (
	// KindRegistration: a type was used without a descriptor, or a field
	// table could not be turned into one. Programmer error.
	KindRegistration Kind = "registration"
	// KindSchemaMismatch: a binary composite header carried a version other
	// than the locally known one.
	KindSchemaMismatch Kind = "schema_mismatch"
	// KindMalformedInput: truncated stream, tree node of the wrong kind,
	// unparsable scalar.
	KindMalformedInput Kind = "malformed_input"
)

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrRegistration   = &Error{Kind: KindRegistration}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
	ErrMalformedInput = &Error{Kind: KindMalformedInput}
)

// Error is the structured error returned by every registry and codec
// operation.
type Error struct {
	Phase  Phase
	Kind   Kind
	Type   string   // registered type name, when known
	Path   []string // field names / sequence indices from the root value
	Detail string
	Cause  error

	// Expected and Got are set for KindSchemaMismatch.
	Expected uint64
	Got      uint64
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("minimeta: ")
	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Type != "" {
		b.WriteString(" (type ")
		b.WriteString(e.Type)
		b.WriteByte(')')
	}
	if e.Kind == KindSchemaMismatch {
		fmt.Fprintf(&b, ": version %#016x, expected %#016x", e.Got, e.Expected)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// AsError extracts an *Error from err using errors.As.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// errorBuilder provides structured error construction.
type errorBuilder struct {
	err Error
}

func newError(phase Phase, kind Kind) *errorBuilder {
	return &errorBuilder{err: Error{Phase: phase, Kind: kind}}
}

func (b *errorBuilder) typ(name string) *errorBuilder {
	b.err.Type = name
	return b
}

func (b *errorBuilder) detail(format string, args ...any) *errorBuilder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(format, args...)
	} else {
		b.err.Detail = format
	}
	return b
}

func (b *errorBuilder) cause(err error) *errorBuilder {
	b.err.Cause = err
	return b
}

func (b *errorBuilder) build() *Error {
	e := b.err
	return &e
}

func schemaMismatch(typeName string, expected, got uint64) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Kind:     KindSchemaMismatch,
		Type:     typeName,
		Expected: expected,
		Got:      got,
	}
}

func malformed(phase Phase, typeName, format string, args ...any) *Error {
	return newError(phase, KindMalformedInput).typ(typeName).detail(format, args...).build()
}

// atPath prefixes the path of a codec error with one segment as the error
// unwinds through a composite field or a sequence element.
func atPath(err error, segment string) error {
	if e, ok := err.(*Error); ok {
		e.Path = append([]string{segment}, e.Path...)
		return e
	}
	return err
}
