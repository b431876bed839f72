// Package diag holds the diagnostics shared by every css-blocks stage: the
// error taxonomy, source locations and the mapping from parsed nodes back to
// author files.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names the category of a diagnostic. It is rendered verbatim in messages.
type Kind string

// Error kinds
const (
	KindError      Kind = "Error"
	KindSyntax     Kind = "BlockSyntaxError"
	KindPath       Kind = "BlockPathError"
	KindCascading  Kind = "CascadingError"
	KindDefinition Kind = "DefinitionError"
)

// Position is a 1-based line and column. A zero Line means unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location identifies a span of a source file.
type Location struct {
	Filename string   `json:"filename"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

// Offset returns a copy of the location with the start column moved by n.
func (l *Location) Offset(n int) *Location {
	if l == nil {
		return nil
	}
	moved := *l
	moved.Start.Column += n
	if moved.End.Line == moved.Start.Line && moved.End.Column < moved.Start.Column {
		moved.End = moved.Start
	}
	return &moved
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Start.Line == 0 {
		return l.Filename
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Start.Line, l.Start.Column)
}

// Error is a css-blocks diagnostic.
//
// Errors are either recorded on a Block (processing continues) or returned
// from a parse (the file is abandoned). The same type serves both.
type Error struct {
	Kind     Kind
	Message  string
	Location *Location
	Cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("[css-blocks] ")
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Location != nil {
		sb.WriteString(" (")
		sb.WriteString(e.Location.String())
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap exposes the cause of a cascading error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a generic css-blocks error.
func New(loc *Location, format string, args ...any) *Error {
	return newError(KindError, loc, format, args...)
}

// Syntax creates an invalid block syntax error.
func Syntax(loc *Location, format string, args ...any) *Error {
	return newError(KindSyntax, loc, format, args...)
}

// Path creates a block path error.
func Path(loc *Location, format string, args ...any) *Error {
	return newError(KindPath, loc, format, args...)
}

// Definition creates a definition file error.
func Definition(loc *Location, format string, args ...any) *Error {
	return newError(KindDefinition, loc, format, args...)
}

// Cascade wraps an error raised while processing a referenced file so that it
// points at the directive in the importing file.
func Cascade(loc *Location, cause error) *Error {
	return &Error{
		Kind:     KindCascading,
		Message:  "Error in imported block.",
		Location: loc,
		Cause:    cause,
	}
}

func newError(kind Kind, loc *Location, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg, Location: loc}
}

// Chain lists err followed by each cause it wraps.
func Chain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}

// RootCause returns the innermost error of a cascade.
func RootCause(err error) error {
	chain := Chain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// IsKind reports whether any error in the chain is a diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	for _, e := range Chain(err) {
		var d *Error
		if errors.As(e, &d) && d.Kind == kind {
			return true
		}
	}
	return false
}
