package macro

import (
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput    = NewError("failed to read input")
	ErrUnknownEntry = NewError("unknown entry point")
	ErrInvalidEntry = NewError("invalid entry point")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel as e.
// Errors derived from a sentinel via Wrap or With match that sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Violation classifies why a token was rejected.
type Violation int

const (
	// ViolationToken is a token of the wrong kind for the current state.
	ViolationToken Violation = iota

	// ViolationPunct is a misplaced comma or any punctuation other than comma.
	ViolationPunct

	// ViolationLiteral is a non-string literal where a path segment belongs.
	ViolationLiteral

	// ViolationLexical is malformed source text, such as an unterminated
	// string literal or block comment.
	ViolationLexical

	// ViolationUnterminated is an argument list with no closing parenthesis.
	ViolationUnterminated
)

// String returns the diagnostic message for the violation.
func (v Violation) String() string {
	switch v {
	case ViolationToken:
		return "unexpected token"
	case ViolationPunct:
		return "unexpected punctuation or punctuation type"
	case ViolationLiteral:
		return "unexpected literal type, expected string"
	case ViolationLexical:
		return "malformed token"
	case ViolationUnterminated:
		return "unterminated argument list"
	default:
		return "invalid input"
	}
}

// Diagnostic reports a rejected token at its source position.
type Diagnostic struct {
	File  string
	Kind  Violation
	Token Token
	// Detail optionally refines Kind, e.g. "unterminated string literal".
	Detail string
}

func newDiagnostic(kind Violation, tok Token) *Diagnostic {
	return &Diagnostic{Kind: kind, Token: tok}
}

// Pos returns the position of the offending token.
func (d *Diagnostic) Pos() Position { return d.Token.Pos }

// Message returns the human-readable violation without location.
func (d *Diagnostic) Message() string {
	msg := d.Kind.String()
	if d.Detail != "" {
		msg += ": " + d.Detail
	}

	if d.Token.Text != "" {
		msg += " " + strconv.Quote(d.Token.Text)
	}

	return msg
}

// Error implements the error interface as "file:line:col: message".
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	if d.File != "" {
		sb.WriteString(d.File)
		sb.WriteByte(':')
	}

	sb.WriteString(d.Token.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message())

	return sb.String()
}

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", d.Kind.String()),
		slog.Int("line", d.Token.Pos.Line),
		slog.Int("column", d.Token.Pos.Column),
		slog.String("token", d.Token.Text),
	}

	if d.File != "" {
		attrs = append(attrs, slog.String("file", d.File))
	}

	if d.Detail != "" {
		attrs = append(attrs, slog.String("detail", d.Detail))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the source line containing the offending token followed by
// a caret marking its column. It returns "" if source does not contain the
// token's line.
func (d *Diagnostic) Snippet(source string) string {
	line, col := d.Token.Pos.Line, d.Token.Pos.Column
	lines := strings.Split(source, "\n")

	if line <= 0 || line > len(lines) {
		return ""
	}

	var src strings.Builder

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(line))
	src.WriteString(" | ")
	src.WriteString(lines[line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(line))+5)

	if col > 0 {
		padding += strings.Repeat(" ", col-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// Diagnostics collects the diagnostics of every failing call site in a
// source, ordered by position.
type Diagnostics []*Diagnostic

// Error joins the individual diagnostics one per line.
func (ds Diagnostics) Error() string {
	part := make([]string, len(ds))
	for i, d := range ds {
		part[i] = d.Error()
	}

	return strings.Join(part, "\n")
}

// Unwrap returns the individual diagnostics for errors.Is/As.
func (ds Diagnostics) Unwrap() []error {
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}

	return errs
}

// LogValue implements slog.LogValuer.
func (ds Diagnostics) LogValue() slog.Value {
	attrs := make([]slog.Attr, len(ds))
	for i, d := range ds {
		attrs[i] = slog.Any(strconv.Itoa(i), d)
	}

	return slog.GroupValue(attrs...)
}
