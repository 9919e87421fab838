package macro

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	// KindString is a string literal. Its decoded value is a path segment.
	KindString Kind = iota

	// KindLiteral is any literal that is not a path segment: number, char,
	// byte string or C string.
	KindLiteral

	// KindPunct is a single punctuation or symbol rune.
	KindPunct

	// KindIdent is an identifier or keyword.
	KindIdent

	// KindGroup is a delimited group such as "(...)" collapsed into one token.
	KindGroup
)

// String returns a string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindLiteral:
		return "Literal"
	case KindPunct:
		return "Punct"
	case KindIdent:
		return "Ident"
	case KindGroup:
		return "Group"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Position is a location in source text.
type Position struct {
	Offset int `json:"offset" yaml:"offset"` // byte offset, starting at 0
	Line   int `json:"line"   yaml:"line"`   // line number, starting at 1
	Column int `json:"column" yaml:"column"` // column number, starting at 1 (runes)
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is one element of a token stream.
type Token struct {
	Kind Kind   `json:"kind"            yaml:"kind"`
	Text string `json:"text"            yaml:"text"`
	// Value is the decoded content of a KindString token.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Err is set on a KindString token whose escapes do not decode.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
	// Children holds the inner tokens of a KindGroup token, delimiters
	// excluded.
	Children []Token  `json:"children,omitempty" yaml:"children,omitempty"`
	Pos      Position `json:"pos"               yaml:"pos"`
	End      Position `json:"end"               yaml:"end"`
}

// StringToken returns a string literal token for value.
func StringToken(value string) Token {
	return Token{Kind: KindString, Text: Quote(value), Value: value}
}

// Quote returns a double-quoted string literal holding s, using only the
// escapes the scanner decodes. Printable runes are kept as they are.
func Quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == 0:
			sb.WriteString(`\0`)
		case r < utf8.RuneSelf && !unicode.IsPrint(r):
			sb.WriteString(`\x`)
			sb.WriteString(strconv.FormatInt(int64(r)>>4, 16))
			sb.WriteString(strconv.FormatInt(int64(r)&0xf, 16))
		case !unicode.IsPrint(r):
			sb.WriteString(`\u{`)
			sb.WriteString(strconv.FormatInt(int64(r), 16))
			sb.WriteByte('}')
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}

// IdentToken returns an identifier token.
func IdentToken(name string) Token {
	return Token{Kind: KindIdent, Text: name}
}

// PunctToken returns a punctuation token for r.
func PunctToken(r rune) Token {
	return Token{Kind: KindPunct, Text: string(r)}
}

// GroupToken returns a group delimited by open and its matching closer.
func GroupToken(open rune, children ...Token) Token {
	var sb strings.Builder

	sb.WriteRune(open)

	for i, c := range children {
		if i > 0 && c.Kind != KindPunct {
			sb.WriteByte(' ')
		}

		sb.WriteString(c.Text)
	}

	sb.WriteRune(closer(open))

	return Token{Kind: KindGroup, Text: sb.String(), Children: children}
}

// IsPunct reports whether t is the punctuation rune r.
func (t Token) IsPunct(r rune) bool {
	return t.Kind == KindPunct && t.Text == string(r)
}

// Delimiter returns the opening rune of a group token, or 0.
func (t Token) Delimiter() rune {
	if t.Kind != KindGroup || t.Text == "" {
		return 0
	}

	return rune(t.Text[0])
}

// closer returns the closing delimiter matching open, or 0.
func closer(open rune) rune {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	default:
		return 0
	}
}

func isCloser(r rune) bool { return r == ')' || r == ']' || r == '}' }
