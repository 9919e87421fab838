package macro

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// ScanReader reads all of r and scans it into tokens.
func ScanReader(ctx context.Context, r io.Reader, opts ...Option) ([]Token, error) {
	data, err := ReadAll(r)
	if err != nil {
		return nil, err
	}

	return Scan(ctx, string(data), opts...)
}

// ReadAll reads r to EOF through an asynchronous read-ahead buffer. A read
// failure is reported as [ErrReadInput].
func ReadAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return data, nil
}

// Scan converts source text into a flat token stream.
//
// Whitespace and comments are skipped. Delimiters are emitted as individual
// punctuation tokens; groups are formed only when an argument list is
// collected. A lexical error is returned as a *Diagnostic with
// [ViolationLexical].
func Scan(ctx context.Context, s string, opts ...Option) ([]Token, error) {
	cfg := makeConfig(opts...)

	sc := &scanner{
		input: []byte(s),
		pos:   0,
		line:  1,
		col:   1,
	}

	var toks []Token

	for {
		tok, ok, err := sc.next()
		if err != nil {
			err.File = cfg.file

			return nil, err
		}

		if !ok {
			break
		}

		toks = append(toks, tok)
	}

	cfg.logger.TraceContext(ctx, "scan complete",
		slog.String("file", cfg.file),
		slog.Int("source_bytes", len(s)),
		slog.Int("token_count", len(toks)))

	return toks, nil
}

// scanner holds the lexer state.
type scanner struct {
	input []byte
	pos   int
	line  int
	col   int
}

// next scans one token. It reports false at end of input.
func (s *scanner) next() (Token, bool, *Diagnostic) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, false, err
	}

	if s.eof() {
		return Token{}, false, nil
	}

	start := s.position()
	ch := s.peek()

	var (
		tok Token
		err *Diagnostic
	)

	switch {
	case ch == '"' || ch == '`':
		tok, err = s.scanString(ch)

	case ch == '\'':
		tok = s.scanChar()

	case isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))):
		tok = s.scanNumber()

	case isIdentifierStart(ch):
		tok, err = s.scanIdentifier()

	default:
		s.advance()

		tok = Token{Kind: KindPunct}
	}

	if err != nil {
		return Token{}, false, err
	}

	tok.Pos = start
	tok.End = s.position()
	tok.Text = string(s.input[start.Offset:s.pos])

	return tok, true, nil
}

// scanString scans an escaped ("...") or verbatim (`...`) string literal.
// Escaped strings may span lines. A string whose escapes do not decode is
// still returned, with Err set.
func (s *scanner) scanString(quote rune) (Token, *Diagnostic) {
	start := s.position()

	s.advance() // skip opening quote

	for !s.eof() {
		ch := s.peek()

		if quote == '"' && ch == '\\' {
			s.advance() // skip backslash

			if !s.eof() {
				s.advance() // skip escaped char
			}

			continue
		}

		s.advance()

		if ch == quote {
			body := string(s.input[start.Offset+1 : s.pos-1])
			if quote == '`' {
				return Token{Kind: KindString, Value: body}, nil
			}

			value, err := unescape(body)
			if err != nil {
				return Token{Kind: KindString, Err: err.Error()}, nil
			}

			return Token{Kind: KindString, Value: value}, nil
		}
	}

	return Token{}, s.lexical(
		start, string(s.input[start.Offset:s.pos]), "unterminated string literal",
	)
}

// scanRawString scans the hashes and quoted body of a raw string whose prefix
// has already been consumed. The body is taken verbatim.
func (s *scanner) scanRawString(hashes int) (Token, *Diagnostic) {
	start := s.position()

	for range hashes + 1 {
		s.advance() // skip hashes and opening quote
	}

	body := s.pos

	for !s.eof() {
		if s.peek() == '"' && s.hashRun(1) >= hashes {
			value := string(s.input[body:s.pos])

			for range hashes + 1 {
				s.advance()
			}

			return Token{Kind: KindString, Value: value}, nil
		}

		s.advance()
	}

	return Token{}, s.lexical(
		start, string(s.input[start.Offset:s.pos]), "unterminated raw string literal",
	)
}

// scanChar scans a character literal ('x', '\n', 'é'). A quote that opens
// no character literal, such as that of a lifetime ('a, 'static), is
// scanned as punctuation on its own.
func (s *scanner) scanChar() Token {
	if isIdentifierStart(s.peekAt(1)) && s.peekAt(2) != '\'' {
		s.advance()

		return Token{Kind: KindPunct}
	}

	saved := *s

	s.advance() // skip opening quote

	for !s.eof() {
		ch := s.peek()

		if ch == '\n' {
			break
		}

		if ch == '\\' {
			s.advance()

			if !s.eof() {
				s.advance()
			}

			continue
		}

		s.advance()

		if ch == '\'' {
			return Token{Kind: KindLiteral}
		}
	}

	*s = saved

	s.advance()

	return Token{Kind: KindPunct}
}

// scanNumber scans a numeric literal. The scan is permissive: it consumes a
// run of alphanumerics, underscores and dots, plus a sign directly after an
// exponent marker, so "0x1F", "1_000", "1.5e-3" and "42u8" are one token.
func (s *scanner) scanNumber() Token {
	prev := rune(0)

	for !s.eof() {
		ch := s.peek()

		switch {
		case isIdentifierContinue(ch), ch == '.':
		case (ch == '+' || ch == '-') && (prev == 'e' || prev == 'E' ||
			prev == 'p' || prev == 'P'):
		default:
			return Token{Kind: KindLiteral}
		}

		prev = ch

		s.advance()
	}

	return Token{Kind: KindLiteral}
}

// scanIdentifier scans an identifier, or a string literal introduced by one
// of the prefixes r, b, br, c and cr. Only r"..." yields a path segment;
// byte and C strings are other literals.
func (s *scanner) scanIdentifier() (Token, *Diagnostic) {
	start := s.pos

	s.advance()

	for !s.eof() && isIdentifierContinue(s.peek()) {
		s.advance()
	}

	switch prefix := string(s.input[start:s.pos]); prefix {
	case "r", "br", "cr":
		hashes := s.hashRun(0)
		if s.pos+hashes >= len(s.input) || s.input[s.pos+hashes] != '"' {
			break
		}

		tok, err := s.scanRawString(hashes)
		if prefix != "r" {
			tok = Token{Kind: KindLiteral}
		}

		return tok, err

	case "b", "c":
		if s.peek() != '"' {
			break
		}

		_, err := s.scanString('"')

		return Token{Kind: KindLiteral}, err
	}

	return Token{Kind: KindIdent}, nil
}

// hashRun counts the '#' bytes starting off bytes past the current position.
func (s *scanner) hashRun(off int) int {
	n := 0
	for i := s.pos + off; i < len(s.input) && s.input[i] == '#'; i++ {
		n++
	}

	return n
}

// unescape decodes the escape sequences of a string literal body: \n \r
// \t \\ \0 \' \", \x00 through \x7F, \u{...} with up to six hex digits,
// and a backslash before a line break, which skips the break and any
// leading whitespace on the next line.
func unescape(body string) (string, error) {
	if !strings.Contains(body, "\\") {
		return body, nil
	}

	var sb strings.Builder

	for {
		i := strings.IndexByte(body, '\\')
		if i < 0 {
			sb.WriteString(body)

			return sb.String(), nil
		}

		sb.WriteString(body[:i])

		if i+1 >= len(body) {
			return "", errors.New("trailing backslash")
		}

		esc := body[i+1]
		body = body[i+2:]

		switch esc {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(esc)

		case '\n', '\r':
			body = strings.TrimLeft(body, " \t\n\r")

		case 'x':
			if len(body) < 2 {
				return "", errors.New("short hex escape")
			}

			v, err := strconv.ParseUint(body[:2], 16, 8)
			if err != nil || v >= utf8.RuneSelf {
				return "", errors.New("invalid hex escape \\x" + body[:2])
			}

			sb.WriteByte(byte(v))

			body = body[2:]

		case 'u':
			end := strings.IndexByte(body, '}')
			if !strings.HasPrefix(body, "{") || end < 0 {
				return "", errors.New("malformed unicode escape")
			}

			digits := strings.ReplaceAll(body[1:end], "_", "")

			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || len(digits) > 6 || !utf8.ValidRune(rune(v)) {
				return "", errors.New("invalid unicode escape \\u" + body[:end+1])
			}

			sb.WriteRune(rune(v))

			body = body[end+1:]

		default:
			return "", errors.New("unknown escape \\" + string(esc))
		}
	}
}

func (s *scanner) lexical(start Position, text, detail string) *Diagnostic {
	d := newDiagnostic(ViolationLexical, Token{
		Kind: KindPunct,
		Text: text,
		Pos:  start,
		End:  s.position(),
	})
	d.Detail = detail

	return d
}

// Helper methods

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[s.pos:])

	return r
}

// peekAt returns the rune n runes past the current one, or 0.
func (s *scanner) peekAt(n int) rune {
	pos := s.pos

	for ; n > 0 && pos < len(s.input); n-- {
		_, size := utf8.DecodeRune(s.input[pos:])
		pos += size
	}

	if pos >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(s.input[pos:])

	return r
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	r, size := utf8.DecodeRune(s.input[s.pos:])

	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *scanner) position() Position {
	return Position{
		Offset: s.pos,
		Line:   s.line,
		Column: s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() *Diagnostic {
	for {
		for !s.eof() && unicode.IsSpace(s.peek()) {
			s.advance()
		}

		if s.eof() || s.peek() != '/' {
			return nil
		}

		switch s.peekAt(1) {
		case '/':
			for !s.eof() && s.peek() != '\n' {
				s.advance()
			}

		case '*':
			start := s.position()

			s.advance() // skip '/'
			s.advance() // skip '*'

			depth := 1

			for !s.eof() && depth > 0 {
				switch {
				case s.peek() == '*' && s.peekAt(1) == '/':
					s.advance()
					s.advance()

					depth--

				case s.peek() == '/' && s.peekAt(1) == '*':
					s.advance()
					s.advance()

					depth++

				default:
					s.advance()
				}
			}

			if depth > 0 {
				return s.lexical(start, "/*", "unterminated block comment")
			}

		default:
			return nil
		}
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
