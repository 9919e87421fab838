package macro

// Extract validates an argument token stream against the grammar
//
//	STRING ( ',' STRING )* ','?
//
// and returns the decoded value of every string literal in order.
//
// The first malformed token aborts extraction: the returned segments are nil
// and the error is a *Diagnostic positioned at that token. An empty stream is
// valid and yields zero segments. A string literal whose escapes did not
// decode is rejected as a lexical violation. A single trailing comma is tolerated, but a
// leading comma or two consecutive commas are not.
func Extract(toks []Token) ([]string, error) {
	segments := make([]string, 0, (len(toks)+1)/2)
	expectPunct := false

	for _, tok := range toks {
		if expectPunct {
			switch {
			case tok.IsPunct(','):
			case tok.Kind == KindPunct:
				return nil, newDiagnostic(ViolationPunct, tok)
			default:
				return nil, newDiagnostic(ViolationToken, tok)
			}
		} else {
			switch tok.Kind {
			case KindString:
				if tok.Err != "" {
					d := newDiagnostic(ViolationLexical, tok)
					d.Detail = tok.Err

					return nil, d
				}

				segments = append(segments, tok.Value)
			case KindPunct:
				return nil, newDiagnostic(ViolationPunct, tok)
			case KindLiteral:
				return nil, newDiagnostic(ViolationLiteral, tok)
			default:
				return nil, newDiagnostic(ViolationToken, tok)
			}
		}

		expectPunct = !expectPunct
	}

	return segments, nil
}
