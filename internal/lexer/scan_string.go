package lexer

import (
	"moveflow/internal/diag"
	"moveflow/internal/token"
)

// scanString scans a double-quoted literal on one line. Escapes stay in
// Text as written; the parser unquotes them.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			return lx.token(token.StringLit, start)
		case '\\':
			lx.cursor.Bump()
			lx.cursor.Bump() // no-op at EOF
		case '\n':
			return lx.invalid(start, diag.LexUnterminatedString, "newline in string literal")
		case 0:
			if lx.cursor.EOF() {
				return lx.invalid(start, diag.LexUnterminatedString, "unterminated string literal")
			}
			lx.cursor.Bump()
		default:
			lx.cursor.Bump()
		}
	}
}
