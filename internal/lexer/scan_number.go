package lexer

import (
	"moveflow/internal/diag"
	"moveflow/internal/token"
)

// scanNumber scans a decimal integer, or a float when allowFloat is set:
// 12, 1.5, 1e9, 2.5e-3. Signs are separate tokens.
func (lx *Lexer) scanNumber(allowFloat bool) token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	lx.digits()
	if !allowFloat {
		return lx.token(kind, start)
	}

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		// '..' stays a range token
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.digits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			return lx.invalid(start, diag.LexBadNumber, "expected digit after exponent")
		}
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	return lx.token(kind, start)
}

// digits skips decimal digits and '_' separators.
func (lx *Lexer) digits() {
	for b := lx.cursor.Peek(); isDec(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}
