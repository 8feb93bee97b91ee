package lexer

import (
	"moveflow/internal/diag"
	"moveflow/internal/token"
)

// Двухбайтовые проверяются раньше однобайтовых: "->" не "-" и ">".
var digraphs = [...]struct {
	a, b byte
	kind token.Kind
}{
	{'.', '.', token.DotDot},
	{':', ':', token.ColonColon},
	{'-', '>', token.Arrow},
	{'=', '>', token.FatArrow},
	{'<', '-', token.LArrow},
}

var punct = [utf8RuneSelf]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
	',': token.Comma,
	';': token.Semicolon,
	':': token.Colon,
	'.': token.Dot,
	'=': token.Assign,
	'&': token.Amp,
	'*': token.Star,
	'-': token.Minus,
	'!': token.Bang,
	'<': token.Lt,
	'>': token.Gt,
	'_': token.Underscore,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	if b0, b1, ok := lx.cursor.Peek2(); ok {
		for _, d := range digraphs {
			if b0 == d.a && b1 == d.b {
				lx.cursor.Bump()
				lx.cursor.Bump()
				return lx.token(d.kind, start)
			}
		}
	}

	ch := lx.cursor.Bump()
	if ch < utf8RuneSelf && punct[ch] != token.Invalid {
		return lx.token(punct[ch], start)
	}
	tok := lx.token(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unexpected character "+quoteByte(ch))
	return tok
}
