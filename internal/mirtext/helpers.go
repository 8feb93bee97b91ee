package mirtext

import (
	"fmt"
	"strconv"
	"strings"

	"moveflow/internal/diag"
	"moveflow/internal/source"
	"moveflow/internal/token"
)

// advance consumes the next token and remembers its span.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagSpan points at the next token, or just past the last one at EOF.
func (p *Parser) diagSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

func (p *Parser) expect(k token.Kind, code diag.Code, what string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, fmt.Sprintf("expected %s, got %s", what, describe(p.lx.Peek())))
	return token.Token{Kind: token.Invalid, Span: p.diagSpan()}, false
}

// expectIdent consumes the contextual word text.
func (p *Parser) expectIdent(text string) bool {
	if p.atIdent(text) {
		p.advance()
		return true
	}
	p.err(diag.SynUnexpectedToken, fmt.Sprintf("expected '%s', got %s", text, describe(p.lx.Peek())))
	return false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errors++
		if p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors {
			return
		}
	}
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, sev, sp, msg, nil)
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.Invalid:
		return strconv.Quote(tok.Text)
	}
	return tok.Kind.String()
}

// parseUint parses an integer literal token.
func (p *Parser) parseUint() (uint64, bool) {
	tok, ok := p.expect(token.IntLit, diag.SynBadNumber, "integer")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
	if err != nil {
		p.errAt(diag.SynBadNumber, tok.Span, "bad integer "+strconv.Quote(tok.Text))
		return 0, false
	}
	return v, true
}

// parseInt parses an optionally negated integer literal.
func (p *Parser) parseInt() (int64, bool) {
	neg := false
	if p.at(token.Minus) {
		p.advance()
		neg = true
	}
	tok, ok := p.expect(token.IntLit, diag.SynBadNumber, "integer")
	if !ok {
		return 0, false
	}
	text := strings.ReplaceAll(tok.Text, "_", "")
	if neg {
		text = "-" + text
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.errAt(diag.SynBadNumber, tok.Span, "bad integer "+strconv.Quote(text))
		return 0, false
	}
	return v, true
}

// numbered parses identifiers of the form <prefix><digits>, e.g. _3 or bb0.
func numbered(text, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(text, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isLocalName(tok token.Token) bool {
	if tok.Kind != token.Ident {
		return false
	}
	_, ok := numbered(tok.Text, "_")
	return ok
}

// resyncStmt skips to the end of the current statement, consuming ';'.
// A '}' is left for the block loop.
func (p *Parser) resyncStmt() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.RBrace:
			if depth <= 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth <= 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
