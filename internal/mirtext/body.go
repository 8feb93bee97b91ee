package mirtext

import (
	"fmt"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/source"
	"moveflow/internal/token"
	"moveflow/internal/types"
)

// parseFn parses one body:
//
//	fn name(_1: T, ..) -> R {
//	    let [mut] _N: T;
//	    bb0: { ... }
//	}
func (p *Parser) parseFn() bool {
	start := p.advance().Span // fn
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "function name")
	if !ok {
		return false
	}
	body := &mir.Body{Name: name.Text}
	p.body = body
	p.blockRefs = p.blockRefs[:0]
	defer func() { p.body = nil }()

	// the return place is declared by the result type below
	body.Locals = append(body.Locals, mir.Local{Name: "_0", Span: name.Span, Mutable: true})

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
		return false
	}
	for !p.at(token.RParen) {
		if !p.parseLocalDecl() {
			return false
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
		return false
	}
	body.ArgCount = len(body.Locals) - 1

	body.Result = p.in.Builtins().Unit
	if p.at(token.Arrow) {
		p.advance()
		res, ok := p.parseType()
		if !ok {
			return false
		}
		body.Result = res
	}
	body.Locals[mir.ReturnLocal].Type = body.Result

	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
		return false
	}
	for p.at(token.KwLet) {
		p.advance()
		if !p.parseLocalDecl() {
			p.resyncStmt()
			continue
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "';'"); !ok {
			p.resyncStmt()
		}
	}

	for !p.atOr(token.RBrace, token.EOF) {
		if !p.parseBlock() {
			p.resyncBlock()
		}
	}
	end, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "'}'")
	if !ok {
		return false
	}
	body.Span = start.Cover(end.Span)
	p.checkBlockRefs()

	if p.module.Body(body.Name) != nil {
		p.errAt(diag.SynDuplicateFunction, name.Span, fmt.Sprintf("function %s is already defined", body.Name))
		return true
	}
	p.module.Bodies = append(p.module.Bodies, body)
	return true
}

// parseLocalDecl parses `[mut] _N: T` and appends local N.
func (p *Parser) parseLocalDecl() bool {
	mut := false
	if p.at(token.KwMut) {
		p.advance()
		mut = true
	}
	tok := p.lx.Peek()
	n, ok := numbered(tok.Text, "_")
	if tok.Kind != token.Ident || !ok {
		p.err(diag.SynExpectIdentifier, "expected local name like _1, got "+describe(tok))
		return false
	}
	p.advance()
	switch want := len(p.body.Locals); {
	case n < want:
		p.errAt(diag.SynDuplicateLocal, tok.Span, fmt.Sprintf("local %s is already declared", tok.Text))
		return false
	case n > want:
		p.errAt(diag.SynLocalOutOfOrder, tok.Span, fmt.Sprintf("expected _%d, got %s", want, tok.Text))
		return false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "':'"); !ok {
		return false
	}
	ty, ok := p.parseType()
	if !ok {
		return false
	}
	p.body.Locals = append(p.body.Locals, mir.Local{Name: tok.Text, Type: ty, Mutable: mut, Span: tok.Span})
	return true
}

// parseBlock parses `bbN: { stmt; ..; term; }`. Blocks must appear in order.
func (p *Parser) parseBlock() bool {
	tok := p.lx.Peek()
	n, ok := numbered(tok.Text, "bb")
	if tok.Kind != token.Ident || !ok {
		p.err(diag.SynExpectBlock, "expected basic block label, got "+describe(tok))
		return false
	}
	p.advance()
	if want := len(p.body.Blocks); n != want {
		code := diag.SynDuplicateBlock
		if n > want {
			code = diag.SynUnknownBlock
		}
		p.errAt(code, tok.Span, fmt.Sprintf("expected bb%d, got %s", want, tok.Text))
		return false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "':'"); !ok {
		return false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
		return false
	}
	p.body.Blocks = append(p.body.Blocks, mir.Block{ID: mir.BlockIDFromInt(n)})
	blk := &p.body.Blocks[len(p.body.Blocks)-1]
	blk.Term.Kind = mir.TermNone

	for !p.atOr(token.RBrace, token.EOF) {
		if blk.Terminated() {
			p.err(diag.SynUnexpectedToken, "statement after terminator")
			p.resyncStmt()
			continue
		}
		p.parseBlockItem(blk)
	}
	closing, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "'}'")
	if !ok {
		return false
	}
	if !blk.Terminated() {
		p.errAt(diag.SynMissingTerminator, closing.Span, fmt.Sprintf("bb%d has no terminator", n))
	}
	return true
}

// resyncBlock skips the rest of a broken block, stopping before the next
// label or the closing brace of the body.
func (p *Parser) resyncBlock() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// blockRef parses `bbN` as a jump target. Targets are checked once the whole
// body is read.
func (p *Parser) blockRef() (mir.BlockID, bool) {
	tok := p.lx.Peek()
	n, ok := numbered(tok.Text, "bb")
	if tok.Kind != token.Ident || !ok {
		p.err(diag.SynExpectBlock, "expected basic block, got "+describe(tok))
		return mir.NoBlockID, false
	}
	p.advance()
	id := mir.BlockIDFromInt(n)
	p.blockRefs = append(p.blockRefs, blockRef{id: id, span: tok.Span})
	return id, true
}

func (p *Parser) checkBlockRefs() {
	for _, ref := range p.blockRefs {
		if int(ref.id) >= len(p.body.Blocks) {
			p.errAt(diag.SynUnknownBlock, ref.span, fmt.Sprintf("bb%d is not defined in %s", ref.id, p.body.Name))
		}
	}
}

// localRef parses `_N` naming a declared local.
func (p *Parser) localRef() (mir.LocalID, source.Span, bool) {
	tok := p.lx.Peek()
	if !isLocalName(tok) {
		p.err(diag.SynExpectPlace, "expected local, got "+describe(tok))
		return mir.NoLocalID, tok.Span, false
	}
	p.advance()
	n, _ := numbered(tok.Text, "_")
	if n >= len(p.body.Locals) {
		p.errAt(diag.SynUnknownLocal, tok.Span, fmt.Sprintf("local %s is not declared", tok.Text))
		return mir.NoLocalID, tok.Span, false
	}
	return mir.LocalIDFromInt(n), tok.Span, true
}

// placeType is the type of pl, or NoTypeID when it cannot be computed.
func (p *Parser) placeType(pl mir.Place) mir.PlaceTy {
	pt, err := p.typer.TryPlaceType(p.body, pl.Local, pl.Proj)
	if err != nil {
		return mir.PlaceTy{Type: types.NoTypeID, Variant: types.NoVariant}
	}
	return pt
}
