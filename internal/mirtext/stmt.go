package mirtext

import (
	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/token"
)

var terminatorWords = map[string]bool{
	"goto":           true,
	"switchInt":      true,
	"resume":         true,
	"abort":          true,
	"return":         true,
	"unreachable":    true,
	"drop":           true,
	"replace":        true,
	"call":           true,
	"assert":         true,
	"yield":          true,
	"generator_drop": true,
	"falseEdges":     true,
	"falseUnwind":    true,
}

// parseBlockItem parses one `;`-terminated statement or terminator into blk.
func (p *Parser) parseBlockItem(blk *mir.Block) {
	tok := p.lx.Peek()
	start := tok.Span

	var (
		st     mir.Statement
		term   mir.Terminator
		isTerm bool
		ok     bool
	)
	switch {
	case isLocalName(tok), tok.Kind == token.LParen:
		st, term, isTerm, ok = p.parseAssign()
	case tok.Is("asm"):
		p.advance()
		if p.at(token.LBracket) {
			isTerm = true
			term, ok = p.parseAsmTerminator()
		} else {
			st, ok = p.parseAsmStatement()
		}
	case tok.Kind == token.Ident && terminatorWords[tok.Text]:
		p.advance()
		isTerm = true
		term, ok = p.parseTerminator(tok)
	case tok.Kind == token.Ident:
		p.advance()
		st, ok = p.parseStatement(tok)
	default:
		p.err(diag.SynUnknownStatement, "expected statement, got "+describe(tok))
	}
	// spans stop before the ';'
	end := p.lastSpan
	if ok {
		_, ok = p.expect(token.Semicolon, diag.SynExpectSemicolon, "';'")
	}
	if !ok {
		if isTerm {
			// keep the block terminated so the error is reported once
			blk.Term = mir.Terminator{Kind: mir.TermUnreachable, Span: start.Cover(p.lastSpan)}
		}
		p.resyncStmt()
		return
	}
	if isTerm {
		term.Span = start.Cover(end)
		blk.Term = term
		return
	}
	st.Span = start.Cover(end)
	blk.Stmts = append(blk.Stmts, st)
}

// parseAssign parses `place = rvalue` or `place = call f(..) ..`.
func (p *Parser) parseAssign() (mir.Statement, mir.Terminator, bool, bool) {
	var st mir.Statement
	dst, ok := p.parsePlace()
	if !ok {
		return st, mir.Terminator{}, false, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "'='"); !ok {
		return st, mir.Terminator{}, false, false
	}
	if p.atIdent("call") {
		p.advance()
		term, ok := p.parseCall()
		term.Call.HasDest = true
		term.Call.Dest = dst
		return st, term, true, ok
	}
	src, ok := p.parseRValue(dst)
	st.Kind = mir.StmtAssign
	st.Assign = mir.AssignStmt{Dst: dst, Src: src}
	return st, mir.Terminator{}, false, ok
}

// parseStatement parses the named statements; word is already consumed.
func (p *Parser) parseStatement(word token.Token) (mir.Statement, bool) {
	var st mir.Statement
	placeArg := func(kind mir.StmtKind, dst *mir.PlaceStmt) (mir.Statement, bool) {
		st.Kind = kind
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return st, false
		}
		pl, ok := p.parsePlace()
		if !ok {
			return st, false
		}
		dst.Place = pl
		_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
		return st, ok
	}
	storage := func(kind mir.StmtKind, dst *mir.StorageStmt) (mir.Statement, bool) {
		st.Kind = kind
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return st, false
		}
		local, _, ok := p.localRef()
		if !ok {
			return st, false
		}
		dst.Local = local
		_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
		return st, ok
	}

	switch word.Text {
	case "FakeRead":
		return placeArg(mir.StmtFakeRead, &st.FakeRead)
	case "Retag":
		return placeArg(mir.StmtRetag, &st.Retag)
	case "AscribeUserType":
		return placeArg(mir.StmtAscribeUserType, &st.AscribeUserType)
	case "StorageLive":
		return storage(mir.StmtStorageLive, &st.StorageLive)
	case "StorageDead":
		return storage(mir.StmtStorageDead, &st.StorageDead)
	case "nop":
		st.Kind = mir.StmtNop
		return st, true
	case "SetDiscriminant":
		st.Kind = mir.StmtSetDiscriminant
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return st, false
		}
		pl, ok := p.parsePlace()
		if !ok {
			return st, false
		}
		if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "','"); !ok {
			return st, false
		}
		variant, ok := p.parseVariantRef(p.placeType(pl).Type)
		if !ok {
			return st, false
		}
		st.SetDiscriminant = mir.SetDiscriminantStmt{Place: pl, Variant: variant}
		_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
		return st, ok
	}
	p.errAt(diag.SynUnknownStatement, word.Span, "unknown statement "+word.Text)
	return st, false
}

// parseAsmStatement parses `asm(out [indirect] p, in op, ..)`.
func (p *Parser) parseAsmStatement() (mir.Statement, bool) {
	st := mir.Statement{Kind: mir.StmtInlineAsm}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
		return st, false
	}
	for !p.at(token.RParen) {
		switch {
		case p.atIdent("out"):
			p.advance()
			indirect := false
			if p.atIdent("indirect") {
				p.advance()
				indirect = true
			}
			pl, ok := p.parsePlace()
			if !ok {
				return st, false
			}
			st.InlineAsm.Outputs = append(st.InlineAsm.Outputs, mir.AsmOutput{Place: pl, Indirect: indirect})
		case p.atIdent("in"):
			p.advance()
			op, ok := p.parseOperand()
			if !ok {
				return st, false
			}
			st.InlineAsm.Inputs = append(st.InlineAsm.Inputs, op)
		default:
			p.err(diag.SynUnexpectedToken, "expected 'in' or 'out', got "+describe(p.lx.Peek()))
			return st, false
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
	return st, ok
}

// parseTerminator parses the terminator named by word, already consumed.
func (p *Parser) parseTerminator(word token.Token) (mir.Terminator, bool) {
	var t mir.Terminator
	switch word.Text {
	case "resume":
		t.Kind = mir.TermResume
		return t, true
	case "abort":
		t.Kind = mir.TermAbort
		return t, true
	case "return":
		t.Kind = mir.TermReturn
		return t, true
	case "unreachable":
		t.Kind = mir.TermUnreachable
		return t, true
	case "generator_drop":
		t.Kind = mir.TermGeneratorDrop
		return t, true

	case "goto":
		t.Kind = mir.TermGoto
		target, ok := p.arrowTarget()
		t.Goto.Target = target
		return t, ok

	case "switchInt":
		return p.parseSwitchInt()

	case "drop":
		t.Kind = mir.TermDrop
		t.Drop.Target, t.Drop.Unwind = mir.NoBlockID, mir.NoBlockID
		pl, ok := p.parenPlace()
		if !ok {
			return t, false
		}
		t.Drop.Place = pl
		if t.Drop.Target, ok = p.arrowTarget(); !ok {
			return t, false
		}
		t.Drop.Unwind, ok = p.optUnwind()
		return t, ok

	case "replace":
		t.Kind = mir.TermDropAndReplace
		dr := &t.DropAndReplace
		dr.Target, dr.Unwind = mir.NoBlockID, mir.NoBlockID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return t, false
		}
		pl, ok := p.parsePlace()
		if !ok {
			return t, false
		}
		dr.Place = pl
		if _, ok := p.expect(token.LArrow, diag.SynUnexpectedToken, "'<-'"); !ok {
			return t, false
		}
		if dr.Value, ok = p.parseOperand(); !ok {
			return t, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return t, false
		}
		if dr.Target, ok = p.arrowTarget(); !ok {
			return t, false
		}
		dr.Unwind, ok = p.optUnwind()
		return t, ok

	case "call":
		return p.parseCall()

	case "assert":
		t.Kind = mir.TermAssert
		a := &t.Assert
		a.Target, a.Unwind = mir.NoBlockID, mir.NoBlockID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return t, false
		}
		a.Expected = true
		if p.at(token.Bang) {
			p.advance()
			a.Expected = false
		}
		var ok bool
		if a.Cond, ok = p.parseOperand(); !ok {
			return t, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return t, false
		}
		if a.Target, ok = p.arrowTarget(); !ok {
			return t, false
		}
		a.Unwind, ok = p.optUnwind()
		return t, ok

	case "yield":
		t.Kind = mir.TermYield
		y := &t.Yield
		y.Resume, y.Drop = mir.NoBlockID, mir.NoBlockID
		if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
			return t, false
		}
		var ok bool
		if y.Value, ok = p.parseOperand(); !ok {
			return t, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return t, false
		}
		if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "'->'"); !ok {
			return t, false
		}
		if !p.expectIdent("resume") {
			return t, false
		}
		if y.ResumeArg, ok = p.parsePlace(); !ok {
			return t, false
		}
		if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "','"); !ok {
			return t, false
		}
		if y.Resume, ok = p.blockRef(); !ok {
			return t, false
		}
		if p.at(token.Comma) {
			p.advance()
			if !p.expectIdent("drop") {
				return t, false
			}
			y.Drop, ok = p.blockRef()
		}
		return t, ok

	case "falseEdges":
		t.Kind = mir.TermFalseEdges
		if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "'->'"); !ok {
			return t, false
		}
		if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "'['"); !ok {
			return t, false
		}
		var ok bool
		if t.FalseEdges.Real, ok = p.labeledTarget("real"); !ok {
			return t, false
		}
		if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "','"); !ok {
			return t, false
		}
		if t.FalseEdges.Imaginary, ok = p.labeledTarget("imaginary"); !ok {
			return t, false
		}
		_, ok = p.expect(token.RBracket, diag.SynUnexpectedToken, "']'")
		return t, ok

	case "falseUnwind":
		t.Kind = mir.TermFalseUnwind
		var ok bool
		if t.FalseUnwind.Real, ok = p.arrowTarget(); !ok {
			return t, false
		}
		t.FalseUnwind.Unwind, ok = p.optUnwind()
		return t, ok
	}
	p.errAt(diag.SynUnknownTerminator, word.Span, "unknown terminator "+word.Text)
	return t, false
}

// parseCall parses `f(args) [-> bbN] [unwind bbM]` after `call`.
func (p *Parser) parseCall() (mir.Terminator, bool) {
	t := mir.Terminator{Kind: mir.TermCall}
	c := &t.Call
	c.Target, c.Unwind = mir.NoBlockID, mir.NoBlockID
	var ok bool
	if c.Func, ok = p.parseOperand(); !ok {
		return t, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
		return t, false
	}
	if c.Args, ok = p.parseOperandList(token.RParen); !ok {
		return t, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
		return t, false
	}
	if p.at(token.Arrow) {
		if c.Target, ok = p.arrowTarget(); !ok {
			return t, false
		}
	}
	c.Unwind, ok = p.optUnwind()
	return t, ok
}

func (p *Parser) parseSwitchInt() (mir.Terminator, bool) {
	t := mir.Terminator{Kind: mir.TermSwitchInt}
	sw := &t.SwitchInt
	sw.Otherwise = mir.NoBlockID
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
		return t, false
	}
	var ok bool
	if sw.Discr, ok = p.parseOperand(); !ok {
		return t, false
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
		return t, false
	}
	if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "'->'"); !ok {
		return t, false
	}
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "'['"); !ok {
		return t, false
	}
	for !p.at(token.RBracket) {
		if p.atIdent("otherwise") {
			if sw.Otherwise, ok = p.labeledTarget("otherwise"); !ok {
				return t, false
			}
			break
		}
		v, ok := p.parseInt()
		if !ok {
			return t, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "':'"); !ok {
			return t, false
		}
		target, ok := p.blockRef()
		if !ok {
			return t, false
		}
		sw.Cases = append(sw.Cases, mir.SwitchCase{Value: v, Target: target})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
		return t, false
	}
	if sw.Otherwise == mir.NoBlockID {
		p.errAt(diag.SynExpectBlock, p.lastSpan, "switchInt needs an otherwise target")
		return t, false
	}
	return t, true
}

// parseAsmTerminator parses `asm [ops] [-> bbN]` after `asm`.
func (p *Parser) parseAsmTerminator() (mir.Terminator, bool) {
	t := mir.Terminator{Kind: mir.TermInlineAsm}
	t.InlineAsm.Destination = mir.NoBlockID
	p.advance() // [
	for !p.at(token.RBracket) {
		op, ok := p.parseAsmOperand()
		if !ok {
			return t, false
		}
		t.InlineAsm.Operands = append(t.InlineAsm.Operands, op)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
		return t, false
	}
	if p.at(token.Arrow) {
		var ok bool
		if t.InlineAsm.Destination, ok = p.arrowTarget(); !ok {
			return t, false
		}
	}
	return t, true
}

func (p *Parser) parseAsmOperand() (mir.AsmOperand, bool) {
	var op mir.AsmOperand
	outPlace := func() bool {
		if p.at(token.Underscore) {
			p.advance()
			return true
		}
		pl, ok := p.parsePlace()
		op.HasOut, op.Out = ok, pl
		return ok
	}
	tok := p.lx.Peek()
	switch {
	case p.at(token.KwConst):
		p.advance()
		op.Kind = mir.AsmConst
		c, ok := p.parseConst()
		op.In = mir.ConstOperand(c)
		return op, ok
	case tok.Kind != token.Ident:
	case tok.Text == "in":
		p.advance()
		op.Kind = mir.AsmIn
		var ok bool
		op.In, ok = p.parseOperand()
		return op, ok
	case tok.Text == "out":
		p.advance()
		op.Kind = mir.AsmOut
		return op, outPlace()
	case tok.Text == "inout":
		p.advance()
		op.Kind = mir.AsmInOut
		var ok bool
		if op.In, ok = p.parseOperand(); !ok {
			return op, false
		}
		if _, ok := p.expect(token.FatArrow, diag.SynUnexpectedToken, "'=>'"); !ok {
			return op, false
		}
		return op, outPlace()
	case tok.Text == "sym":
		p.advance()
		op.Kind = mir.AsmSym
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "symbol name")
		op.Symbol = name.Text
		return op, ok
	}
	p.err(diag.SynUnexpectedToken, "expected asm operand, got "+describe(tok))
	return op, false
}

func (p *Parser) parenPlace() (mir.Place, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "'('"); !ok {
		return mir.Place{}, false
	}
	pl, ok := p.parsePlace()
	if !ok {
		return pl, false
	}
	_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
	return pl, ok
}

// arrowTarget parses `-> bbN`.
func (p *Parser) arrowTarget() (mir.BlockID, bool) {
	if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "'->'"); !ok {
		return mir.NoBlockID, false
	}
	return p.blockRef()
}

// optUnwind parses an optional `unwind bbN`.
func (p *Parser) optUnwind() (mir.BlockID, bool) {
	if !p.atIdent("unwind") {
		return mir.NoBlockID, true
	}
	p.advance()
	return p.blockRef()
}

// labeledTarget parses `label: bbN`.
func (p *Parser) labeledTarget(label string) (mir.BlockID, bool) {
	if !p.expectIdent(label) {
		return mir.NoBlockID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "':'"); !ok {
		return mir.NoBlockID, false
	}
	return p.blockRef()
}
