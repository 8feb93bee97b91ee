package mirtext

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/token"
	"moveflow/internal/types"
)

// parsePlace parses a place expression:
//
//	_N  (*p)  (p as Variant)  p.N  p[_M]  p[K of N]  p[-K of N]  p[A..B]  p[A..-B]
func (p *Parser) parsePlace() (mir.Place, bool) {
	var pl mir.Place
	if p.at(token.LParen) {
		p.advance()
		if p.at(token.Star) {
			p.advance()
			inner, ok := p.parsePlace()
			if !ok {
				return pl, false
			}
			pl = inner.Deref()
		} else {
			inner, ok := p.parsePlace()
			if !ok {
				return pl, false
			}
			if _, ok := p.expect(token.KwAs, diag.SynUnexpectedToken, "'as'"); !ok {
				return pl, false
			}
			variant, ok := p.parseVariantRef(p.placeType(inner).Type)
			if !ok {
				return pl, false
			}
			pl = inner.Project(mir.DowncastElem(variant))
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return pl, false
		}
	} else {
		local, _, ok := p.localRef()
		if !ok {
			return pl, false
		}
		pl = mir.PlaceFromLocal(local)
	}

	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			n, ok := p.parseUint()
			if !ok {
				return pl, false
			}
			field, ok := p.toInt(n)
			if !ok {
				return pl, false
			}
			pl = pl.Field(field)
		case p.at(token.LBracket):
			p.advance()
			elem, ok := p.parseIndexElem()
			if !ok {
				return pl, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
				return pl, false
			}
			pl = pl.Project(elem)
		default:
			return pl, true
		}
	}
}

// parseIndexElem parses the inside of [..] after a place.
func (p *Parser) parseIndexElem() (mir.PlaceElem, bool) {
	if isLocalName(p.lx.Peek()) {
		local, _, ok := p.localRef()
		return mir.IndexElem(local), ok
	}
	if p.at(token.Minus) {
		p.advance()
		off, ok := p.parseUint()
		if !ok {
			return mir.PlaceElem{}, false
		}
		if _, ok := p.expect(token.KwOf, diag.SynUnexpectedToken, "'of'"); !ok {
			return mir.PlaceElem{}, false
		}
		minLen, ok := p.parseUint()
		return mir.ConstantIndexElem(off, minLen, true), ok
	}
	first, ok := p.parseUint()
	if !ok {
		return mir.PlaceElem{}, false
	}
	switch {
	case p.at(token.KwOf):
		p.advance()
		minLen, ok := p.parseUint()
		return mir.ConstantIndexElem(first, minLen, false), ok
	case p.at(token.DotDot):
		p.advance()
		fromEnd := false
		if p.at(token.Minus) {
			p.advance()
			fromEnd = true
		}
		to, ok := p.parseUint()
		return mir.SubsliceElem(first, to, fromEnd), ok
	}
	p.err(diag.SynUnexpectedToken, "expected 'of' or '..', got "+describe(p.lx.Peek()))
	return mir.PlaceElem{}, false
}

// parseVariantRef resolves a variant of enum by name or index.
func (p *Parser) parseVariantRef(enum types.TypeID) (int, bool) {
	tok := p.lx.Peek()
	if tok.Kind == token.IntLit {
		n, ok := p.parseUint()
		if !ok {
			return 0, false
		}
		return p.toInt(n)
	}
	if _, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "variant name"); !ok {
		return 0, false
	}
	info, ok := p.in.EnumInfo(enum)
	if !ok {
		p.errAt(diag.SynUnknownVariant, tok.Span, fmt.Sprintf("%s is not an enum, cannot select variant %s", p.in.Format(enum), tok.Text))
		return 0, false
	}
	for i, v := range info.Variants {
		if v.Name == tok.Text {
			return i, true
		}
	}
	p.errAt(diag.SynUnknownVariant, tok.Span, fmt.Sprintf("enum %s has no variant %s", info.Name, tok.Text))
	return 0, false
}

func (p *Parser) toInt(n uint64) (int, bool) {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		p.errAt(diag.SynBadNumber, p.lastSpan, fmt.Sprintf("%d out of range", n))
		return 0, false
	}
	return int(v), true
}

// parseOperand parses `move p`, `copy p` or `const lit`.
func (p *Parser) parseOperand() (mir.Operand, bool) {
	switch p.lx.Peek().Kind {
	case token.KwMove:
		p.advance()
		pl, ok := p.parsePlace()
		return mir.MoveOperand(pl), ok
	case token.KwCopy:
		p.advance()
		pl, ok := p.parsePlace()
		return mir.CopyOperand(pl), ok
	case token.KwConst:
		p.advance()
		c, ok := p.parseConst()
		return mir.ConstOperand(c), ok
	}
	p.err(diag.SynExpectOperand, "expected operand, got "+describe(p.lx.Peek()))
	return mir.Operand{}, false
}

// parseOperandList parses comma separated operands up to (not including) end.
func (p *Parser) parseOperandList(end token.Kind) ([]mir.Operand, bool) {
	var ops []mir.Operand
	for !p.at(end) {
		op, ok := p.parseOperand()
		if !ok {
			return nil, false
		}
		ops = append(ops, op)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return ops, true
}

// parseConst parses the literal after `const`.
func (p *Parser) parseConst() (mir.Const, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Minus, token.IntLit:
		if tok.Kind == token.Minus {
			p.advance()
			if p.at(token.FloatLit) {
				f, ok := p.parseFloat()
				return mir.Const{Kind: mir.ConstFloat, FloatValue: -f}, ok
			}
			n, ok := p.parseUint()
			if !ok {
				return mir.Const{}, false
			}
			if n == 1<<63 {
				return mir.IntConst(math.MinInt64), true
			}
			v, err := safecast.Conv[int64](n)
			if err != nil {
				p.errAt(diag.SynBadNumber, p.lastSpan, fmt.Sprintf("-%d out of range", n))
				return mir.Const{}, false
			}
			return mir.IntConst(-v), true
		}
		v, ok := p.parseInt()
		return mir.IntConst(v), ok
	case token.FloatLit:
		f, ok := p.parseFloat()
		return mir.Const{Kind: mir.ConstFloat, FloatValue: f}, ok
	case token.StringLit:
		p.advance()
		s, err := strconv.Unquote(tok.Text)
		if err != nil {
			p.errAt(diag.SynUnexpectedToken, tok.Span, "bad string literal "+tok.Text)
			return mir.Const{}, false
		}
		return mir.Const{Kind: mir.ConstString, StringValue: s}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return mir.Const{Kind: mir.ConstBool, BoolValue: tok.Kind == token.KwTrue}, true
	case token.LParen:
		p.advance()
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return mir.Const{}, false
		}
		return mir.Const{Kind: mir.ConstUnit}, true
	case token.Ident:
		p.advance()
		return mir.Const{Kind: mir.ConstFn, FnName: tok.Text}, true
	}
	p.err(diag.SynExpectOperand, "expected constant, got "+describe(tok))
	return mir.Const{}, false
}

func (p *Parser) parseFloat() (float64, bool) {
	tok := p.advance()
	f, err := strconv.ParseFloat(strings.ReplaceAll(tok.Text, "_", ""), 64)
	if err != nil {
		p.errAt(diag.SynBadNumber, tok.Span, "bad float "+strconv.Quote(tok.Text))
		return 0, false
	}
	return f, true
}

// parseRValue parses the right-hand side of an assignment to dst. Aggregate
// element types are taken from the destination.
func (p *Parser) parseRValue(dst mir.Place) (mir.RValue, bool) {
	var rv mir.RValue
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Amp:
		p.advance()
		rv.Kind = mir.RValueRef
		switch {
		case p.at(token.KwRaw):
			p.advance()
			rv.Kind = mir.RValueAddressOf
			switch {
			case p.at(token.KwMut):
				rv.Ref.Mutable = true
			case p.at(token.KwConst):
			default:
				p.err(diag.SynUnexpectedToken, "expected 'const' or 'mut' after '&raw'")
				return rv, false
			}
			p.advance()
		case p.at(token.KwMut):
			p.advance()
			rv.Ref.Mutable = true
		}
		pl, ok := p.parsePlace()
		rv.Ref.Place = pl
		return rv, ok

	case token.LBracket:
		p.advance()
		if p.at(token.RBracket) {
			p.advance()
			return p.arrayAggregate(dst, nil), true
		}
		first, ok := p.parseOperand()
		if !ok {
			return rv, false
		}
		if p.at(token.Semicolon) {
			p.advance()
			n, ok := p.parseUint()
			if !ok {
				return rv, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
				return rv, false
			}
			rv.Kind = mir.RValueRepeat
			rv.Repeat = mir.RepeatOp{Value: first, Count: n}
			return rv, true
		}
		ops := []mir.Operand{first}
		if p.at(token.Comma) {
			p.advance()
			rest, ok := p.parseOperandList(token.RBracket)
			if !ok {
				return rv, false
			}
			ops = append(ops, rest...)
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
			return rv, false
		}
		return p.arrayAggregate(dst, ops), true

	case token.LParen:
		p.advance()
		ops, ok := p.parseOperandList(token.RParen)
		if !ok {
			return rv, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return rv, false
		}
		rv.Kind = mir.RValueAggregate
		rv.Aggregate = mir.Aggregate{Kind: mir.AggregateTuple, Operands: ops}
		return rv, true

	case token.KwBox:
		p.advance()
		ty, ok := p.parseType()
		rv.Kind = mir.RValueNullaryOp
		rv.Nullary = mir.NullaryOp{Op: mir.NullOpBox, Type: ty}
		return rv, ok

	case token.KwMove, token.KwCopy, token.KwConst:
		op, ok := p.parseOperand()
		if !ok {
			return rv, false
		}
		if p.at(token.KwAs) {
			p.advance()
			ty, ok := p.parseType()
			rv.Kind = mir.RValueCast
			rv.Cast = mir.CastOp{Value: op, TargetTy: ty}
			return rv, ok
		}
		rv.Kind = mir.RValueUse
		rv.Use = op
		return rv, true

	case token.Ident:
		if isLocalName(tok) {
			p.err(diag.SynExpectOperand, "expected rvalue, got "+describe(tok)+"; use move or copy")
			return rv, false
		}
		p.advance()
		if p.at(token.LParen) {
			return p.parseCallLike(tok)
		}
		if tok.Text == "thread_local" {
			rv.Kind = mir.RValueThreadLocalRef
			if p.at(token.Ident) {
				rv.ThreadLocal = p.advance().Text
			}
			return rv, true
		}
		return p.parseAdt(tok)
	}
	p.err(diag.SynUnexpectedToken, "expected rvalue, got "+describe(tok))
	return rv, false
}

func (p *Parser) arrayAggregate(dst mir.Place, ops []mir.Operand) mir.RValue {
	elem := types.NoTypeID
	if tt, ok := p.in.Lookup(p.placeType(dst).Type); ok && tt.Kind == types.KindArray {
		elem = tt.Elem
	}
	return mir.RValue{
		Kind:      mir.RValueAggregate,
		Aggregate: mir.Aggregate{Kind: mir.AggregateArray, Type: elem, Operands: ops},
	}
}

// parseCallLike parses the `Word(...)` rvalues; word is already consumed.
func (p *Parser) parseCallLike(word token.Token) (mir.RValue, bool) {
	var rv mir.RValue
	p.advance() // (
	ok := true
	switch word.Text {
	case "Len", "discriminant":
		var pl mir.Place
		pl, ok = p.parsePlace()
		if word.Text == "Len" {
			rv.Kind, rv.Len = mir.RValueLen, pl
		} else {
			rv.Kind, rv.Discriminant = mir.RValueDiscriminant, pl
		}
	case "SizeOf":
		var ty types.TypeID
		ty, ok = p.parseType()
		rv.Kind = mir.RValueNullaryOp
		rv.Nullary = mir.NullaryOp{Op: mir.NullOpSizeOf, Type: ty}
	case "Not", "Neg":
		rv.Kind = mir.RValueUnaryOp
		rv.Unary.Op = mir.UnNot
		if word.Text == "Neg" {
			rv.Unary.Op = mir.UnNeg
		}
		rv.Unary.Operand, ok = p.parseOperand()
	default:
		name, checked := strings.CutPrefix(word.Text, "Checked")
		op, known := mir.BinOpByName(name)
		if !known {
			p.errAt(diag.SynUnexpectedToken, word.Span, "unknown rvalue "+word.Text)
			return rv, false
		}
		rv.Kind = mir.RValueBinaryOp
		if checked {
			rv.Kind = mir.RValueCheckedBinaryOp
		}
		rv.Binary.Op = op
		if rv.Binary.Left, ok = p.parseOperand(); !ok {
			return rv, false
		}
		if _, ok = p.expect(token.Comma, diag.SynUnexpectedToken, "','"); !ok {
			return rv, false
		}
		rv.Binary.Right, ok = p.parseOperand()
	}
	if !ok {
		return rv, false
	}
	_, ok = p.expect(token.RParen, diag.SynUnexpectedToken, "')'")
	return rv, ok
}

// parseAdt parses `Name { ops }` or `Name::Variant { ops }`.
func (p *Parser) parseAdt(name token.Token) (mir.RValue, bool) {
	var rv mir.RValue
	id, ok := p.nominals[name.Text]
	if !ok {
		p.errAt(diag.SynUnknownType, name.Span, "unknown type "+name.Text)
		return rv, false
	}
	variant := 0
	if p.at(token.ColonColon) {
		p.advance()
		if variant, ok = p.parseVariantRef(id); !ok {
			return rv, false
		}
	} else if _, isEnum := p.in.EnumInfo(id); isEnum {
		p.errAt(diag.SynUnknownVariant, name.Span, fmt.Sprintf("enum %s needs a variant", name.Text))
		return rv, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
		return rv, false
	}
	ops, ok := p.parseOperandList(token.RBrace)
	if !ok {
		return rv, false
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "'}'"); !ok {
		return rv, false
	}
	rv.Kind = mir.RValueAggregate
	rv.Aggregate = mir.Aggregate{Kind: mir.AggregateAdt, Type: id, Variant: variant, Operands: ops}
	return rv, true
}
