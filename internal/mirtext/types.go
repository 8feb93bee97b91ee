package mirtext

import (
	"fmt"

	"fortio.org/safecast"

	"moveflow/internal/diag"
	"moveflow/internal/lexer"
	"moveflow/internal/token"
	"moveflow/internal/types"
)

// declareNominals registers every top-level type name before the real
// parse, so bodies and declarations may refer to types declared later.
func (p *Parser) declareNominals() {
	lx := lexer.New(p.file, lexer.Options{})
	depth := 0
	for {
		tok := lx.Next()
		switch tok.Kind {
		case token.EOF:
			return
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.KwType:
			if depth != 0 {
				continue
			}
			name := lx.Next()
			if name.Kind != token.Ident || lx.Next().Kind != token.Assign {
				continue
			}
			if _, dup := p.nominals[name.Text]; dup {
				continue
			}
			switch lx.Peek().Kind {
			case token.KwStruct:
				p.nominals[name.Text] = p.in.RegisterStruct(name.Text, name.Span)
			case token.KwUnion:
				p.nominals[name.Text] = p.in.RegisterUnion(name.Text, name.Span)
			case token.KwEnum:
				p.nominals[name.Text] = p.in.RegisterEnum(name.Text, name.Span)
			}
		}
	}
}

// parseTypeDecl parses `type Name = struct [drop] { T, .. };` and the union
// and enum forms.
func (p *Parser) parseTypeDecl() bool {
	p.advance() // type
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "type name")
	if !ok {
		return false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "'='"); !ok {
		return false
	}
	id, known := p.nominals[name.Text]
	if p.defined[name.Text] || !known {
		p.errAt(diag.SynDuplicateType, name.Span, fmt.Sprintf("type %s is already declared", name.Text))
		return false
	}
	p.defined[name.Text] = true

	switch p.lx.Peek().Kind {
	case token.KwStruct:
		p.advance()
		drop := p.parseDropFlag()
		fields, ok := p.parseFieldList()
		if !ok {
			return false
		}
		p.in.SetStructFields(id, fields)
		p.in.SetStructDrop(id, drop)
	case token.KwUnion:
		p.advance()
		fields, ok := p.parseFieldList()
		if !ok {
			return false
		}
		p.in.SetUnionFields(id, fields)
	case token.KwEnum:
		p.advance()
		drop := p.parseDropFlag()
		variants, ok := p.parseVariants()
		if !ok {
			return false
		}
		p.in.SetEnumVariants(id, variants)
		p.in.SetEnumDrop(id, drop)
	default:
		p.err(diag.SynExpectType, "expected struct, union or enum, got "+describe(p.lx.Peek()))
		return false
	}
	_, ok = p.expect(token.Semicolon, diag.SynExpectSemicolon, "';'")
	return ok
}

func (p *Parser) parseDropFlag() bool {
	if p.atIdent("drop") {
		p.advance()
		return true
	}
	return false
}

// parseFieldList parses `{ T, U }`.
func (p *Parser) parseFieldList() ([]types.Field, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
		return nil, false
	}
	var fields []types.Field
	for !p.at(token.RBrace) {
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, types.Field{Type: ty})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "'}'")
	return fields, ok
}

// parseVariants parses `{ A {}, B { T } }`.
func (p *Parser) parseVariants() ([]types.Variant, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "'{'"); !ok {
		return nil, false
	}
	var variants []types.Variant
	for !p.at(token.RBrace) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "variant name")
		if !ok {
			return nil, false
		}
		fields, ok := p.parseFieldList()
		if !ok {
			return nil, false
		}
		variants = append(variants, types.Variant{Name: name.Text, Fields: fields})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	_, ok := p.expect(token.RBrace, diag.SynUnexpectedToken, "'}'")
	return variants, ok
}

var primitiveTypes = map[string]types.Type{
	"i8":  types.MakeInt(types.Width8),
	"i16": types.MakeInt(types.Width16),
	"i32": types.MakeInt(types.Width32),
	"i64": types.MakeInt(types.Width64),
	"u8":  types.MakeUint(types.Width8),
	"u16": types.MakeUint(types.Width16),
	"u32": types.MakeUint(types.Width32),
	"u64": types.MakeUint(types.Width64),
	"f32": types.MakeFloat(types.Width32),
	"f64": types.MakeFloat(types.Width64),
}

// parseType parses a type expression.
func (p *Parser) parseType() (types.TypeID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Amp:
		p.advance()
		mut := false
		if p.at(token.KwMut) {
			p.advance()
			mut = true
		}
		elem, ok := p.parseType()
		return p.in.Intern(types.MakeReference(elem, mut)), ok

	case token.Star:
		p.advance()
		mut := false
		switch {
		case p.at(token.KwMut):
			mut = true
		case p.at(token.KwConst):
		default:
			p.err(diag.SynExpectType, "expected 'const' or 'mut' after '*'")
			return types.NoTypeID, false
		}
		p.advance()
		elem, ok := p.parseType()
		return p.in.Intern(types.MakePointer(elem, mut)), ok

	case token.LBracket:
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return types.NoTypeID, false
		}
		if p.at(token.RBracket) {
			p.advance()
			return p.in.Intern(types.MakeSlice(elem)), true
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "';' or ']'"); !ok {
			return types.NoTypeID, false
		}
		n, ok := p.parseUint()
		if !ok {
			return types.NoTypeID, false
		}
		count, err := safecast.Conv[uint32](n)
		if err != nil || count == types.ArrayDynamicLength {
			p.errAt(diag.SynBadNumber, p.lastSpan, fmt.Sprintf("array length %d out of range", n))
			return types.NoTypeID, false
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "']'"); !ok {
			return types.NoTypeID, false
		}
		return p.in.Intern(types.MakeArray(elem, count)), true

	case token.LParen:
		p.advance()
		var elems []types.TypeID
		trailingComma := false
		for !p.at(token.RParen) {
			elem, ok := p.parseType()
			if !ok {
				return types.NoTypeID, false
			}
			elems = append(elems, elem)
			trailingComma = false
			if !p.at(token.Comma) {
				break
			}
			p.advance()
			trailingComma = true
		}
		if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "')'"); !ok {
			return types.NoTypeID, false
		}
		switch {
		case len(elems) == 0:
			return p.in.Builtins().Unit, true
		case len(elems) == 1 && !trailingComma:
			return elems[0], true
		}
		return p.in.Tuple(elems), true

	case token.Ident:
		p.advance()
		b := p.in.Builtins()
		switch tok.Text {
		case "int":
			return b.Int, true
		case "uint":
			return b.Uint, true
		case "float":
			return b.Float, true
		case "bool":
			return b.Bool, true
		case "str":
			return b.String, true
		case "Box":
			if _, ok := p.expect(token.Lt, diag.SynUnexpectedToken, "'<'"); !ok {
				return types.NoTypeID, false
			}
			elem, ok := p.parseType()
			if !ok {
				return types.NoTypeID, false
			}
			if _, ok := p.expect(token.Gt, diag.SynUnexpectedToken, "'>'"); !ok {
				return types.NoTypeID, false
			}
			return p.in.Intern(types.MakeOwn(elem)), true
		}
		if t, ok := primitiveTypes[tok.Text]; ok {
			return p.in.Intern(t), true
		}
		if id, ok := p.nominals[tok.Text]; ok {
			return id, true
		}
		p.errAt(diag.SynUnknownType, tok.Span, "unknown type "+tok.Text)
		return types.NoTypeID, false
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(tok))
	return types.NoTypeID, false
}
