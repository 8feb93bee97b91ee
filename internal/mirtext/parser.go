package mirtext

import (
	"errors"
	"slices"

	"moveflow/internal/diag"
	"moveflow/internal/lexer"
	"moveflow/internal/mir"
	"moveflow/internal/source"
	"moveflow/internal/token"
	"moveflow/internal/types"
)

type Options struct {
	Reporter diag.Reporter
	// MaxErrors stops reporting after this many errors. Zero means no limit.
	MaxErrors uint
}

// Result is the outcome of parsing one file. Module holds every body that
// parsed, including bodies with recovered errors.
type Result struct {
	File   source.FileID
	Module *mir.Module
	Types  *types.Interner
	Errors uint
}

// Parser holds the state for one file.
type Parser struct {
	file     *source.File
	lx       *lexer.Lexer
	in       *types.Interner
	typer    *mir.Typer
	opts     Options
	errors   uint
	lastSpan source.Span

	nominals map[string]types.TypeID
	defined  map[string]bool
	module   *mir.Module

	// per body
	body      *mir.Body
	blockRefs []blockRef
}

type blockRef struct {
	id   mir.BlockID
	span source.Span
}

// ParseFile parses file fid of fs. Types are interned into in, which may
// already hold declarations from other files.
func ParseFile(fs *source.FileSet, fid source.FileID, in *types.Interner, opts Options) Result {
	file := fs.Get(fid)
	p := &Parser{
		file:     file,
		in:       in,
		typer:    mir.NewTyper(in),
		opts:     opts,
		nominals: make(map[string]types.TypeID),
		defined:  make(map[string]bool),
		module:   &mir.Module{},
	}
	p.declareNominals()
	p.lx = lexer.New(file, lexer.Options{Reporter: countingReporter{p}})
	p.lastSpan = source.Span{File: fid}
	p.parseItems()
	return Result{File: fid, Module: p.module, Types: in, Errors: p.errors}
}

// ErrSyntax is wrapped by ParseString when the input has syntax errors.
var ErrSyntax = errors.New("mir syntax error")

// ParseString parses src as a virtual file named name with a fresh interner.
// On syntax errors the partial result is returned together with an error
// listing the diagnostics.
func ParseString(name, src string) (*Result, error) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual(name, []byte(src))
	bag := diag.NewBag(100)
	res := ParseFile(fs, fid, types.NewInterner(), Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		return &res, &SyntaxError{Files: fs, Diagnostics: bag.Items()}
	}
	return &res, nil
}

// SyntaxError carries the diagnostics of a failed ParseString.
type SyntaxError struct {
	Files       *source.FileSet
	Diagnostics []*diag.Diagnostic
}

func (e *SyntaxError) Error() string {
	return diag.FormatShortDiagnostics(e.Diagnostics, e.Files, false)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// countingReporter forwards lexer diagnostics and counts them as parse errors.
type countingReporter struct{ p *Parser }

func (r countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.p.report(code, sev, primary, msg)
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) atIdent(text string) bool {
	return p.lx.Peek().Is(text)
}

// parseItems is the top-level loop: type declarations and functions.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		var ok bool
		switch p.lx.Peek().Kind {
		case token.KwType:
			ok = p.parseTypeDecl()
		case token.KwFn:
			ok = p.parseFn()
		default:
			p.err(diag.SynUnexpectedToken, "expected 'type' or 'fn', got "+describe(p.lx.Peek()))
		}
		if !ok {
			p.resyncTop()
		}
	}
}

// resyncTop skips to the next item keyword.
func (p *Parser) resyncTop() {
	for !p.atOr(token.EOF, token.KwType, token.KwFn) {
		p.advance()
	}
}
