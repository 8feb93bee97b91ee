package moves

import (
	"fmt"

	"moveflow/internal/mir"
)

// gatherer visits one statement or terminator.
type gatherer struct {
	b   *builder
	loc mir.Location
}

func (b *builder) gatherStatement(loc mir.Location, st *mir.Statement) {
	g := gatherer{b: b, loc: loc}
	switch st.Kind {
	case mir.StmtAssign:
		place := st.Assign.Dst
		g.createMovePath(place)
		if st.Assign.Src.InitializationState() == mir.InitStateShallow {
			// the box interior starts uninitialized and needs its own path
			g.createMovePath(place.Deref())
			g.gatherInit(place, InitShallow)
		} else {
			g.gatherInit(place, InitDeep)
		}
		g.gatherRValue(&st.Assign.Src)
	case mir.StmtFakeRead:
		g.createMovePath(st.FakeRead.Place)
	case mir.StmtInlineAsm:
		for _, out := range st.InlineAsm.Outputs {
			if !out.Indirect {
				g.gatherInit(out.Place, InitDeep)
			}
		}
		for i := range st.InlineAsm.Inputs {
			g.gatherOperand(&st.InlineAsm.Inputs[i])
		}
	case mir.StmtStorageDead:
		g.gatherMove(mir.PlaceFromLocal(st.StorageDead.Local))
	case mir.StmtSetDiscriminant:
		panic(g.bug("SetDiscriminant should not exist during borrowck"))
	case mir.StmtStorageLive, mir.StmtRetag, mir.StmtAscribeUserType, mir.StmtNop:
	default:
		panic(g.bug(fmt.Sprintf("unknown statement kind %d", st.Kind)))
	}
}

func (b *builder) gatherTerminator(loc mir.Location, term *mir.Terminator) {
	g := gatherer{b: b, loc: loc}
	switch term.Kind {
	case mir.TermGoto, mir.TermResume, mir.TermAbort, mir.TermGeneratorDrop,
		mir.TermFalseEdges, mir.TermFalseUnwind, mir.TermUnreachable:
	case mir.TermReturn:
		g.gatherMove(b.body.ReturnPlace())
	case mir.TermAssert:
		g.gatherOperand(&term.Assert.Cond)
	case mir.TermSwitchInt:
		g.gatherOperand(&term.SwitchInt.Discr)
	case mir.TermYield:
		g.gatherOperand(&term.Yield.Value)
		g.createMovePath(term.Yield.ResumeArg)
		g.gatherInit(term.Yield.ResumeArg, InitDeep)
	case mir.TermDrop:
		g.gatherMove(term.Drop.Place)
	case mir.TermDropAndReplace:
		dr := &term.DropAndReplace
		g.createMovePath(dr.Place)
		g.gatherOperand(&dr.Value)
		g.gatherInit(dr.Place, InitDeep)
	case mir.TermCall:
		call := &term.Call
		g.gatherOperand(&call.Func)
		for i := range call.Args {
			g.gatherOperand(&call.Args[i])
		}
		if call.HasDest {
			g.createMovePath(call.Dest)
			g.gatherInit(call.Dest, InitNonPanicPathOnly)
		}
	case mir.TermInlineAsm:
		for i := range term.InlineAsm.Operands {
			op := &term.InlineAsm.Operands[i]
			switch op.Kind {
			case mir.AsmIn, mir.AsmConst:
				g.gatherOperand(&op.In)
			case mir.AsmOut:
				if op.HasOut {
					g.createMovePath(op.Out)
					g.gatherInit(op.Out, InitDeep)
				}
			case mir.AsmInOut:
				g.gatherOperand(&op.In)
				if op.HasOut {
					g.createMovePath(op.Out)
					g.gatherInit(op.Out, InitDeep)
				}
			case mir.AsmSym:
			}
		}
	case mir.TermNone:
		panic(g.bug("block has no terminator"))
	default:
		panic(g.bug(fmt.Sprintf("unknown terminator kind %d", term.Kind)))
	}
}

func (g *gatherer) gatherRValue(rv *mir.RValue) {
	switch rv.Kind {
	case mir.RValueThreadLocalRef:
		// not-a-move
	case mir.RValueUse, mir.RValueRepeat, mir.RValueCast, mir.RValueUnaryOp,
		mir.RValueBinaryOp, mir.RValueCheckedBinaryOp, mir.RValueAggregate:
		ops := rv.Operands()
		for i := range ops {
			g.gatherOperand(&ops[i])
		}
	case mir.RValueRef, mir.RValueAddressOf, mir.RValueDiscriminant, mir.RValueLen, mir.RValueNullaryOp:
		// reads or borrows only
	default:
		panic(g.bug(fmt.Sprintf("unknown rvalue kind %d", rv.Kind)))
	}
}

func (g *gatherer) gatherOperand(op *mir.Operand) {
	switch op.Kind {
	case mir.OperandConst, mir.OperandCopy:
	case mir.OperandMove:
		g.gatherMove(op.Place)
	}
}

// createMovePath makes sure a path exists for a non-moving mention of place.
// Places that cannot have a path are fine here.
func (g *gatherer) createMovePath(place mir.Place) {
	_, _ = g.movePathFor(place)
}

// movePathFor resolves place to its move path, creating the missing prefix
// paths. A place inside a union resolves to a MoveErrUnion error carrying the
// union's path.
func (g *gatherer) movePathFor(place mir.Place) (MovePathIndex, *MoveError) {
	b := g.b
	base := b.data.RevLookup.FindLocal(place.Local)
	if base == NoMovePath {
		panic(g.bug(fmt.Sprintf("place %s uses undeclared local", place)))
	}
	unionPath := NoMovePath

	for i, elem := range place.Proj {
		ty := g.placeType(place.Prefix(i)).Type
		switch {
		case b.tcx.IsRefOrPtr(ty):
			return NoMovePath, illegalMove(g.loc, IllegalMoveKind{
				Kind:        BorrowedContent,
				TargetPlace: place.Prefix(i + 1),
			})
		case b.tcx.HasDestructor(ty) && !b.tcx.IsBox(ty):
			return NoMovePath, illegalMove(g.loc, IllegalMoveKind{
				Kind:        InteriorOfTypeWithDestructor,
				ContainerTy: ty,
			})
		case b.tcx.IsUnion(ty):
			if unionPath == NoMovePath {
				unionPath = base
			}
		case b.tcx.IsSlice(ty):
			return NoMovePath, illegalMove(g.loc, IllegalMoveKind{
				Kind:    InteriorOfSliceOrArray,
				Ty:      ty,
				IsIndex: elem.Kind == mir.ElemIndex,
			})
		default:
			if _, isArray := b.tcx.ArrayLen(ty); isArray && elem.Kind == mir.ElemIndex {
				return NoMovePath, illegalMove(g.loc, IllegalMoveKind{
					Kind:    InteriorOfSliceOrArray,
					Ty:      ty,
					IsIndex: true,
				})
			}
		}

		if unionPath == NoMovePath {
			prefix := i + 1
			base = b.addMovePath(base, elem, func() mir.Place { return place.Prefix(prefix) })
		}
	}

	if unionPath != NoMovePath {
		return NoMovePath, unionMove(unionPath)
	}
	return base, nil
}

func (g *gatherer) gatherMove(place mir.Place) {
	if last, ok := place.LastElem(); ok && last.Kind == mir.ElemSubslice && !last.FromEnd {
		g.gatherSubsliceMove(place, last)
		return
	}
	path, err := g.movePathFor(place)
	switch {
	case err == nil:
		g.recordMove(place, path)
	case err.Kind == MoveErrUnion:
		g.recordMove(place, err.Path)
	default:
		g.deferError(place, err)
	}
}

// gatherSubsliceMove splits a move of base[from..to] into one move per
// constant index, so the resulting paths stay disjoint.
func (g *gatherer) gatherSubsliceMove(place mir.Place, slice mir.PlaceElem) {
	base := place.Prefix(len(place.Proj) - 1)
	basePath, err := g.movePathFor(base)
	if err != nil {
		if err.Kind == MoveErrUnion {
			g.recordMove(place, err.Path)
		} else {
			g.deferError(base, err)
		}
		return
	}

	length, ok := g.b.tcx.ArrayLen(g.placeType(base).Type)
	if !ok {
		panic(g.bug("from_end: false slice pattern of non-array type"))
	}
	for offset := slice.From; offset < slice.To; offset++ {
		elem := mir.ConstantIndexElem(offset, length, false)
		path := g.b.addMovePath(basePath, elem, func() mir.Place { return base.Project(elem) })
		g.recordMove(place, path)
	}
}

func (g *gatherer) recordMove(place mir.Place, path MovePathIndex) {
	d := &g.b.data
	idx := MoveOutIndex(nextIndex(len(d.Moves), "move"))
	d.Moves = append(d.Moves, MoveOut{Path: path, Source: g.loc})
	d.PathMap[path] = append(d.PathMap[path], idx)
	d.LocMap.push(g.loc, idx)
	g.b.point("move", place.String(), "path", mpName(path), "loc", g.loc.String())
}

// gatherInit records an init of place if place has an exact move path.
// Writing a union field reinitializes the whole union.
func (g *gatherer) gatherInit(place mir.Place, kind InitKind) {
	if last, ok := place.LastElem(); ok && last.Kind == mir.ElemField {
		base := place.Prefix(len(place.Proj) - 1)
		if g.b.tcx.IsUnion(g.placeType(base).Type) {
			place = base
		}
	}

	res := g.b.data.RevLookup.Find(place)
	if !res.Exact {
		return
	}
	d := &g.b.data
	idx := InitIndex(nextIndex(len(d.Inits), "init"))
	d.Inits = append(d.Inits, Init{
		Path:     res.Path,
		Location: InitLocation{Kind: InitLocStatement, Loc: g.loc},
		Kind:     kind,
	})
	d.InitPathMap[res.Path] = append(d.InitPathMap[res.Path], idx)
	d.InitLocMap.push(g.loc, idx)
	g.b.point("init", place.String(), "path", mpName(res.Path), "loc", g.loc.String(), "kind", kind.String())
}

func (g *gatherer) deferError(place mir.Place, err *MoveError) {
	g.b.errors = append(g.b.errors, PlaceError{Place: place, Err: *err})
	g.b.point("illegal_move", place.String(), "loc", g.loc.String(), "kind", err.Illegal.Kind.Kind.String())
}

// placeType converts type-query panics from the IR layer into *BugError so
// callers only have to recover one type.
func (g *gatherer) placeType(place mir.Place) (pt mir.PlaceTy) {
	defer func() {
		if r := recover(); r != nil {
			if te, ok := r.(*mir.TypeError); ok {
				panic(g.bug(te.Error()))
			}
			panic(r)
		}
	}()
	return g.b.tcx.PlaceType(g.b.body, place.Local, place.Proj)
}

func (g *gatherer) bug(msg string) *BugError {
	return &BugError{Loc: g.loc, Msg: msg}
}
