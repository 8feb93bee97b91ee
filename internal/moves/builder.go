package moves

import (
	"strconv"

	"moveflow/internal/mir"
	"moveflow/internal/trace"
)

// GatherOptions configures GatherMovesWith.
type GatherOptions struct {
	// Tracer receives one debug point per recorded move, init and error.
	Tracer trace.Tracer
	// ParentSpan is the span the points are attached to.
	ParentSpan uint64
}

type builder struct {
	body   *mir.Body
	tcx    TypeContext
	data   MoveData
	errors []PlaceError

	tracer trace.Tracer
	span   uint64
}

// GatherMoves builds the move data for body. The returned data is always
// usable; errs lists the illegal moves that were skipped.
//
// GatherMoves panics with *BugError when body contains constructs that must
// not reach this stage.
func GatherMoves(body *mir.Body, tcx TypeContext) (*MoveData, []PlaceError) {
	return GatherMovesWith(body, tcx, GatherOptions{})
}

// Gather is GatherMoves with the errors folded into a *GatherError.
func Gather(body *mir.Body, tcx TypeContext) (*MoveData, error) {
	data, errs := GatherMoves(body, tcx)
	if len(errs) > 0 {
		return data, &GatherError{Data: data, Errors: errs}
	}
	return data, nil
}

// GatherMovesWith is GatherMoves with tracing.
func GatherMovesWith(body *mir.Body, tcx TypeContext, opts GatherOptions) (*MoveData, []PlaceError) {
	b := newBuilder(body, tcx, opts)
	b.gatherArgs()
	for i := range body.Blocks {
		bb := mir.BlockIDFromInt(i)
		blk := &body.Blocks[i]
		for j := range blk.Stmts {
			b.gatherStatement(mir.Location{Block: bb, Statement: j}, &blk.Stmts[j])
		}
		b.gatherTerminator(mir.Location{Block: bb, Statement: len(blk.Stmts)}, &blk.Term)
	}
	return b.finalize()
}

func newBuilder(body *mir.Body, tcx TypeContext, opts GatherOptions) *builder {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	b := &builder{
		body:   body,
		tcx:    tcx,
		tracer: tracer,
		span:   opts.ParentSpan,
		data: MoveData{
			RevLookup:  newMovePathLookup(len(body.Locals)),
			LocMap:     newLocationMap[MoveOutIndex](body),
			InitLocMap: newLocationMap[InitIndex](body),
		},
	}
	for i := range body.Locals {
		root := b.newMovePath(NoMovePath, mir.PlaceFromLocal(mir.LocalIDFromInt(i)))
		b.data.RevLookup.Locals = append(b.data.RevLookup.Locals, root)
	}
	return b
}

// newMovePath appends a node and its two empty event lists, and links it as
// the first child of parent.
func (b *builder) newMovePath(parent MovePathIndex, place mir.Place) MovePathIndex {
	mpi := MovePathIndex(nextIndex(len(b.data.MovePaths), "move path"))
	next := NoMovePath
	if parent != NoMovePath {
		next = b.data.MovePaths[parent].FirstChild
		b.data.MovePaths[parent].FirstChild = mpi
	}
	b.data.MovePaths = append(b.data.MovePaths, MovePath{
		Place:       place,
		Parent:      parent,
		FirstChild:  NoMovePath,
		NextSibling: next,
	})
	b.data.PathMap = append(b.data.PathMap, nil)
	b.data.InitPathMap = append(b.data.InitPathMap, nil)
	return mpi
}

// addMovePath returns the child of base for elem, creating it with the place
// built by mkPlace if it does not exist yet.
func (b *builder) addMovePath(base MovePathIndex, elem mir.PlaceElem, mkPlace func() mir.Place) MovePathIndex {
	key := projKey{base: base, elem: elem.Lift()}
	if mpi, ok := b.data.RevLookup.projections[key]; ok {
		return mpi
	}
	mpi := b.newMovePath(base, mkPlace())
	b.data.RevLookup.projections[key] = mpi
	return mpi
}

func (b *builder) gatherArgs() {
	for _, arg := range b.body.Args() {
		path := b.data.RevLookup.Locals[arg]
		idx := InitIndex(nextIndex(len(b.data.Inits), "init"))
		b.data.Inits = append(b.data.Inits, Init{
			Path:     path,
			Kind:     InitDeep,
			Location: InitLocation{Kind: InitLocArgument, Arg: arg},
		})
		b.data.InitPathMap[path] = append(b.data.InitPathMap[path], idx)
		b.point("init", "", "path", mpName(path), "arg", strconv.Itoa(int(arg)))
	}
}

func (b *builder) finalize() (*MoveData, []PlaceError) {
	data := b.data
	return &data, b.errors
}

func (b *builder) point(name, detail string, extra ...string) {
	trace.Point(b.tracer, trace.ScopeNode, name, detail, b.span, extra...)
}

func mpName(mpi MovePathIndex) string {
	return "mp" + strconv.Itoa(int(mpi))
}
