package moves

import (
	"fmt"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/types"
)

// Report turns illegal moves into diagnostics. The primary span is the
// statement or terminator that moves; a note points at the declaration of
// the moved local. in resolves type and variant names and may be nil.
func Report(r diag.Reporter, body *mir.Body, in *types.Interner, errs []PlaceError) {
	if r == nil || body == nil {
		return
	}
	for i := range errs {
		pe := &errs[i]
		code, msg := describe(body, in, pe)
		b := diag.ReportError(r, code, body.SpanAt(pe.Err.Illegal.Location), msg)
		if local := body.Local(pe.Place.Local); local != nil {
			b.WithNote(local.Span, fmt.Sprintf("`%s` declared here", localName(pe.Place.Local, local)))
		}
		b.Emit()
	}
}

// CodeFor returns the diagnostic code used for an illegal move kind.
func CodeFor(kind IllegalMoveKind) diag.Code {
	switch kind.Kind {
	case BorrowedContent:
		return diag.MoveBorrowedContent
	case InteriorOfTypeWithDestructor:
		return diag.MoveInteriorOfDrop
	case InteriorOfSliceOrArray:
		if kind.IsIndex {
			return diag.MoveInteriorOfArrayIndex
		}
		return diag.MoveInteriorOfSlice
	}
	return diag.MoveInternalError
}

func describe(body *mir.Body, in *types.Interner, pe *PlaceError) (diag.Code, string) {
	kind := pe.Err.Illegal.Kind
	place := mir.FormatPlace(in, body, pe.Place)
	typeName := func(id types.TypeID) string {
		if in == nil {
			return fmt.Sprintf("#%d", id)
		}
		return in.Format(id)
	}
	switch kind.Kind {
	case BorrowedContent:
		return CodeFor(kind), fmt.Sprintf("cannot move out of `%s`, which is behind a reference or pointer",
			mir.FormatPlace(in, body, kind.TargetPlace))
	case InteriorOfTypeWithDestructor:
		return CodeFor(kind), fmt.Sprintf("cannot move out of `%s`: type `%s` has a destructor",
			place, typeName(kind.ContainerTy))
	case InteriorOfSliceOrArray:
		if kind.IsIndex {
			return CodeFor(kind), fmt.Sprintf("cannot move out of `%s`: type `%s` is indexed with a non-constant index",
				place, typeName(kind.Ty))
		}
		return CodeFor(kind), fmt.Sprintf("cannot move out of `%s`: move occurs from slice type `%s`",
			place, typeName(kind.Ty))
	}
	return diag.MoveInternalError, pe.Error()
}

func localName(id mir.LocalID, l *mir.Local) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("_%d", id)
}
