package mir

import (
	"errors"
	"fmt"

	"moveflow/internal/source"
)

// ValidationKind classifies a structural problem found by Validate.
type ValidationKind uint8

const (
	ValidateNoBlocks ValidationKind = iota
	ValidateBadArgCount
	ValidateUnterminated
	ValidateBadBlock
	ValidateBadLocal
	ValidateBadProjection
	ValidateBadSubslice
	ValidateBadConstantIndex
	ValidateSetDiscriminant
)

// ValidationError describes one violated IR invariant.
type ValidationError struct {
	Kind ValidationKind
	Loc  Location
	Span source.Span
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Loc.Block == NoBlockID {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

// Validate checks body invariants the move gatherer relies on.
// Returns error if any invariant is violated.
func Validate(body *Body, typer *Typer) error {
	var errs []error
	for _, e := range Check(body, typer) {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Check is Validate returning the individual findings.
func Check(body *Body, typer *Typer) []*ValidationError {
	if body == nil {
		return nil
	}
	v := &validator{body: body, typer: typer}
	v.run()
	return v.errs
}

type validator struct {
	body  *Body
	typer *Typer
	errs  []*ValidationError
}

func (v *validator) report(kind ValidationKind, loc Location, span source.Span, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Kind: kind, Loc: loc, Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (v *validator) run() {
	nowhere := Location{Block: NoBlockID}
	if len(v.body.Blocks) == 0 {
		v.report(ValidateNoBlocks, nowhere, v.body.Span, "function %s has no basic blocks", v.body.Name)
	}
	if len(v.body.Locals) == 0 {
		v.report(ValidateBadLocal, nowhere, v.body.Span, "function %s has no return place", v.body.Name)
		return
	}
	if v.body.ArgCount < 0 || v.body.ArgCount > len(v.body.Locals)-1 {
		v.report(ValidateBadArgCount, nowhere, v.body.Span, "argument count %d exceeds %d locals", v.body.ArgCount, len(v.body.Locals))
	}

	for i := range v.body.Blocks {
		blk := &v.body.Blocks[i]
		bb := blockID(i)
		for j := range blk.Stmts {
			st := &blk.Stmts[j]
			loc := Location{Block: bb, Statement: j}
			if st.Kind == StmtSetDiscriminant {
				v.report(ValidateSetDiscriminant, loc, st.Span, "SetDiscriminant must not appear before drop elaboration")
			}
			for _, pl := range st.Places() {
				v.checkPlace(loc, st.Span, pl)
			}
		}

		loc := Location{Block: bb, Statement: len(blk.Stmts)}
		if !blk.Terminated() {
			v.report(ValidateUnterminated, loc, blk.Term.Span, "bb%d: unterminated block", i)
			continue
		}
		for _, succ := range blk.Term.Successors() {
			if v.body.Block(succ) == nil {
				v.report(ValidateBadBlock, loc, blk.Term.Span, "jump to undeclared bb%d", succ)
			}
		}
		for _, pl := range blk.Term.Places() {
			v.checkPlace(loc, blk.Term.Span, pl)
		}
	}
}

func (v *validator) checkPlace(loc Location, span source.Span, pl Place) {
	for _, l := range pl.Locals() {
		if v.body.Local(l) == nil {
			v.report(ValidateBadLocal, loc, span, "place %s uses undeclared local _%d", pl, l)
			return
		}
	}
	if v.typer == nil {
		return
	}

	pt := placeTyFromType(v.body.Local(pl.Local).Type)
	for i, elem := range pl.Proj {
		switch elem.Kind {
		case ElemSubslice:
			if !elem.FromEnd {
				if _, ok := v.typer.ArrayLen(pt.Type); !ok {
					v.report(ValidateBadSubslice, loc, span, "subslice %s counted from the start requires an array", pl.Prefix(i+1))
					return
				}
			}
		case ElemConstantIndex:
			if !constantIndexInRange(elem) {
				v.report(ValidateBadConstantIndex, loc, span, "constant index %s is out of range", pl.Prefix(i+1))
				return
			}
		}
		next, err := v.typer.Project(pt, elem)
		if err != nil {
			v.report(ValidateBadProjection, loc, span, "place %s: %v", pl, err)
			return
		}
		pt = next
	}
}

func constantIndexInRange(e PlaceElem) bool {
	if e.FromEnd {
		return e.Offset >= 1 && e.Offset <= e.MinLength
	}
	return e.Offset < e.MinLength
}
