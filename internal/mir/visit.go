package mir

// Places returns every place a statement mentions, operands included.
func (st *Statement) Places() []Place {
	switch st.Kind {
	case StmtAssign:
		out := []Place{st.Assign.Dst}
		return append(out, rvaluePlaces(&st.Assign.Src)...)
	case StmtFakeRead:
		return []Place{st.FakeRead.Place}
	case StmtSetDiscriminant:
		return []Place{st.SetDiscriminant.Place}
	case StmtStorageLive:
		return []Place{PlaceFromLocal(st.StorageLive.Local)}
	case StmtStorageDead:
		return []Place{PlaceFromLocal(st.StorageDead.Local)}
	case StmtInlineAsm:
		var out []Place
		for _, o := range st.InlineAsm.Outputs {
			out = append(out, o.Place)
		}
		return append(out, operandPlaces(st.InlineAsm.Inputs...)...)
	case StmtRetag:
		return []Place{st.Retag.Place}
	case StmtAscribeUserType:
		return []Place{st.AscribeUserType.Place}
	}
	return nil
}

// Places returns every place a terminator mentions, operands included.
func (t *Terminator) Places() []Place {
	switch t.Kind {
	case TermSwitchInt:
		return operandPlaces(t.SwitchInt.Discr)
	case TermDrop:
		return []Place{t.Drop.Place}
	case TermDropAndReplace:
		return append([]Place{t.DropAndReplace.Place}, operandPlaces(t.DropAndReplace.Value)...)
	case TermCall:
		out := operandPlaces(t.Call.Func)
		out = append(out, operandPlaces(t.Call.Args...)...)
		if t.Call.HasDest {
			out = append(out, t.Call.Dest)
		}
		return out
	case TermAssert:
		return operandPlaces(t.Assert.Cond)
	case TermYield:
		return append(operandPlaces(t.Yield.Value), t.Yield.ResumeArg)
	case TermInlineAsm:
		var out []Place
		for _, op := range t.InlineAsm.Operands {
			switch op.Kind {
			case AsmIn, AsmConst:
				out = append(out, operandPlaces(op.In)...)
			case AsmInOut:
				out = append(out, operandPlaces(op.In)...)
				if op.HasOut {
					out = append(out, op.Out)
				}
			case AsmOut:
				if op.HasOut {
					out = append(out, op.Out)
				}
			}
		}
		return out
	}
	return nil
}

func rvaluePlaces(rv *RValue) []Place {
	switch rv.Kind {
	case RValueRef, RValueAddressOf:
		return []Place{rv.Ref.Place}
	case RValueLen:
		return []Place{rv.Len}
	case RValueDiscriminant:
		return []Place{rv.Discriminant}
	}
	return operandPlaces(rv.Operands()...)
}

func operandPlaces(ops ...Operand) []Place {
	var out []Place
	for _, op := range ops {
		if op.Kind == OperandCopy || op.Kind == OperandMove {
			out = append(out, op.Place)
		}
	}
	return out
}
