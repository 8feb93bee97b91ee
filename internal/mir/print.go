package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"moveflow/internal/types"
)

// DumpOptions configures MIR dumping.
type DumpOptions struct {
	// SkipTypes omits the nominal type declarations header.
	SkipTypes bool
}

// DumpModule writes m in the textual fixture syntax, nominal types first.
// The output parses back into an equivalent module.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	var b strings.Builder
	if !opts.SkipTypes {
		for _, id := range typesIn.Nominals() {
			b.WriteString(formatTypeDecl(typesIn, id))
			b.WriteByte('\n')
		}
	}
	for i, body := range m.Bodies {
		if i > 0 || b.Len() > 0 {
			b.WriteByte('\n')
		}
		dumpBody(&b, body, typesIn)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// DumpBody writes a single body without type declarations.
func DumpBody(w io.Writer, body *Body, typesIn *types.Interner) error {
	if w == nil || body == nil {
		return nil
	}
	var b strings.Builder
	dumpBody(&b, body, typesIn)
	_, err := io.WriteString(w, b.String())
	return err
}

func formatTypeDecl(in *types.Interner, id types.TypeID) string {
	fields := func(fs []types.Field) string {
		parts := make([]string, len(fs))
		for i, f := range fs {
			parts[i] = in.Format(f.Type)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	drop := func(d bool) string {
		if d {
			return " drop"
		}
		return ""
	}
	if info, ok := in.StructInfo(id); ok {
		return fmt.Sprintf("type %s = struct%s %s;", info.Name, drop(info.Drop), fields(info.Fields))
	}
	if info, ok := in.UnionInfo(id); ok {
		return fmt.Sprintf("type %s = union %s;", info.Name, fields(info.Fields))
	}
	if info, ok := in.EnumInfo(id); ok {
		vs := make([]string, len(info.Variants))
		for i, v := range info.Variants {
			if len(v.Fields) == 0 {
				vs[i] = v.Name + " {}"
				continue
			}
			vs[i] = v.Name + " " + fields(v.Fields)
		}
		return fmt.Sprintf("type %s = enum%s { %s };", info.Name, drop(info.Drop), strings.Join(vs, ", "))
	}
	return ""
}

type bodyPrinter struct {
	b     *strings.Builder
	body  *Body
	in    *types.Interner
	typer *Typer
}

func dumpBody(b *strings.Builder, body *Body, in *types.Interner) {
	p := &bodyPrinter{b: b, body: body, in: in, typer: NewTyper(in)}

	params := make([]string, 0, body.ArgCount)
	for _, arg := range body.Args() {
		params = append(params, p.localDecl(arg))
	}
	fmt.Fprintf(b, "fn %s(%s) -> %s {\n", body.Name, strings.Join(params, ", "), in.Format(body.Result))
	for i := body.ArgCount + 1; i < len(body.Locals); i++ {
		fmt.Fprintf(b, "    let %s;\n", p.localDecl(localID(i)))
	}
	for i := range body.Blocks {
		blk := &body.Blocks[i]
		fmt.Fprintf(b, "    bb%d: {\n", i)
		for j := range blk.Stmts {
			fmt.Fprintf(b, "        %s;\n", p.stmt(&blk.Stmts[j]))
		}
		fmt.Fprintf(b, "        %s;\n", p.term(&blk.Term))
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
}

func (p *bodyPrinter) localDecl(id LocalID) string {
	l := p.body.Local(id)
	mut := ""
	if l.Mutable {
		mut = "mut "
	}
	return fmt.Sprintf("%s_%d: %s", mut, id, p.in.Format(l.Type))
}

// FormatPlace renders place with enum variant names resolved through in.
func FormatPlace(in *types.Interner, body *Body, place Place) string {
	if in == nil || body == nil {
		return place.String()
	}
	typer := NewTyper(in)
	return formatPlace(place, func(prefix, variant int) string {
		pt, err := typer.TryPlaceType(body, place.Local, place.Proj[:prefix])
		if err != nil {
			return ""
		}
		return variantName(in, pt.Type, variant)
	})
}

func variantName(in *types.Interner, enum types.TypeID, variant int) string {
	info, ok := in.EnumInfo(enum)
	if !ok || variant < 0 || variant >= len(info.Variants) {
		return ""
	}
	return info.Variants[variant].Name
}

func (p *bodyPrinter) place(pl Place) string {
	return FormatPlace(p.in, p.body, pl)
}

func (p *bodyPrinter) operand(op *Operand) string {
	switch op.Kind {
	case OperandCopy:
		return "copy " + p.place(op.Place)
	case OperandMove:
		return "move " + p.place(op.Place)
	case OperandConst:
		return formatConst(&op.Const)
	}
	return "<op?>"
}

func (p *bodyPrinter) operands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i := range ops {
		parts[i] = p.operand(&ops[i])
	}
	return strings.Join(parts, ", ")
}

func formatConst(c *Const) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("const %d", c.IntValue)
	case ConstFloat:
		s := strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return "const " + s
	case ConstBool:
		return "const " + strconv.FormatBool(c.BoolValue)
	case ConstString:
		return "const " + strconv.Quote(c.StringValue)
	case ConstUnit:
		return "const ()"
	case ConstFn:
		return "const " + c.FnName
	}
	return "const ?"
}

func (p *bodyPrinter) rvalue(rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return p.operand(&rv.Use)
	case RValueRepeat:
		return fmt.Sprintf("[%s; %d]", p.operand(&rv.Repeat.Value), rv.Repeat.Count)
	case RValueRef:
		if rv.Ref.Mutable {
			return "&mut " + p.place(rv.Ref.Place)
		}
		return "&" + p.place(rv.Ref.Place)
	case RValueAddressOf:
		if rv.Ref.Mutable {
			return "&raw mut " + p.place(rv.Ref.Place)
		}
		return "&raw const " + p.place(rv.Ref.Place)
	case RValueLen:
		return "Len(" + p.place(rv.Len) + ")"
	case RValueCast:
		return fmt.Sprintf("%s as %s", p.operand(&rv.Cast.Value), p.in.Format(rv.Cast.TargetTy))
	case RValueBinaryOp:
		return fmt.Sprintf("%s(%s, %s)", rv.Binary.Op, p.operand(&rv.Binary.Left), p.operand(&rv.Binary.Right))
	case RValueCheckedBinaryOp:
		return fmt.Sprintf("Checked%s(%s, %s)", rv.Binary.Op, p.operand(&rv.Binary.Left), p.operand(&rv.Binary.Right))
	case RValueUnaryOp:
		return fmt.Sprintf("%s(%s)", rv.Unary.Op, p.operand(&rv.Unary.Operand))
	case RValueDiscriminant:
		return "discriminant(" + p.place(rv.Discriminant) + ")"
	case RValueNullaryOp:
		if rv.Nullary.Op == NullOpBox {
			return "box " + p.in.Format(rv.Nullary.Type)
		}
		return "SizeOf(" + p.in.Format(rv.Nullary.Type) + ")"
	case RValueAggregate:
		agg := &rv.Aggregate
		switch agg.Kind {
		case AggregateTuple:
			if len(agg.Operands) == 1 {
				return "(" + p.operand(&agg.Operands[0]) + ",)"
			}
			return "(" + p.operands(agg.Operands) + ")"
		case AggregateArray:
			return "[" + p.operands(agg.Operands) + "]"
		case AggregateAdt:
			name := p.in.Format(agg.Type)
			if v := variantName(p.in, agg.Type, agg.Variant); v != "" {
				name += "::" + v
			}
			if len(agg.Operands) == 0 {
				return name + " {}"
			}
			return name + " { " + p.operands(agg.Operands) + " }"
		}
	case RValueThreadLocalRef:
		if rv.ThreadLocal != "" {
			return "thread_local " + rv.ThreadLocal
		}
		return "thread_local"
	}
	return "<rvalue?>"
}

func (p *bodyPrinter) stmt(st *Statement) string {
	switch st.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", p.place(st.Assign.Dst), p.rvalue(&st.Assign.Src))
	case StmtFakeRead:
		return "FakeRead(" + p.place(st.FakeRead.Place) + ")"
	case StmtSetDiscriminant:
		sd := &st.SetDiscriminant
		name := ""
		if pt, err := p.typer.TryPlaceType(p.body, sd.Place.Local, sd.Place.Proj); err == nil {
			name = variantName(p.in, pt.Type, sd.Variant)
		}
		if name == "" {
			name = strconv.Itoa(sd.Variant)
		}
		return fmt.Sprintf("SetDiscriminant(%s, %s)", p.place(sd.Place), name)
	case StmtStorageLive:
		return fmt.Sprintf("StorageLive(_%d)", st.StorageLive.Local)
	case StmtStorageDead:
		return fmt.Sprintf("StorageDead(_%d)", st.StorageDead.Local)
	case StmtInlineAsm:
		parts := make([]string, 0, len(st.InlineAsm.Outputs)+len(st.InlineAsm.Inputs))
		for _, out := range st.InlineAsm.Outputs {
			if out.Indirect {
				parts = append(parts, "out indirect "+p.place(out.Place))
			} else {
				parts = append(parts, "out "+p.place(out.Place))
			}
		}
		for i := range st.InlineAsm.Inputs {
			parts = append(parts, "in "+p.operand(&st.InlineAsm.Inputs[i]))
		}
		return "asm(" + strings.Join(parts, ", ") + ")"
	case StmtRetag:
		return "Retag(" + p.place(st.Retag.Place) + ")"
	case StmtAscribeUserType:
		return "AscribeUserType(" + p.place(st.AscribeUserType.Place) + ")"
	case StmtNop:
		return "nop"
	}
	return "<stmt?>"
}

func withUnwind(s string, unwind BlockID) string {
	if unwind == NoBlockID {
		return s
	}
	return fmt.Sprintf("%s unwind bb%d", s, unwind)
}

func (p *bodyPrinter) term(t *Terminator) string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto -> bb%d", t.Goto.Target)
	case TermSwitchInt:
		sw := &t.SwitchInt
		arms := make([]string, 0, len(sw.Cases)+1)
		for _, c := range sw.Cases {
			arms = append(arms, fmt.Sprintf("%d: bb%d", c.Value, c.Target))
		}
		arms = append(arms, fmt.Sprintf("otherwise: bb%d", sw.Otherwise))
		return fmt.Sprintf("switchInt(%s) -> [%s]", p.operand(&sw.Discr), strings.Join(arms, ", "))
	case TermResume:
		return "resume"
	case TermAbort:
		return "abort"
	case TermReturn:
		return "return"
	case TermUnreachable, TermNone:
		return "unreachable"
	case TermDrop:
		return withUnwind(fmt.Sprintf("drop(%s) -> bb%d", p.place(t.Drop.Place), t.Drop.Target), t.Drop.Unwind)
	case TermDropAndReplace:
		dr := &t.DropAndReplace
		return withUnwind(fmt.Sprintf("replace(%s <- %s) -> bb%d", p.place(dr.Place), p.operand(&dr.Value), dr.Target), dr.Unwind)
	case TermCall:
		c := &t.Call
		out := fmt.Sprintf("call %s(%s)", p.operand(&c.Func), p.operands(c.Args))
		if c.HasDest {
			out = p.place(c.Dest) + " = " + out
		}
		if c.Target != NoBlockID {
			out += fmt.Sprintf(" -> bb%d", c.Target)
		}
		return withUnwind(out, c.Unwind)
	case TermAssert:
		a := &t.Assert
		neg := ""
		if !a.Expected {
			neg = "!"
		}
		return withUnwind(fmt.Sprintf("assert(%s%s) -> bb%d", neg, p.operand(&a.Cond), a.Target), a.Unwind)
	case TermYield:
		y := &t.Yield
		out := fmt.Sprintf("yield(%s) -> resume %s, bb%d", p.operand(&y.Value), p.place(y.ResumeArg), y.Resume)
		if y.Drop != NoBlockID {
			out += fmt.Sprintf(", drop bb%d", y.Drop)
		}
		return out
	case TermGeneratorDrop:
		return "generator_drop"
	case TermFalseEdges:
		return fmt.Sprintf("falseEdges -> [real: bb%d, imaginary: bb%d]", t.FalseEdges.Real, t.FalseEdges.Imaginary)
	case TermFalseUnwind:
		return withUnwind(fmt.Sprintf("falseUnwind -> bb%d", t.FalseUnwind.Real), t.FalseUnwind.Unwind)
	case TermInlineAsm:
		ops := make([]string, len(t.InlineAsm.Operands))
		for i := range t.InlineAsm.Operands {
			ops[i] = p.asmOperand(&t.InlineAsm.Operands[i])
		}
		out := "asm [" + strings.Join(ops, ", ") + "]"
		if t.InlineAsm.Destination != NoBlockID {
			out += fmt.Sprintf(" -> bb%d", t.InlineAsm.Destination)
		}
		return out
	}
	return "<term?>"
}

func (p *bodyPrinter) asmOperand(op *AsmOperand) string {
	outPlace := func() string {
		if !op.HasOut {
			return "_"
		}
		return p.place(op.Out)
	}
	switch op.Kind {
	case AsmIn:
		return "in " + p.operand(&op.In)
	case AsmOut:
		return "out " + outPlace()
	case AsmInOut:
		return fmt.Sprintf("inout %s => %s", p.operand(&op.In), outPlace())
	case AsmConst:
		return "const " + strings.TrimPrefix(p.operand(&op.In), "const ")
	case AsmSym:
		return "sym " + op.Symbol
	}
	return "<asm?>"
}
