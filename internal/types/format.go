package types

import (
	"fmt"
	"strings"
)

// Format renders the type the way fixtures spell it.
func (in *Interner) Format(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindInt:
		return numName("i", "int", tt.Width)
	case KindUint:
		return numName("u", "uint", tt.Width)
	case KindFloat:
		return numName("f", "float", tt.Width)
	case KindArray:
		if tt.Count == ArrayDynamicLength {
			return "[" + in.Format(tt.Elem) + "]"
		}
		return fmt.Sprintf("[%s; %d]", in.Format(tt.Elem), tt.Count)
	case KindPointer:
		if tt.Mutable {
			return "*mut " + in.Format(tt.Elem)
		}
		return "*const " + in.Format(tt.Elem)
	case KindReference:
		if tt.Mutable {
			return "&mut " + in.Format(tt.Elem)
		}
		return "&" + in.Format(tt.Elem)
	case KindOwn:
		return "Box<" + in.Format(tt.Elem) + ">"
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "(?)"
		}
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			parts[i] = in.Format(e)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindStruct:
		if info := in.structInfo(id); info != nil {
			return info.Name
		}
	case KindUnion:
		if info := in.unionInfo(id); info != nil {
			return info.Name
		}
	case KindEnum:
		if info := in.enumInfo(id); info != nil {
			return info.Name
		}
	}
	return tt.Kind.String()
}

func numName(prefix, any string, w Width) string {
	if w == WidthAny {
		return any
	}
	return fmt.Sprintf("%s%d", prefix, w)
}
