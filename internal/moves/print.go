package moves

import (
	"fmt"
	"io"
	"strings"

	"moveflow/internal/mir"
	"moveflow/internal/types"
)

// Dump writes a readable listing of data: the path forest, then moves, inits
// and errors. in may be nil.
func Dump(w io.Writer, body *mir.Body, in *types.Interner, data *MoveData, errs []PlaceError) error {
	var b strings.Builder
	place := func(p mir.Place) string { return mir.FormatPlace(in, body, p) }

	fmt.Fprintf(&b, "move data for %s\n", body.Name)
	b.WriteString("  paths:\n")
	for i := range data.MovePaths {
		mp := &data.MovePaths[i]
		parent := "-"
		if mp.Parent != NoMovePath {
			parent = mpName(mp.Parent)
		}
		fmt.Fprintf(&b, "    %-5s %-20s parent=%s", mpName(MovePathIndex(i)), place(mp.Place), parent)
		if len(data.PathMap[i]) > 0 {
			fmt.Fprintf(&b, " moves=%v", data.PathMap[i])
		}
		if len(data.InitPathMap[i]) > 0 {
			fmt.Fprintf(&b, " inits=%v", data.InitPathMap[i])
		}
		b.WriteByte('\n')
	}
	if len(data.Moves) > 0 {
		b.WriteString("  moves:\n")
		for i, m := range data.Moves {
			fmt.Fprintf(&b, "    mo%-3d %s at %s\n", i, place(data.MovePaths[m.Path].Place), m.Source)
		}
	}
	if len(data.Inits) > 0 {
		b.WriteString("  inits:\n")
		for i, ini := range data.Inits {
			fmt.Fprintf(&b, "    in%-3d %s at %s (%s)\n", i, place(data.MovePaths[ini.Path].Place), ini.Location, ini.Kind)
		}
	}
	if len(errs) > 0 {
		b.WriteString("  errors:\n")
		for _, pe := range errs {
			fmt.Fprintf(&b, "    %s at %s: %s\n", place(pe.Place), pe.Err.Illegal.Location, pe.Err.Illegal.Kind.Kind)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
