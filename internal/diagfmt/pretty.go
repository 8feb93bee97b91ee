package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"moveflow/internal/diag"
	"moveflow/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc, file := location(fs, d.Primary, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			pal.path.Sprint(loc),
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			d.Code.ID(),
			d.Message,
		)
		if file != nil {
			writeExcerpt(w, fs, file, d.Primary, int(opts.Context), pal)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nloc, nfile := location(fs, n.Span, opts.PathMode)
			if nfile == nil {
				fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), nloc, n.Msg)
		}
	}
}

// location renders path:line:col, or "<unknown>" for spans outside fs.
func location(fs *source.FileSet, sp source.Span, mode PathMode) (string, *source.File) {
	if fs == nil {
		return "<unknown>", nil
	}
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>", nil
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), start.Line, start.Col), f
}

func writeExcerpt(w io.Writer, fs *source.FileSet, f *source.File, sp source.Span, context int, pal palette) {
	start, end := fs.Resolve(sp)
	ctx := uint32(max(context, 0)) //nolint:gosec // context comes from an int8
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.Line(ln)
		if ln != start.Line && text == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", width, ln), text)
		if ln != start.Line {
			continue
		}
		// колонки в байтах, ширина в ячейках терминала
		col := min(int(start.Col)-1, len(text))
		endCol := len(text)
		if end.Line == start.Line {
			endCol = min(int(end.Col)-1, len(text))
		}
		pad := runewidth.StringWidth(strings.Map(tabToSpace, text[:col]))
		span := max(runewidth.StringWidth(text[col:max(endCol, col)]), 1)
		marker := "^" + strings.Repeat("~", span-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marker))
	}
}

func tabToSpace(r rune) rune {
	if r == '\t' {
		return ' '
	}
	return r
}
