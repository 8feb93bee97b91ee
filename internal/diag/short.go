package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"moveflow/internal/source"
)

// shortLine is one row of the short format; notes get their own rows.
type shortLine struct {
	label   string
	code    string
	path    string
	line    uint32
	col     uint32
	message string
}

func compareShortLines(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.label, b.label),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.message, b.message),
	)
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	<severity> <ID> <path>:<line>:<col> <message>
//
// Lines are sorted by position, so the output is stable whatever order the
// workers reported in. With includeNotes every note becomes a "note" line
// carrying its parent's code. Spans outside fs are skipped.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var lines []shortLine
	add := func(label string, code Code, sp source.Span, msg string) {
		if !fs.Has(sp.File) {
			return
		}
		start, _ := fs.Resolve(sp)
		lines = append(lines, shortLine{
			label:   label,
			code:    code.ID(),
			path:    slashPath(fs.Get(sp.File).FormatPath(source.PathRelative, fs.BaseDir())),
			line:    start.Line,
			col:     start.Col,
			message: oneLine(msg),
		})
	}
	for _, d := range diags {
		add(d.Severity.Label(), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				add("note", d.Code, n.Span, n.Msg)
			}
		}
	}
	slices.SortStableFunc(lines, compareShortLines)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s %s %s:%d:%d %s", l.label, l.code, l.path, l.line, l.col, l.message)
	}
	return strings.Join(out, "\n")
}

func slashPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// oneLine folds any line breaks in msg into spaces.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
