package diagfmt

import "moveflow/internal/source"

// PathMode picks how file paths appear in rendered diagnostics.
type PathMode uint8

const (
	// PathModeAuto keeps short paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	// PathModeRelative is relative to the FileSet base dir.
	PathModeRelative
	PathModeBasename
)

var pathStyles = [...]source.PathStyle{
	PathModeAuto:     source.PathAuto,
	PathModeAbsolute: source.PathAbsolute,
	PathModeRelative: source.PathRelative,
	PathModeBasename: source.PathBase,
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста вокруг основной строки
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures BuildDiagnosticsOutput.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, Bag не трогаем
	IncludeNotes     bool
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	if int(mode) >= len(pathStyles) {
		return f.Path
	}
	base := ""
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return f.FormatPath(pathStyles[mode], base)
}
