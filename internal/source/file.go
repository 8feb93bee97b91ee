package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileID indexes a file inside its FileSet.
type FileID uint32

// FileFlags records how a fixture was read.
type FileFlags uint8

const (
	// FileVirtual marks content added from memory, e.g. mirtext.ParseString.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded .mir fixture. Content is already normalised (no BOM,
// LF line endings); Hash is computed over that normalised form, so the disk
// cache key does not change with line-ending conversions.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position. Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

// PathStyle selects how FormatPath renders File.Path.
type PathStyle uint8

const (
	PathAsIs PathStyle = iota
	PathAbsolute
	PathRelative
	PathBase
	// PathAuto keeps short or relative paths and shortens long absolute ones.
	PathAuto
)

// autoPathLimit is the length above which PathAuto falls back to the base name.
const autoPathLimit = 40

// Line returns line n (1-based) without its newline, or "" past the end.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	lines, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content size overflow: %w", err))
	}

	var start uint32
	if n > 1 {
		if n-2 >= lines {
			return ""
		}
		start = f.LineIdx[n-2] + 1
	}
	end := size
	if n-1 < lines {
		end = f.LineIdx[n-1]
	}
	if start >= size {
		return ""
	}
	return string(f.Content[start:min(end, size)])
}

// FormatPath renders the path in the given style. baseDir is only read for
// PathRelative; empty means the working directory.
func (f *File) FormatPath(style PathStyle, baseDir string) string {
	switch style {
	case PathAbsolute:
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case PathRelative:
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case PathBase:
		return BaseName(f.Path)
	case PathAuto:
		if len(f.Path) >= autoPathLimit && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
