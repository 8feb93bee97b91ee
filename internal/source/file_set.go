package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns the fixtures of one run. It is filled before analysis starts
// and only read afterwards, so workers may share it without locking.
type FileSet struct {
	files   []*File
	byPath  map[string]FileID // последняя версия файла по пути
	baseDir string
}

// NewFileSet returns an empty set whose relative paths are resolved against
// the working directory.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase returns an empty set rooted at baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{byPath: make(map[string]FileID), baseDir: baseDir}
}

func (fs *FileSet) SetBaseDir(dir string) {
	fs.baseDir = dir
}

// BaseDir returns the directory relative paths are printed against.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Len reports how many files were added, including superseded versions.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Add registers already normalised content. Adding a path twice yields a new
// FileID; Lookup then returns the newer one while the old ID stays valid.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	norm := normalizePath(path)
	fs.files = append(fs.files, &File{
		ID:      id,
		Path:    norm,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.byPath[norm] = id
	return id
}

// AddVirtual registers in-memory content under name.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Load reads a fixture from disk, strips a UTF-8 BOM and converts CRLF.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) //nolint:gosec // fixture paths come from the command line
	if err != nil {
		return 0, fmt.Errorf("load fixture: %w", err)
	}
	var flags FileFlags
	content, bom := removeBOM(content)
	if bom {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if crlf {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// Get returns the file for id. It panics on an ID from another set.
func (fs *FileSet) Get(id FileID) *File {
	return fs.files[id]
}

// Has reports whether id belongs to this set.
func (fs *FileSet) Has(id FileID) bool {
	return int(id) < len(fs.files)
}

// Lookup returns the newest file added under path.
func (fs *FileSet) Lookup(path string) (*File, bool) {
	id, ok := fs.byPath[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return fs.files[id], true
}

// Resolve converts the span's byte offsets into line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Position renders the start of span as path:line:col.
func (fs *FileSet) Position(span Span, style PathStyle) string {
	f := fs.files[span.File]
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(style, fs.BaseDir()), start.Line, start.Col)
}
