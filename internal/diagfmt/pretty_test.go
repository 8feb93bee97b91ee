package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"moveflow/internal/diag"
	"moveflow/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("/home/user/project/fixtures/moves.mir", []byte(fixture))
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.MoveBorrowedContent, source.Span{File: fileID, Start: 49, End: 61}, "cannot move out of borrowed content"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/fixtures/moves.mir"},
		{"Relative path", PathModeRelative, "fixtures/moves.mir"},
		{"Basename only", PathModeBasename, "moves.mir:3:14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR MOV4001: cannot move out of borrowed content") {
				t.Errorf("header missing, got:\n%s", output)
			}
		})
	}
}

func TestPrettyExcerptAndCaret(t *testing.T) {
	fs, bag, _ := fixtureBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	if lines[1] != "3 |         _0 = move (*_1).0;" {
		t.Errorf("excerpt line = %q", lines[1])
	}
	// ^ под началом `move`, длина по span
	want := "  | " + strings.Repeat(" ", 13) + "^" + strings.Repeat("~", 11)
	if lines[2] != want {
		t.Errorf("caret line:\n got %q\nwant %q", lines[2], want)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs, bag, _ := fixtureBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	if !strings.Contains(buf.String(), "note: moves.mir:1:6: `_1` declared here") {
		t.Fatalf("expected note with location, got:\n%s", buf.String())
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs, bag, _ := fixtureBag(t)

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("escape codes with Color=false")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("no escape codes with Color=true")
	}
}
