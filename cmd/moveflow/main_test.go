package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moveflow/internal/moves"
)

const cliFixture = `type Guard = struct drop { Box<int> };

fn ok(_1: Box<int>) -> Box<int> {
    bb0: {
        _0 = move _1;
        return;
    }
}

fn bad(_1: &Box<int>, _2: Guard) -> Box<int> {
    bb0: {
        _0 = move (*_1);
        _0 = move _2.0;
        return;
    }
}
`

const cleanFixture = `fn id(_1: Box<int>) -> Box<int> {
    bb0: {
        _0 = move _1;
        return;
    }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheckReportsIllegalMoves(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "moves.mir", cliFixture)

	stdout, _, err := runCLI(t, "check", "--color=off", "--format=short", path)
	if !errors.Is(err, errProblemsFound) {
		t.Fatalf("expected errProblemsFound, got %v", err)
	}
	for _, want := range []string{"MOV4001", "MOV4002"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("short output misses %s:\n%s", want, stdout)
		}
	}
}

func TestCheckCleanFixture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clean.mir", cleanFixture)

	stdout, _, err := runCLI(t, "check", "--color=off", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(stdout, "checked 1 files, 1 functions: 0 errors, 0 warnings") {
		t.Fatalf("unexpected summary:\n%s", stdout)
	}
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "moves.mir", cliFixture)
	writeFile(t, dir, "clean.mir", cleanFixture)

	stdout, _, err := runCLI(t, "check", "--format=json", "--ui=off", dir)
	if !errors.Is(err, errProblemsFound) {
		t.Fatalf("expected errProblemsFound, got %v", err)
	}
	var payload map[string]any
	if jsonErr := json.Unmarshal([]byte(stdout), &payload); jsonErr != nil {
		t.Fatalf("output is not JSON: %v\n%s", jsonErr, stdout)
	}
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clean.mir", cleanFixture)

	_, _, err := runCLI(t, "check", "--format=sarif", path)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestGatherJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "moves.mir", cliFixture)

	stdout, stderr, err := runCLI(t, "gather", "--format=json", path)
	if !errors.Is(err, errProblemsFound) {
		t.Fatalf("expected errProblemsFound, got %v", err)
	}
	if !strings.Contains(stderr, "MOV4001") {
		t.Errorf("diagnostics missing from stderr:\n%s", stderr)
	}

	var files []gatherFileJSON
	if jsonErr := json.Unmarshal([]byte(stdout), &files); jsonErr != nil {
		t.Fatalf("output is not JSON: %v\n%s", jsonErr, stdout)
	}
	if len(files) != 1 || len(files[0].Bodies) != 2 {
		t.Fatalf("unexpected shape: %+v", files)
	}
	ok := files[0].Bodies[0]
	if ok.Name != "ok" || ok.Status != "ok" {
		t.Fatalf("first body = %s/%s", ok.Name, ok.Status)
	}
	if len(ok.Paths) != 2 || ok.Paths[0].Parent != moves.NoMovePath {
		t.Fatalf("ok paths: %+v", ok.Paths)
	}
	// the return terminator moves _0 out
	if len(ok.Moves) != 2 || ok.Moves[0].Path != 1 || ok.Moves[0].Location != "bb0[0]" || ok.Moves[1].Path != 0 {
		t.Fatalf("ok moves: %+v", ok.Moves)
	}
	bad := files[0].Bodies[1]
	if len(bad.Errors) != 2 {
		t.Fatalf("bad errors: %+v", bad.Errors)
	}
	if bad.Errors[0].Kind != "BorrowedContent" || bad.Errors[1].Kind != "InteriorOfTypeWithDestructor" {
		t.Fatalf("bad error kinds: %+v", bad.Errors)
	}
}

func TestGatherPathsOnlyPretty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clean.mir", cleanFixture)

	stdout, _, err := runCLI(t, "gather", "--color=off", "--paths-only", path)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if !strings.Contains(stdout, "fn id") || !strings.Contains(stdout, "path") {
		t.Fatalf("missing table header:\n%s", stdout)
	}
	if strings.Contains(stdout, "move ") {
		t.Fatalf("paths-only printed moves table:\n%s", stdout)
	}
}

func TestGatherMsgpackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clean.mir", cleanFixture)
	outPath := filepath.Join(dir, "out.mp")

	if _, _, err := runCLI(t, "gather", "--format=msgpack", "-o", outPath, path); err != nil {
		t.Fatalf("gather: %v", err)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, errs, err := moves.DecodeSnapshot(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(errs) != 0 || len(data.Moves) != 2 {
		t.Fatalf("decoded %d moves, %d errors", len(data.Moves), len(errs))
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "moves.mir", cliFixture)

	// move errors of `bad` belong to check; dump still succeeds
	stdout, stderr, err := runCLI(t, "dump", "--skip-types", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Contains(stderr, "MOV") {
		t.Errorf("dump reported move errors:\n%s", stderr)
	}
	if strings.Contains(stdout, "type Guard") {
		t.Errorf("--skip-types kept the type header:\n%s", stdout)
	}
	if !strings.Contains(stdout, "fn ok(") || !strings.Contains(stdout, "fn bad(") {
		t.Errorf("bodies missing:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "dump", "--moves", path)
	if err != nil {
		t.Fatalf("dump --moves: %v", err)
	}
	if !strings.Contains(stdout, "type Guard") || !strings.Contains(stdout, "// moves of ok") {
		t.Errorf("dump --moves output:\n%s", stdout)
	}
}

func TestDumpSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.mir", "fn broken() -> int {\n    bb0: {\n        _0 = ;\n        return;\n    }\n}\n")

	_, stderr, err := runCLI(t, "dump", path)
	if !errors.Is(err, errProblemsFound) {
		t.Fatalf("expected errProblemsFound, got %v", err)
	}
	if !strings.Contains(stderr, "SYN") {
		t.Fatalf("syntax diagnostic missing:\n%s", stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format=json", "--hash")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("version output: %v\n%s", err, stdout)
	}
	if payload.Tool != "moveflow" || strings.Contains(payload.Version, "\x1b") {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.GitCommit != "unknown" {
		t.Fatalf("git_commit = %q, want unknown", payload.GitCommit)
	}
}

func TestMissingTarget(t *testing.T) {
	_, _, err := runCLI(t, "check", filepath.Join(t.TempDir(), "absent"))
	if err == nil || errors.Is(err, errProblemsFound) {
		t.Fatalf("expected a resolve error, got %v", err)
	}
}

func TestCacheCleanAfterGather(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "moveflow.toml", "[cache]\nenabled = true\ndir = \"cache\"\n")
	path := writeFile(t, dir, "clean.mir", cleanFixture)

	if _, _, err := runCLI(t, "gather", "--format=json", path); err != nil {
		t.Fatalf("gather: %v", err)
	}
	stdout, _, err := runCLI(t, "cache", "dir", dir)
	if err != nil {
		t.Fatalf("cache dir: %v", err)
	}
	if strings.TrimSpace(stdout) != filepath.Join(dir, "cache") {
		t.Fatalf("cache dir = %q", stdout)
	}
	stdout, _, err = runCLI(t, "cache", "clean", dir)
	if err != nil {
		t.Fatalf("cache clean: %v", err)
	}
	if !strings.Contains(stdout, "removed 1 cached fixtures") {
		t.Fatalf("clean output = %q", stdout)
	}
}
