package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"moveflow/internal/diag"
	"moveflow/internal/mir"
	"moveflow/internal/mirtext"
	"moveflow/internal/moves"
)

const movesFixture = `type Guard = struct drop { Box<int> };

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

const syntaxFixture = `fn broken() -> int {
    bb0: {
        _0 = ;
        return;
    }
}
`

const setDiscriminantFixture = `type Opt = enum { None {}, Some { int } };

fn reset(_1: Opt) -> () {
    bb0: {
        SetDiscriminant(_1, 0);
        return;
    }
}
`

func writeFixtures(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestListFixtures(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"b.mir":        "",
		"a.mir":        "",
		"nested/c.mir": "",
		"notes.txt":    "",
	})
	files, err := ListFixtures(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.mir"),
		filepath.Join(dir, "b.mir"),
		filepath.Join(dir, "nested", "c.mir"),
	}
	if !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := writeFixtures(t, map[string]string{
		"a_moves.mir":   movesFixture,
		"b_syntax.mir":  syntaxFixture,
		"c_setdisc.mir": setDiscriminantFixture,
	})
	res, err := Analyze(context.Background(), dir, Options{MaxDiagnostics: 50, Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(res.Results))
	}

	t.Run("moves", func(t *testing.T) {
		fr := &res.Results[0]
		if !strings.HasSuffix(fr.Path, "a_moves.mir") || !fr.Loaded {
			t.Fatalf("unexpected result %s loaded=%v", fr.Path, fr.Loaded)
		}
		ok := fr.Body("ok")
		if ok == nil || ok.Data == nil || len(ok.Errors) != 0 {
			t.Fatalf("ok body: %+v", ok)
		}
		bad := fr.Body("bad")
		if bad == nil || bad.Data == nil || len(bad.Errors) != 2 {
			t.Fatalf("bad body: %+v", bad)
		}
		want := []diag.Code{diag.MoveBorrowedContent, diag.MoveInteriorOfDrop}
		if got := codes(fr.Bag); !slices.Equal(got, want) {
			t.Errorf("codes = %v, want %v", got, want)
		}
	})

	t.Run("syntax", func(t *testing.T) {
		fr := &res.Results[1]
		if !fr.Bag.HasErrors() {
			t.Fatal("expected syntax errors")
		}
		for _, d := range fr.Bag.Items() {
			if d.Code < diag.SynInfo || d.Code >= diag.ValInfo {
				t.Errorf("unexpected code %s after a syntax error", d.Code)
			}
		}
		for _, br := range fr.Bodies {
			if br.Data != nil {
				t.Errorf("body %s was gathered despite syntax errors", br.Name)
			}
		}
	})

	t.Run("validation", func(t *testing.T) {
		fr := &res.Results[2]
		if got := codes(fr.Bag); !slices.Equal(got, []diag.Code{diag.ValSetDiscriminant}) {
			t.Errorf("codes = %v", got)
		}
		br := fr.Body("reset")
		if br == nil || !br.Invalid || br.Data != nil || br.Err != nil {
			t.Errorf("reset body: %+v", br)
		}
	})

	if !res.HasErrors() {
		t.Error("HasErrors = false")
	}
	if res.Err() != nil {
		t.Errorf("no gatherer failures expected, got %v", res.Err())
	}
	all := res.Diagnostics()
	if all.Len() != 2+res.Results[1].Bag.Len()+1 {
		t.Errorf("merged bag has %d diagnostics", all.Len())
	}
	if res.Timing == nil || len(res.Timing.Phases) != 2 {
		t.Errorf("run timing = %+v", res.Timing)
	}
}

func TestAnalyzeSingleFile(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"one.mir": movesFixture, "other.mir": syntaxFixture})
	res, err := Analyze(context.Background(), filepath.Join(dir, "one.mir"), Options{MaxDiagnostics: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 1 || len(res.Results[0].Bodies) != 2 {
		t.Fatalf("results = %+v", res.Results)
	}
	if res.Files.BaseDir() != dir {
		t.Errorf("base dir = %q, want %q", res.Files.BaseDir(), dir)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	dir := t.TempDir()
	res, err := AnalyzeFiles(context.Background(), dir, []string{filepath.Join(dir, "gone.mir")}, Options{MaxDiagnostics: 10})
	if err != nil {
		t.Fatal(err)
	}
	fr := res.Results[0]
	if fr.Loaded {
		t.Error("missing file reported as loaded")
	}
	if got := codes(fr.Bag); !slices.Equal(got, []diag.Code{diag.IOLoadFileError}) {
		t.Errorf("codes = %v", got)
	}
}

func TestAnalyzeMissingTarget(t *testing.T) {
	if _, err := Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"a.mir": movesFixture})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, dir, Options{MaxDiagnostics: 10}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGatherBodyRecoversBug(t *testing.T) {
	res, err := mirtext.ParseString("setdisc.mir", setDiscriminantFixture)
	if err != nil {
		t.Fatal(err)
	}
	body := res.Module.Body("reset")
	data, errs, gerr := gatherBody(body, mir.NewTyper(res.Types), nil, 0)
	if data != nil || errs != nil {
		t.Errorf("partial results leaked: %v %v", data, errs)
	}
	var bug *moves.BugError
	if !errors.As(gerr, &bug) {
		t.Fatalf("err = %v, want *moves.BugError", gerr)
	}
	if !strings.HasPrefix(gerr.Error(), "reset: ") {
		t.Errorf("error is not prefixed with the body name: %v", gerr)
	}

	bag := diag.NewBag(10)
	reportBug(diag.BagReporter{Bag: bag}, &BodyResult{Name: "reset", Body: body, Err: gerr})
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.MoveInternalError {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	if items[0].Primary != body.SpanAt(bug.Loc) {
		t.Errorf("primary = %v, want the SetDiscriminant span", items[0].Primary)
	}
}

// explodingTypes fails every place type query with a plain panic.
type explodingTypes struct{ moves.TypeContext }

func (explodingTypes) PlaceType(*mir.Body, mir.LocalID, []mir.PlaceElem) mir.PlaceTy {
	panic("boom")
}

func TestGatherBodyRepanicsOnForeignPanic(t *testing.T) {
	res, err := mirtext.ParseString("moves.mir", movesFixture)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v, want the original panic", r)
		}
	}()
	_, _, _ = gatherBody(res.Module.Body("bad"), explodingTypes{}, nil, 0)
	t.Error("gatherBody returned")
}

func TestDiskCacheReuse(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"a.mir": movesFixture})
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{MaxDiagnostics: 10, Cache: cache}

	first, err := Analyze(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, br := range first.Results[0].Bodies {
		if br.Cached {
			t.Errorf("%s cached on a cold cache", br.Name)
		}
	}

	second, err := Analyze(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, br := range second.Results[0].Bodies {
		if !br.Cached {
			t.Errorf("%s not served from cache", br.Name)
		}
		want := first.Results[0].Bodies[i]
		if len(br.Errors) != len(want.Errors) || len(br.Data.MovePaths) != len(want.Data.MovePaths) {
			t.Errorf("%s: cached data differs", br.Name)
		}
	}
	if got, want := codes(second.Results[0].Bag), codes(first.Results[0].Bag); !slices.Equal(got, want) {
		t.Errorf("cached diagnostics %v, want %v", got, want)
	}

	if n, err := cache.Clear(); err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v; want 1 payload", n, err)
	}
	var payload DiskPayload
	key := CacheKey(second.Files.Get(second.Results[0].FileID).Hash)
	if ok, err := cache.Get(key, &payload); ok || err != nil {
		t.Errorf("after Clear: ok=%v err=%v", ok, err)
	}
}

func TestDiskCacheNilIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, &DiskPayload{}); err != nil {
		t.Error(err)
	}
	if ok, err := c.Get(Digest{}, &DiskPayload{}); ok || err != nil {
		t.Errorf("ok=%v err=%v", ok, err)
	}
	if c.Dir() != "" {
		t.Error("nil cache has a dir")
	}
	if n, err := c.Clear(); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v", n, err)
	}
}

func TestCacheKey(t *testing.T) {
	var a, b [32]byte
	b[0] = 1
	if CacheKey(a) == CacheKey(b) {
		t.Error("different content, same key")
	}
	if CacheKey(a) != CacheKey(a) {
		t.Error("key is not deterministic")
	}
	if CacheKey(a).IsZero() {
		t.Error("key is zero")
	}
}

func TestProgressEvents(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"a.mir": movesFixture, "b.mir": setDiscriminantFixture})
	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	if _, err := Analyze(context.Background(), dir, Options{MaxDiagnostics: 10, Progress: sink}); err != nil {
		t.Fatal(err)
	}

	last := map[string]Event{}
	queued := 0
	for _, ev := range events {
		if ev.Status == StatusQueued {
			queued++
		}
		last[filepath.Base(ev.File)] = ev
	}
	if queued != 2 {
		t.Errorf("queued events = %d, want 2", queued)
	}
	if ev := last["a.mir"]; ev.Status != StatusError {
		t.Errorf("a.mir ended with %s", ev.Status)
	}
	if ev := last["b.mir"]; ev.Status != StatusError || ev.Stage != StageReport {
		t.Errorf("b.mir ended with %s/%s", ev.Stage, ev.Status)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "x", Status: StatusDone})
	if ev := <-ch; ev.File != "x" {
		t.Errorf("event = %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})
}

func TestTimingsAndWarnings(t *testing.T) {
	dir := writeFixtures(t, map[string]string{"a.mir": "fn ok(_1: int) -> int {\n    bb0: {\n        _0 = copy _1;\n        return;\n    }\n}\n"})
	res, err := Analyze(context.Background(), dir, Options{MaxDiagnostics: 10, Timings: true, WarningsAsErrors: true})
	if err != nil {
		t.Fatal(err)
	}
	fr := res.Results[0]
	if fr.Bag.HasErrors() {
		t.Errorf("clean file has errors: %v", codes(fr.Bag))
	}
	if got := codes(fr.Bag); !slices.Equal(got, []diag.Code{diag.ObsTimings}) {
		t.Fatalf("codes = %v", got)
	}
	note := fr.Bag.Items()[0].Notes[0].Msg
	for _, phase := range []string{`"parse"`, `"validate"`, `"gather"`, `"report"`} {
		if !strings.Contains(note, phase) {
			t.Errorf("timing note lacks %s: %s", phase, note)
		}
	}
	if fr.Timing == nil || len(fr.Timing.Phases) != 4 {
		t.Errorf("file timing = %+v", fr.Timing)
	}
}
