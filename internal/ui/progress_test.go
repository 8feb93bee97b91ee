package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"moveflow/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("check", []string{"a.mir", "b.mir"}, events).(*progressModel)

	m.Update(eventMsg(driver.Event{File: "a.mir", Stage: driver.StageGather, Status: driver.StatusWorking}))
	m.Update(eventMsg(driver.Event{File: "b.mir", Stage: driver.StageReport, Status: driver.StatusError}))
	m.Update(eventMsg(driver.Event{File: "unknown.mir", Stage: driver.StageParse, Status: driver.StatusWorking}))

	if got := m.items[0].status; got != "gathering" {
		t.Errorf("a.mir status = %q, want gathering", got)
	}
	if got := m.items[1].status; got != "error" {
		t.Errorf("b.mir status = %q, want error", got)
	}

	view := m.View()
	for _, want := range []string{"check 1/2", "gathering", "error", "a.mir", "b.mir"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressModelRunLevelEvent(t *testing.T) {
	m := NewProgressModel("gather", []string{"a.mir"}, nil).(*progressModel)
	m.Update(eventMsg(driver.Event{Stage: driver.StageLoad, Status: driver.StatusWorking}))
	if m.stageLabel != "loading" {
		t.Errorf("stage label = %q, want loading", m.stageLabel)
	}
}

func TestProgressModelQuitsWhenDone(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("check", []string{"a.mir"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done does not quit")
	}
	if !strings.HasPrefix(stripANSI(m.View()), "done: check") {
		t.Errorf("view = %q", m.View())
	}
}

func TestProgressFromStageIsMonotonic(t *testing.T) {
	stages := []driver.Stage{driver.StageLoad, driver.StageParse, driver.StageValidate, driver.StageGather, driver.StageReport}
	prev := 0.0
	for _, s := range stages {
		got := progressFromStage(s)
		if got <= prev || got >= 1 {
			t.Errorf("%s: progress %v after %v", s, got, prev)
		}
		prev = got
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.mir", 20, "short.mir"},
		{"a/very/long/path/to/fixture.mir", 10, "a/ve..."},
		{"ширина.mir", 3, "шир"},
		{"x", 0, "x"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
