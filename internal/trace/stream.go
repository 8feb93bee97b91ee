package trace

import (
	"io"
	"os"
	"sync"
)

var (
	chromeOpen  = []byte("{\"traceEvents\":[\n")
	chromeSep   = []byte(",\n")
	chromeClose = []byte("\n]}\n")
)

// StreamTracer writes every accepted event to w as it arrives. Write errors
// are ignored: a broken trace sink must not fail the run.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	wrote  bool // было ли хоть одно событие (для разделителей chrome)
	closed bool
}

// NewStreamTracer opens the chrome array right away when format is FormatChrome.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		t.write(chromeOpen)
	}
	return t
}

func (t *StreamTracer) write(p []byte) {
	_, _ = t.w.Write(p) //nolint:errcheck
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	data := FormatEvent(ev, t.format)
	if len(data) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.format == FormatChrome && t.wrote {
		t.write(chromeSep)
	}
	t.write(data)
	t.wrote = true
}

// Flush forwards to w when it buffers.
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close terminates the chrome array, flushes and closes w. Stdout and stderr
// are left open.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.format == FormatChrome {
		t.write(chromeClose)
	}
	t.mu.Unlock()

	err := t.Flush()
	if t.w == io.Writer(os.Stderr) || t.w == io.Writer(os.Stdout) {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return err
}

func (t *StreamTracer) Level() Level {
	return t.level
}

func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}

