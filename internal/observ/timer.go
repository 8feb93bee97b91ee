package observ

import (
	"fmt"
	"io"
	"time"
)

// Timer records the phases of one run or one file. It is not safe for
// concurrent use; each worker keeps its own.
type Timer struct {
	now    func() time.Time
	phases []phase
}

type phase struct {
	name       string
	note       string
	start, end time.Time
	ended      bool
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Begin opens a phase and returns the handle End takes.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, phase{name: name, start: t.now()})
	return len(t.phases) - 1
}

// End closes phase idx with an optional note. Unknown handles and phases
// that are already closed are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].ended {
		return
	}
	p := &t.phases[idx]
	p.end, p.note, p.ended = t.now(), note, true
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serialisable view of a Timer. TotalMS is the sum of the
// phases, which for merged reports need not equal wall time.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the closed phases. A phase still open counts as zero.
func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		var d time.Duration
		if p.ended {
			d = p.end.Sub(p.start)
		}
		ms := millis(d)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
		r.TotalMS += ms
	}
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Merge appends the phases of other with prefix on their names. other is
// not modified.
func (r *Report) Merge(prefix string, other Report) {
	for _, p := range other.Phases {
		p.Name = prefix + p.Name
		r.Phases = append(r.Phases, p)
	}
}

// WriteText prints one line per phase and a total line, names padded to
// width.
func (r Report) WriteText(w io.Writer, width int) {
	fmt.Fprintln(w, "timings:")
	for _, p := range r.Phases {
		fmt.Fprintf(w, "  %-*s %8.2f ms", width, p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-*s %8.2f ms\n", width, "total", r.TotalMS)
}
