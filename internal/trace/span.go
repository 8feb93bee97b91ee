package trace

import "time"

// Span is an open interval of work. Spans on a disabled tracer, or filtered
// out by level, are inert: every method is a no-op and ID is 0.
type Span struct {
	tracer  Tracer
	begin   Event // копия begin-события, из неё строится end
	started time.Time
	extra   map[string]string
}

// Begin emits a begin event and returns the span. parent is 0 for roots.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	ev := newEvent(KindSpanBegin, scope, name)
	ev.SpanID = spanCounter.Add(1)
	ev.ParentID = parent
	t.Emit(ev)
	return &Span{tracer: t, begin: *ev, started: ev.Time}
}

// End emits the end event, carrying detail and the accumulated extras, and
// returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	ev := newEvent(KindSpanEnd, s.begin.Scope, s.begin.Name)
	ev.SpanID = s.begin.SpanID
	ev.ParentID = s.begin.ParentID
	ev.GID = s.begin.GID
	ev.Detail = detail
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return ev.Time.Sub(s.started)
}

// WithExtra records key=value for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event under parent. extra holds alternating keys
// and values.
func Point(t Tracer, scope Scope, name, detail string, parent uint64, extra ...string) {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return
	}
	ev := newEvent(KindPoint, scope, name)
	ev.ParentID = parent
	ev.Detail = detail
	ev.Extra = pairs(extra)
	t.Emit(ev)
}
