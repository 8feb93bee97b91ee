package trace

import "context"

type ctxKey struct{}

// ctxState travels in a context: the tracer and the innermost open span.
type ctxState struct {
	tracer Tracer
	span   uint64
}

func stateOf(ctx context.Context) ctxState {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(ctxState); ok {
			return st
		}
	}
	return ctxState{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx. The enclosing span, if any, is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	st := stateOf(ctx)
	st.tracer = t
	return context.WithValue(ctx, ctxKey{}, st)
}

// WithSpan makes s the parent of spans begun from the returned context.
func WithSpan(ctx context.Context, s *Span) context.Context {
	st := stateOf(ctx)
	st.span = s.ID()
	return context.WithValue(ctx, ctxKey{}, st)
}

// ParentID is the id of the span attached by WithSpan, or 0.
func ParentID(ctx context.Context) uint64 {
	return stateOf(ctx).span
}
