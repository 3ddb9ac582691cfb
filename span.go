package timegraph

import (
	"context"
	"time"
)

// currentSpanKeyType is a private type for context keys to avoid collisions.
type currentSpanKeyType struct{}

var currentSpanKey currentSpanKeyType

// Span records a single execution of the code associated with a CallSite.
// A Span is a plain value with no side effects of its own; measurement
// starts when it is entered and ends when the returned guard exits.
type Span struct {
	callsite *CallSite
}

// NewSpan creates a Span associated with the given call site.
func NewSpan(callsite *CallSite) Span {
	return Span{callsite: callsite}
}

// Enter starts the span. The returned context carries this span's call site
// as the current one, so spans entered with it become children of this span.
// The guard must be exited on every path out of the instrumented block,
// normally with defer.
//
// When collection is disabled this is the fast path: the context is
// returned unchanged together with an inert guard, and the only shared
// state touched is a single atomic flag load.
func (s Span) Enter(ctx context.Context) (context.Context, *SpanGuard) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !collectionEnabled.Load() {
		return ctx, &SpanGuard{span: s}
	}

	parent := CurrentCallSiteID(ctx)
	ctx = context.WithValue(ctx, currentSpanKey, s.callsite.id)

	return ctx, &SpanGuard{
		span:    s,
		parent:  parent,
		start:   clock.Now(),
		started: true,
	}
}

// SpanGuard marks the extent of one span execution. Exiting the guard saves
// the execution time of the corresponding span in the global call graph.
type SpanGuard struct {
	span    Span
	parent  CallSiteID
	start   time.Time
	started bool
	done    bool
}

// Exit ends the span and merges its measurement into the global call graph.
// Safe to call more than once; only the first call has an effect.
//
// Whether the measurement is recorded depends on whether Enter captured a
// start time, not on the collection flag at exit time: a span that started
// while collection was enabled is accounted for even if collection was
// turned off while it ran.
func (g *SpanGuard) Exit() {
	if g.done {
		return
	}
	g.done = true

	if !g.started {
		return
	}

	elapsed := clock.Now().Sub(g.start)
	if elapsed < 0 {
		// Clock anomaly. Never push negative time into the aggregates.
		elapsed = 0
	}

	id := g.span.callsite.id
	callGraph.record(id, g.parent, elapsed)

	notifySpanComplete(SpanRecord{
		Callsite: g.span.callsite,
		Parent:   g.parent,
		Elapsed:  elapsed,
	})
}

// CurrentCallSiteID returns the id of the call site of the span currently
// executing in ctx, or zero when there is none. New spans entered with ctx
// become children of that call site.
func CurrentCallSiteID(ctx context.Context) CallSiteID {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(currentSpanKey).(CallSiteID); ok {
		return id
	}
	return 0
}
