package timegraph

import (
	"fmt"
	"time"
)

// TimedSpan contains all the data related to a single function or span
// inside the full call graph.
type TimedSpan struct {
	// ID of this span within the graph it was snapshotted from. Ids are
	// sequential and only unique within one snapshot.
	ID int
	// Callsite associated with this span.
	Callsite *CallSite
	// Elapsed is the total time spent inside this span.
	Elapsed time.Duration
	// Called is the number of times this span was entered.
	Called uint64
}

func (t TimedSpan) String() string {
	return fmt.Sprintf(
		"%s ran for %v, called %d times",
		t.Callsite.FullName(), t.Elapsed, t.Called,
	)
}

// Calls is a set of calls from one function or span to another.
type Calls struct {
	// Caller is the snapshot-local id of the outer, calling span.
	Caller int
	// Callee is the snapshot-local id of the inner, called span.
	Callee int
	// Count is the number of times the caller entered the callee.
	Count uint64
}

// FullCallGraph is an immutable, point-in-time copy of the accumulated call
// graph joined with the registered call site metadata. It is owned by the
// caller of FullGraph: later measurements or a ClearCollectedData never
// change an existing snapshot.
type FullCallGraph struct {
	spans []TimedSpan
	calls []Calls
}

// FullGraph returns a copy of the call graph as currently known. The copy
// is taken in a single critical section, so it reflects one consistent
// point in time with no partially merged span.
//
// Every measured call site must have been registered; finding one that was
// not indicates corrupted bookkeeping and panics.
func FullGraph() *FullCallGraph {
	callGraph.mu.Lock()
	defer callGraph.mu.Unlock()

	// The registry is read only after the lock is held: a goroutine that
	// registered a site and merged a measurement for it before we got the
	// lock must have its site visible to this join.
	byID := make(map[CallSiteID]*CallSite)
	TraverseCallSites(func(cs *CallSite) {
		byID[cs.id] = cs
	})

	spans := make([]TimedSpan, len(callGraph.nodes))
	for i, node := range callGraph.nodes {
		callsite, ok := byID[node.callsite]
		if !ok {
			panic(fmt.Sprintf(
				"timegraph: call site %d was measured but never registered", node.callsite,
			))
		}
		spans[i] = TimedSpan{
			ID:       i,
			Callsite: callsite,
			Elapsed:  node.elapsed,
			Called:   node.called,
		}
	}

	calls := make([]Calls, len(callGraph.edges))
	for i, edge := range callGraph.edges {
		calls[i] = Calls{
			Caller: callGraph.nodeIndex[edge.key.caller],
			Callee: callGraph.nodeIndex[edge.key.callee],
			Count:  edge.count,
		}
	}

	return &FullCallGraph{spans: spans, calls: calls}
}

// Spans returns the full list of spans known by this graph. Each call
// returns a fresh slice reflecting the snapshot's fixed contents, safe for
// the caller to modify.
func (g *FullCallGraph) Spans() []TimedSpan {
	out := make([]TimedSpan, len(g.spans))
	copy(out, g.spans)
	return out
}

// Calls returns the list of calls between spans in this graph. Caller and
// callee are snapshot-local span ids, not CallSiteIDs. Each call returns a
// fresh slice, safe for the caller to modify.
func (g *FullCallGraph) Calls() []Calls {
	out := make([]Calls, len(g.calls))
	copy(out, g.calls)
	return out
}
