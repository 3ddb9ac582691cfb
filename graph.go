package timegraph

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// clock provides the timestamps used to measure spans. Durations are
// computed from the monotonic reading, so wall clock corrections do not
// affect measurements. Tests swap in a fake clock.
var clock clockz.Clock = clockz.RealClock

// collectionEnabled gates all measurement. This flag is the only state the
// span enter/exit fast paths read without taking a lock.
var collectionEnabled atomic.Bool

// callGraph is the process-wide accumulator for span measurements.
var callGraph = newLightCallGraph()

// lightGraphNode aggregates the measurements of one call site.
type lightGraphNode struct {
	callsite CallSiteID
	elapsed  time.Duration
	called   uint64
}

// edgeKey identifies a caller/callee pair. Caller and callee may be the
// same call site: recursion produces a self loop.
type edgeKey struct {
	caller CallSiteID
	callee CallSiteID
}

type lightGraphEdge struct {
	key   edgeKey
	count uint64
}

// lightCallGraph aggregates timings and call counts across all goroutines,
// identifying call sites only by their CallSiteID. Nodes carry cumulative
// elapsed time and call counts, edges count how many times one call site
// entered another.
//
// All mutation happens under mu. One span exit is a single critical
// section: node lookup, creation and increment are never split across
// separate lock acquisitions.
type lightCallGraph struct {
	mu        sync.Mutex
	nodes     []lightGraphNode
	nodeIndex map[CallSiteID]int
	edges     []lightGraphEdge
	edgeIndex map[edgeKey]int
}

func newLightCallGraph() *lightCallGraph {
	return &lightCallGraph{
		nodeIndex: make(map[CallSiteID]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// addNode ensures a node exists for the given call site. Nodes keep their
// insertion order; snapshots use that order for their local ids.
// mu must be held.
func (g *lightCallGraph) addNode(id CallSiteID) {
	if _, ok := g.nodeIndex[id]; ok {
		return
	}
	g.nodeIndex[id] = len(g.nodes)
	g.nodes = append(g.nodes, lightGraphNode{callsite: id})
}

// increaseTiming adds elapsed to the node's total time and bumps its call
// count by one. The node must already exist. mu must be held.
func (g *lightCallGraph) increaseTiming(id CallSiteID, elapsed time.Duration) {
	i, ok := g.nodeIndex[id]
	if !ok {
		panic(fmt.Sprintf("timegraph: missing call graph node for call site %d", id))
	}
	g.nodes[i].elapsed += elapsed
	g.nodes[i].called++
}

// increaseCallCount bumps the number of times caller entered callee by one.
// Both nodes must already exist. mu must be held.
func (g *lightCallGraph) increaseCallCount(caller, callee CallSiteID) {
	if _, ok := g.nodeIndex[caller]; !ok {
		panic(fmt.Sprintf("timegraph: missing call graph node for caller %d", caller))
	}
	if _, ok := g.nodeIndex[callee]; !ok {
		panic(fmt.Sprintf("timegraph: missing call graph node for callee %d", callee))
	}

	key := edgeKey{caller: caller, callee: callee}
	if i, ok := g.edgeIndex[key]; ok {
		g.edges[i].count++
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, lightGraphEdge{key: key, count: 1})
}

// record merges one finished span into the graph. parent is zero when the
// span had no parent on its goroutine.
func (g *lightCallGraph) record(callsite, parent CallSiteID, elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNode(callsite)
	g.increaseTiming(callsite, elapsed)

	if parent != 0 {
		g.addNode(parent)
		g.increaseCallCount(parent, callsite)
	}
}

// reset drops all nodes and edges.
func (g *lightCallGraph) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = g.nodes[:0]
	g.edges = g.edges[:0]
	g.nodeIndex = make(map[CallSiteID]int)
	g.edgeIndex = make(map[edgeKey]int)
}

// EnableCollection turns data collection on or off. Toggling only publishes
// a flag and never touches the graph lock; other goroutines observe the
// change promptly but without a strict synchronization point. A span keeps
// the decision made when it was entered: disabling collection mid-span does
// not drop its measurement, and enabling it mid-span does not create one.
func EnableCollection(enabled bool) {
	collectionEnabled.Store(enabled)
}

// CollectionEnabled reports whether data collection is currently enabled.
func CollectionEnabled() bool {
	return collectionEnabled.Load()
}

// ClearCollectedData resets the global call graph as if nothing had been
// recorded. Registered call sites are kept. Idempotent.
func ClearCollectedData() {
	callGraph.reset()
}
