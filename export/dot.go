package export

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/zoobzio/timegraph"
)

// DOT renders the graph in graphviz dot format. Nodes are labeled with the
// qualified span name and its aggregates, edges with their call count.
func DOT(graph *timegraph.FullCallGraph) string {
	g := dot.NewGraph(dot.Directed)

	nodes := make(map[int]dot.Node)
	for _, span := range graph.Spans() {
		label := fmt.Sprintf(
			"%s\ncalled %d times, total %v",
			span.Callsite.FullName(), span.Called, span.Elapsed,
		)
		nodes[span.ID] = g.Node(fmt.Sprintf("%d", span.ID)).
			Label(label).
			Attr("shape", "box")
	}

	for _, call := range graph.Calls() {
		g.Edge(nodes[call.Caller], nodes[call.Callee]).
			Label(fmt.Sprintf("%d", call.Count))
	}

	return g.String()
}
