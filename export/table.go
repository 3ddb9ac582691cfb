package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/zoobzio/timegraph"
)

// Table renders a per-span summary of the graph as a text table, one row
// per span with its call count, the ids of the spans calling it, and total
// and mean execution times.
func Table(graph *timegraph.FullCallGraph) string {
	calledBy := make(map[int][]int)
	for _, call := range graph.Calls() {
		calledBy[call.Callee] = append(calledBy[call.Callee], call.Caller)
	}

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"id", "span name", "call count", "called by", "total", "mean"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, span := range graph.Spans() {
		callers := calledBy[span.ID]
		sort.Ints(callers)
		by := "-"
		if len(callers) > 0 {
			labels := make([]string, len(callers))
			for i, caller := range callers {
				labels[i] = strconv.Itoa(caller)
			}
			by = strings.Join(labels, ", ")
		}

		mean := time.Duration(0)
		if span.Called > 0 {
			mean = span.Elapsed / time.Duration(span.Called)
		}

		table.Append([]string{
			strconv.Itoa(span.ID),
			span.Callsite.FullName(),
			fmt.Sprintf("%d", span.Called),
			by,
			span.Elapsed.String(),
			mean.String(),
		})
	}

	table.Render()
	return buf.String()
}
