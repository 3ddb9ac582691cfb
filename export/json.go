package export

import (
	json "github.com/goccy/go-json"

	"github.com/zoobzio/timegraph"
)

type jsonSpan struct {
	ID      int    `json:"id"`
	Elapsed string `json:"elapsed"`
	Called  uint64 `json:"called"`
}

type jsonCall struct {
	Caller int    `json:"caller"`
	Callee int    `json:"callee"`
	Count  uint64 `json:"count"`
}

type jsonGraph struct {
	Timings map[string]jsonSpan `json:"timings"`
	Calls   []jsonCall          `json:"calls"`
}

// JSON renders the graph as a JSON document with per-span timings keyed by
// qualified span name and the list of caller/callee edges.
func JSON(graph *timegraph.FullCallGraph) ([]byte, error) {
	out := jsonGraph{
		Timings: make(map[string]jsonSpan),
		Calls:   make([]jsonCall, 0),
	}

	for _, span := range graph.Spans() {
		out.Timings[span.Callsite.FullName()] = jsonSpan{
			ID:      span.ID,
			Elapsed: span.Elapsed.String(),
			Called:  span.Called,
		}
	}

	for _, call := range graph.Calls() {
		out.Calls = append(out.Calls, jsonCall{
			Caller: call.Caller,
			Callee: call.Callee,
			Count:  call.Count,
		})
	}

	return json.Marshal(out)
}
