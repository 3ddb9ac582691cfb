package export

import (
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/zoobzio/timegraph"
)

// buildGraph records a small known call graph: parent calls child twice.
func buildGraph(t *testing.T) *timegraph.FullCallGraph {
	t.Helper()

	timegraph.ClearCollectedData()
	timegraph.EnableCollection(true)
	t.Cleanup(func() {
		timegraph.EnableCollection(false)
		timegraph.ClearCollectedData()
	})

	parent := timegraph.NewCallSite("exp-parent", "export_test", "export_test.go", 1)
	child := timegraph.NewCallSite("exp-child", "export_test", "export_test.go", 2)
	timegraph.RegisterCallSite(parent)
	timegraph.RegisterCallSite(child)

	ctx, outer := timegraph.NewSpan(parent).Enter(context.Background())
	for i := 0; i < 2; i++ {
		_, inner := timegraph.NewSpan(child).Enter(ctx)
		time.Sleep(time.Millisecond)
		inner.Exit()
	}
	outer.Exit()

	return timegraph.FullGraph()
}

func TestJSON(t *testing.T) {
	out, err := JSON(buildGraph(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Timings map[string]struct {
			ID      int    `json:"id"`
			Elapsed string `json:"elapsed"`
			Called  uint64 `json:"called"`
		} `json:"timings"`
		Calls []struct {
			Caller int    `json:"caller"`
			Callee int    `json:"callee"`
			Count  uint64 `json:"count"`
		} `json:"calls"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded.Timings) != 2 {
		t.Fatalf("expected 2 timing entries, got %d", len(decoded.Timings))
	}

	parent, ok := decoded.Timings["export_test::exp-parent"]
	if !ok {
		t.Fatal("expected the parent span keyed by its full name")
	}
	child, ok := decoded.Timings["export_test::exp-child"]
	if !ok {
		t.Fatal("expected the child span keyed by its full name")
	}
	if parent.Called != 1 || child.Called != 2 {
		t.Errorf("expected called 1 and 2, got %d and %d", parent.Called, child.Called)
	}
	if child.Elapsed == "" {
		t.Error("expected a non-empty elapsed string")
	}

	if len(decoded.Calls) != 1 {
		t.Fatalf("expected 1 call entry, got %d", len(decoded.Calls))
	}
	call := decoded.Calls[0]
	if call.Count != 2 {
		t.Errorf("expected call count 2, got %d", call.Count)
	}

	// Caller and callee are the two distinct edge endpoints.
	if call.Caller != parent.ID || call.Callee != child.ID {
		t.Errorf("expected caller %d and callee %d, got %d and %d",
			parent.ID, child.ID, call.Caller, call.Callee)
	}
}

func TestJSONEmptyGraph(t *testing.T) {
	timegraph.ClearCollectedData()

	out, err := JSON(timegraph.FullGraph())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(out)
	if !strings.Contains(text, `"calls":[]`) {
		t.Errorf("expected an empty calls array, not null, got %s", text)
	}
}

func TestDOT(t *testing.T) {
	out := DOT(buildGraph(t))

	if !strings.Contains(out, "digraph") {
		t.Error("expected a digraph header")
	}
	if !strings.Contains(out, "export_test::exp-parent") {
		t.Error("expected the parent's full name in the output")
	}
	if !strings.Contains(out, "export_test::exp-child") {
		t.Error("expected the child's full name in the output")
	}
	if !strings.Contains(out, `"2"`) {
		t.Error("expected the edge call count as a label")
	}
}

func TestTable(t *testing.T) {
	out := Table(buildGraph(t))

	for _, want := range []string{
		"span name", "call count", "called by", "total", "mean",
		"export_test::exp-parent", "export_test::exp-child",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table output to contain %q", want)
		}
	}

	// Roots are marked with a dash in the called by column.
	if !strings.Contains(out, "-") {
		t.Error("expected a dash for spans without callers")
	}
}
