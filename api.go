// Package timegraph provides always-on call graph profiling: it records the
// execution time of functions and code blocks, how many times each one ran,
// and the full caller/callee graph between them, at run-time and with
// minimal overhead while collection is disabled.
//
// Core Components:.
//   - CallSite: identifies one static source location, registered once.
//   - Span / SpanGuard: measures a single execution of a call site.
//   - Call graph accumulator: merges timings and call edges from all
//     goroutines into one shared structure.
//   - FullCallGraph: an immutable snapshot of the accumulated graph joined
//     with call site metadata.
//
// Basic Usage:.
//
//	timegraph.EnableCollection(true)
//
//	timegraph.WithSpan(ctx, "compute", func(ctx context.Context) {
//		// nested WithSpan calls become children of "compute".
//	})
//
//	graph := timegraph.FullGraph()
//	for _, span := range graph.Spans() {
//		fmt.Println(span)
//	}
//
// Functions that want explicit control over the call site can construct
// one and enter spans by hand:
//
//	var site = timegraph.NewCallSite("compute", "mypkg", "mypkg/compute.go", 42)
//
//	func init() { timegraph.RegisterCallSite(site) }
//
//	func compute(ctx context.Context) {
//		ctx, guard := timegraph.NewSpan(site).Enter(ctx)
//		defer guard.Exit()
//		// ...
//	}
//
// Thread Safety:.
//
// All package-level state is safe for concurrent use: call sites register
// through a lock-free append-only list, the accumulator serializes its
// mutations behind one mutex, and the collection flag is a single atomic.
// The current span is carried by context.Context, so each goroutine's call
// chain keeps its own nesting; contexts must not be shared across
// concurrently running goroutines that both enter spans, which is the usual
// context discipline anyway.
//
// Overhead:.
//
// With collection disabled, entering a span costs one atomic flag load.
// With collection enabled, every span exit takes the shared graph lock for
// a handful of map operations. This makes the package useful for profiling
// code taking at least a microsecond or so per call.
//
// Collection Control:.
//
// No data is collected until EnableCollection(true) is called. Collected
// data survives disabling collection and is only dropped by
// ClearCollectedData. Snapshots taken with FullGraph are independent copies
// and can be rendered with the export subpackage.
package timegraph
