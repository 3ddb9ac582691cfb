package timegraph

import (
	"context"
	"runtime"
	"strings"
	"sync"
)

// callsiteCache maps instrumentation points to their lazily created call
// site. Keyed by program counter plus name, so dynamic names used at one
// source location each get their own site.
var callsiteCache sync.Map // callsiteCacheKey -> *callsiteEntry

type callsiteCacheKey struct {
	pc   uintptr
	name string
}

type callsiteEntry struct {
	once sync.Once
	site *CallSite
}

// callsiteFor returns the registered call site for the instrumentation
// point skip+1 frames above, creating and registering it on first use.
// Concurrent first uses are safe: the sync.Once guarantees the site is
// built and registered exactly once, and every caller returns only after
// registration completed.
func callsiteFor(name string, skip int) *CallSite {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		pc, file, line = 0, "unknown", 0
	}

	value, _ := callsiteCache.LoadOrStore(callsiteCacheKey{pc: pc, name: name}, &callsiteEntry{})
	entry := value.(*callsiteEntry)

	entry.once.Do(func() {
		modulePath := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			modulePath = packagePath(fn.Name())
		}

		entry.site = NewCallSite(name, modulePath, file, uint32(line))
		RegisterCallSite(entry.site)
	})

	return entry.site
}

// packagePath extracts the import path from a runtime function name: the
// package is everything before the first dot after the final slash, so
// "github.com/user/pkg.Func.func1" becomes "github.com/user/pkg".
func packagePath(funcName string) string {
	slash := strings.LastIndex(funcName, "/")
	dot := strings.Index(funcName[slash+1:], ".")
	if dot < 0 {
		return funcName
	}
	return funcName[:slash+1+dot]
}

// WithSpan runs fn inside a span named name, attributed to the source
// location of the WithSpan call. The call site is created and registered
// once per location and name, then reused by every later call.
//
// The context passed to fn carries the span, so nested WithSpan calls (and
// manually entered spans) are recorded as its children. The span is exited
// on every path out of fn, including panics; an execution aborted by a
// panic is still measured up to the point of unwinding.
func WithSpan(ctx context.Context, name string, fn func(context.Context)) {
	span := NewSpan(callsiteFor(name, 1))
	ctx, guard := span.Enter(ctx)
	defer guard.Exit()

	fn(ctx)
}
