package timegraph

import (
	"sync"
	"sync/atomic"
	"time"
)

// SpanRecord describes one completed span measurement as delivered to
// completion handlers. The measurement has already been merged into the
// global call graph when handlers run.
type SpanRecord struct {
	// Callsite of the span that completed.
	Callsite *CallSite
	// Parent is the call site that was active when the span was entered,
	// or zero for a root span.
	Parent CallSiteID
	// Elapsed is the measured duration of this execution.
	Elapsed time.Duration
}

// SpanHandler is called when a span completes.
type SpanHandler func(SpanRecord)

type handlerEntry struct {
	handler SpanHandler
	id      uint64
}

var (
	handlersLock  sync.RWMutex
	handlers      []handlerEntry
	panicHook     func(handlerID uint64, r any)
	nextHandlerID atomic.Uint64
)

// OnSpanComplete registers a handler called synchronously after each span
// exit, outside the graph's critical section. Returns an id usable with
// RemoveHandler; a nil handler is ignored and returns 0.
func OnSpanComplete(handler SpanHandler) uint64 {
	if handler == nil {
		return 0
	}

	id := nextHandlerID.Add(1)

	handlersLock.Lock()
	defer handlersLock.Unlock()

	handlers = append(handlers, handlerEntry{id: id, handler: handler})
	return id
}

// RemoveHandler removes a handler by id. Removing an unknown id is a no-op.
func RemoveHandler(id uint64) {
	handlersLock.Lock()
	defer handlersLock.Unlock()

	// Preserve registration order.
	for i, h := range handlers {
		if h.id == id {
			copy(handlers[i:], handlers[i+1:])
			handlers = handlers[:len(handlers)-1]
			return
		}
	}
}

// SetPanicHook sets a function called when a handler panics. The panic is
// contained either way; the hook only makes it observable.
func SetPanicHook(hook func(handlerID uint64, r any)) {
	handlersLock.Lock()
	defer handlersLock.Unlock()
	panicHook = hook
}

// notifySpanComplete calls all registered handlers with the completed span.
func notifySpanComplete(record SpanRecord) {
	handlersLock.RLock()
	if len(handlers) == 0 {
		handlersLock.RUnlock()
		return
	}
	snapshot := make([]handlerEntry, len(handlers))
	copy(snapshot, handlers)
	handlersLock.RUnlock()

	for _, h := range snapshot {
		safeCall(h, record)
	}
}

func safeCall(entry handlerEntry, record SpanRecord) {
	defer func() {
		if r := recover(); r != nil {
			handlersLock.RLock()
			hook := panicHook
			handlersLock.RUnlock()

			if hook != nil {
				hook(entry.id, r)
			}
		}
	}()
	entry.handler(record)
}
