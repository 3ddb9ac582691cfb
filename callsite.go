package timegraph

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// nextCallSiteID holds the id to be assigned to the next call site created.
// The first id handed out is 1; zero always means "no call site".
var nextCallSiteID atomic.Uint64

// registryHead anchors the global registry of call sites.
var registryHead atomic.Pointer[CallSite]

// CallSiteID uniquely identifies a CallSite, attributed the first time the
// call site is created. IDs are strictly positive, never reused, and totally
// ordered; the zero value is reserved to mean "no call site".
type CallSiteID uint64

// CallSite identifies a single location in the source code and records the
// attributes associated with this location.
//
// A CallSite is immutable once constructed and lives for the rest of the
// process. It is registered at most once into the global registry, usually
// through WithSpan which handles the once-per-location bookkeeping.
type CallSite struct {
	// Unique identifier of this call site.
	id CallSiteID
	// User-provided name of the call site.
	name string
	// Import path of the package where the call site occurred.
	modulePath string
	// Source file where the call site occurred.
	file string
	// Line number in the source file where the call site occurred.
	line uint32

	// Call sites are registered using an atomic, append-only intrusive
	// linked list. If more than one call site is registered, next points to
	// the previously registered one.
	next atomic.Pointer[CallSite]
}

// NewCallSite creates a CallSite with the given metadata and assigns it a
// fresh id. The site is not published until passed to RegisterCallSite.
func NewCallSite(name, modulePath, file string, line uint32) *CallSite {
	return &CallSite{
		id:         CallSiteID(nextCallSiteID.Add(1)),
		name:       name,
		modulePath: modulePath,
		file:       file,
		line:       line,
	}
}

// ID returns the unique identifier of this call site.
func (c *CallSite) ID() CallSiteID {
	return c.id
}

// Name returns the user-provided name for this call site.
func (c *CallSite) Name() string {
	return c.name
}

// ModulePath returns the import path of the package containing this call site.
func (c *CallSite) ModulePath() string {
	return c.modulePath
}

// File returns the path of the source file containing this call site.
func (c *CallSite) File() string {
	return c.file
}

// Line returns the line of the source file containing this call site.
func (c *CallSite) Line() uint32 {
	return c.line
}

// FullName returns the qualified name of this call site, combining the
// module path and the name. Names containing spaces are wrapped in braces
// to keep the result unambiguous.
func (c *CallSite) FullName() string {
	if strings.Contains(c.name, " ") {
		return c.modulePath + "::{" + c.name + "}"
	}
	return c.modulePath + "::" + c.name
}

// RegisterCallSite publishes a call site to the global registry, making it
// visible to TraverseCallSites. Safe to call concurrently for distinct
// sites. Each site must be registered at most once: registering a site that
// is already at the head of the registry panics, since linking it to itself
// would turn every later traversal into an infinite loop.
func RegisterCallSite(callsite *CallSite) {
	head := registryHead.Load()
	for {
		// Checked before touching the link: pointing the site at itself
		// would turn every later traversal into an infinite loop.
		if callsite == head {
			panic(fmt.Sprintf(
				"timegraph: call site %q (%s:%d) is already registered, registering it again would corrupt the registry",
				callsite.name, callsite.file, callsite.line,
			))
		}

		callsite.next.Store(head)

		if registryHead.CompareAndSwap(head, callsite) {
			return
		}
		head = registryHead.Load()
	}
}

// TraverseCallSites calls fn once for every registered call site, most
// recently registered first. Safe to call while registrations are still
// happening on other goroutines; sites registered concurrently with the
// traversal may or may not be observed.
func TraverseCallSites(fn func(*CallSite)) {
	for cs := registryHead.Load(); cs != nil; cs = cs.next.Load() {
		fn(cs)
	}
}
