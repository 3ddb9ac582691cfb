// Package export renders timegraph snapshots into human or machine
// readable formats.
//
// Every renderer consumes only the public snapshot surface (Spans and
// Calls of a FullCallGraph), never the live accumulator, so formats can be
// added or swapped without touching the profiling core. The exact output
// of each format is unstable and should not be relied on.
package export
