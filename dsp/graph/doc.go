// Package graph implements a real-time audio effect routing engine: a
// mutable directed acyclic graph of processing nodes, a compiler that turns
// a mutated graph into an immutable execution schedule, and an executor that
// runs that schedule against stereo audio blocks with zero allocation.
//
// The graph is mutated on a control thread (add/remove nodes and edges,
// connect/disconnect, bypass toggles). Compile produces a Schedule, an
// immutable snapshot that is handed to the audio thread through a single
// atomic pointer swap. The audio thread never allocates, never blocks, and
// never touches the mutable Graph directly.
package graph
