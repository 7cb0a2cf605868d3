package graph

// stepOp tags which operation a step performs. Steps are a flat, ordered
// program the executor walks once per block; there is no branching and no
// per-step allocation.
type stepOp int

const (
	// opWriteInput copies the caller-supplied input block into a virtual
	// buffer slot.
	opWriteInput stepOp = iota
	// opProcessEffect runs an Effect node's input buffer through its
	// wrapped Effect into its output buffer, applying the node's bypass
	// crossfade.
	opProcessEffect
	// opSplitCopy fans a single source buffer out to up to MaxSplitTargets
	// destination buffers, unmodified.
	opSplitCopy
	// opClearBuffer zeroes a destination buffer before a merge accumulates
	// into it.
	opClearBuffer
	// opAccumulateBuffer adds a source buffer, scaled by gain, into a
	// destination buffer. Used to implement Merge's 1/N summing.
	opAccumulateBuffer
	// opDelayCompensate runs a buffer through a fixed-length compensation
	// delay line in place, to align a Merge input's latency with the
	// slowest incoming path.
	opDelayCompensate
	// opReadOutput copies a virtual buffer into the caller-supplied output
	// block.
	opReadOutput
)

// step is one instruction in a compiled Schedule. Only the fields relevant
// to op are meaningful; the struct is a flat tagged union rather than an
// interface so the executor never allocates or performs an interface
// dispatch to walk the schedule.
type step struct {
	op   stepOp
	node NodeID // opProcessEffect: originating node, for diagnostics only

	src int // source buffer index (virtual at emission, physical after allocateBuffers)
	dst int // destination buffer index, same convention

	splitDst   [MaxSplitTargets]int
	splitCount int

	delayIdx int // index into Schedule.delays

	gain float32 // opAccumulateBuffer: per-input merge gain (1/N)

	// opProcessEffect carries the Effect instance and bypass state
	// directly rather than a NodeID to resolve against the live Graph:
	// a Schedule must stay valid and self-contained even after the node
	// that produced it has been removed or reconfigured, since a
	// superseded schedule can still be running mid-crossfade.
	effect  Effect
	bypass  *bypassState
}
