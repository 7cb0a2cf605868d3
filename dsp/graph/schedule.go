package graph

// Schedule is the immutable result of a successful Compile. It is handed to
// the audio thread through a single atomic pointer swap (Graph.active) and
// never mutated after installation; Compile always builds a fresh one.
type Schedule struct {
	steps []step

	numBuffers int
	pool       *bufferPool
	delays     []*delayLine

	inputNode  NodeID
	outputNode NodeID

	blockSize int

	// TotalLatency is the Output node's cumulative latency in samples, the
	// sum of every Effect's LatencySamples() along the path that reaches
	// Output (all paths are equalized to this value by delay compensation
	// at Merge nodes).
	TotalLatency int
}

// NumBuffers reports how many physical virtual-buffer slots this schedule's
// steps reference, after liveness-based reuse.
func (s *Schedule) NumBuffers() int { return s.numBuffers }

// StepCount reports how many steps the schedule's program contains.
func (s *Schedule) StepCount() int { return len(s.steps) }
