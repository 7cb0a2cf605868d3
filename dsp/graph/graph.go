package graph

import "sync/atomic"

// Graph is the mutable DAG of processing nodes and edges, plus the
// processing context (sample rate, block size) and a handle to the
// currently installed Schedule. Graph is owned by a single thread at a
// time: the control thread while mutating, or the audio thread during an
// in-callback command drain (see dsp/graph/commandqueue.go). It is never
// mutated concurrently with Compile or with itself.
type Graph struct {
	sampleRate float64
	blockSize  int

	nodes []node
	edges []edge

	inputID  NodeID
	outputID NodeID

	active atomic.Pointer[Schedule]

	xfade swapCrossfade

	// lastOutput holds the most recent block ProcessBlock produced, so a
	// Compile that swaps schedules mid-stream has something to freeze and
	// fade out of without re-invoking the superseded schedule's effects.
	lastOutput StereoBlock
}

// New creates an empty graph with no nodes or edges. The graph is not
// compilable until an Input and an Output node exist and Compile succeeds.
func New(sampleRate float64, blockSize int) *Graph {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if blockSize <= 0 {
		blockSize = 512
	}
	return &Graph{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		inputID:    invalidNodeID,
		outputID:   invalidNodeID,
		xfade:      newSwapCrossfade(sampleRate, blockSize),
		lastOutput: StereoBlock{
			L: make([]float32, blockSize),
			R: make([]float32, blockSize),
		},
	}
}

// SampleRate returns the graph's current sample rate.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// BlockSize returns the graph's current block size.
func (g *Graph) BlockSize() int { return g.blockSize }

// Schedule returns the currently installed schedule, or nil if the graph
// has never compiled successfully. Safe to call from any thread.
func (g *Graph) Schedule() *Schedule { return g.active.Load() }

// LatencySamples returns the total graph latency at the Output node, in
// samples, as of the most recent successful compile. Returns 0 if the graph
// has never compiled.
func (g *Graph) LatencySamples() int {
	s := g.active.Load()
	if s == nil {
		return 0
	}
	return s.TotalLatency
}

func (g *Graph) nodeAt(id NodeID) (*node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id].vacant {
		return nil, false
	}
	return &g.nodes[id], true
}

func (g *Graph) edgeAt(id EdgeID) (*edge, bool) {
	if id < 0 || int(id) >= len(g.edges) || g.edges[id].vacant {
		return nil, false
	}
	return &g.edges[id], true
}

// activeNodeCount returns the number of non-vacant nodes.
func (g *Graph) activeNodeCount() int {
	n := 0
	for i := range g.nodes {
		if !g.nodes[i].vacant {
			n++
		}
	}
	return n
}

func (g *Graph) allocNode(kind Kind) *node {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{id: id, kind: kind})
	return &g.nodes[id]
}

func (g *Graph) allocEdge(from, to NodeID) *edge {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edge{id: id, from: from, to: to})
	return &g.edges[id]
}

// FindEdge returns the edge ID connecting from -> to, if one exists.
func (g *Graph) FindEdge(from, to NodeID) (EdgeID, bool) {
	n, ok := g.nodeAt(from)
	if !ok {
		return invalidEdgeID, false
	}
	for _, eid := range n.out {
		e, ok := g.edgeAt(eid)
		if ok && e.to == to {
			return e.id, true
		}
	}
	return invalidEdgeID, false
}

// NodeKind returns the kind of the given node, or false if it doesn't
// exist.
func (g *Graph) NodeKind(id NodeID) (Kind, bool) {
	n, ok := g.nodeAt(id)
	if !ok {
		return 0, false
	}
	return n.kind, true
}
