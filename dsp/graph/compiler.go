package graph

// Compile validates the graph, computes a topological execution order and
// per-node latency, emits a schedule in virtual-buffer space (inlining
// delay compensation at Merge nodes), then runs a greedy liveness-based
// allocation to assign physical buffer slots, and finally installs the
// resulting Schedule via a single atomic pointer swap. If a previous
// schedule was installed, Compile arms a short crossfade between the two so
// the swap doesn't click.
//
// Compile never mutates the Graph's nodes or edges; it only reads them. It
// is the only exported operation that allocates on what could be a hot
// path, so callers should compile on a control thread, never from inside
// ProcessBlock.
func Compile(g *Graph) (*Schedule, error) {
	input, output, err := g.validateIO()
	if err != nil {
		return nil, newCompileError(err)
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, newCompileError(err)
	}

	latency, err := g.computeLatency(order)
	if err != nil {
		return nil, newCompileError(err)
	}

	steps, numVirtual, delaySpecs, err := g.emitSchedule(order, latency)
	if err != nil {
		return nil, newCompileError(err)
	}

	steps, numPhysical := allocateBuffers(steps, numVirtual)

	pool := newBufferPool(g.blockSize)
	pool.ensure(numPhysical)

	delays := make([]*delayLine, len(delaySpecs))
	for i, d := range delaySpecs {
		delays[i] = newDelayLine(d)
	}

	sched := &Schedule{
		steps:        steps,
		numBuffers:   numPhysical,
		pool:         pool,
		delays:       delays,
		inputNode:    input,
		outputNode:   output,
		blockSize:    g.blockSize,
		TotalLatency: latency[output],
	}

	prev := g.active.Swap(sched)
	g.xfade.resize(g.blockSize)
	if prev != nil {
		g.xfade.arm(g.lastOutput)
	}
	return sched, nil
}

// validateIO confirms the graph has exactly one active Input and one active
// Output node and at least one active node overall.
func (g *Graph) validateIO() (input, output NodeID, err error) {
	input, output = invalidNodeID, invalidNodeID
	countIn, countOut := 0, 0
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.vacant {
			continue
		}
		switch n.kind {
		case KindInput:
			countIn++
			input = n.id
		case KindOutput:
			countOut++
			output = n.id
		}
	}
	if g.activeNodeCount() == 0 {
		return invalidNodeID, invalidNodeID, ErrEmptyGraph
	}
	if countIn != 1 {
		return invalidNodeID, invalidNodeID, ErrInvalidInputCount
	}
	if countOut != 1 {
		return invalidNodeID, invalidNodeID, ErrInvalidOutputCount
	}
	return input, output, nil
}

// topoSort produces a topological order over the active nodes using Kahn's
// algorithm. The primary cycle guard runs at Connect time via DFS
// reachability; this is a defensive second check that catches any cycle
// that guard might somehow have missed.
func (g *Graph) topoSort() ([]NodeID, error) {
	indeg := make(map[NodeID]int, len(g.nodes))
	active := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.vacant {
			continue
		}
		active = append(active, n.id)
		indeg[n.id] = len(n.in)
	}

	queue := make([]NodeID, 0, len(active))
	for _, id := range active {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]NodeID, 0, len(active))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		n, ok := g.nodeAt(id)
		if !ok {
			continue
		}
		for _, eid := range n.out {
			e, ok := g.edgeAt(eid)
			if !ok {
				continue
			}
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	if len(order) != len(active) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// computeLatency returns each active node's cumulative latency in samples:
// the max cumulative latency among its incoming edges' sources, plus its
// own contribution (0 for every node kind except Effect).
func (g *Graph) computeLatency(order []NodeID) (map[NodeID]int, error) {
	latency := make(map[NodeID]int, len(order))
	for _, id := range order {
		n, ok := g.nodeAt(id)
		if !ok {
			continue
		}
		maxIn := 0
		for _, eid := range n.in {
			e, ok := g.edgeAt(eid)
			if !ok {
				continue
			}
			if v := latency[e.from]; v > maxIn {
				maxIn = v
			}
		}
		own := 0
		if n.kind == KindEffect && n.effect != nil {
			own = n.effect.LatencySamples()
		}
		latency[id] = maxIn + own
	}
	return latency, nil
}

// emitSchedule walks the topological order, emitting one virtual buffer
// per edge and a program of steps referencing those virtual indices. Merge
// delay compensation is inlined here, before any physical buffer
// assignment, since deciding it after could alias two unrelated signals
// onto what liveness analysis thinks is a dead buffer.
func (g *Graph) emitSchedule(order []NodeID, latency map[NodeID]int) ([]step, int, []int, error) {
	vbuf := make(map[EdgeID]int, len(g.edges))
	nextVirtual := 0
	virtualFor := func(eid EdgeID) int {
		if v, ok := vbuf[eid]; ok {
			return v
		}
		v := nextVirtual
		nextVirtual++
		vbuf[eid] = v
		return v
	}

	var steps []step
	var delaySpecs []int

	for _, id := range order {
		n, ok := g.nodeAt(id)
		if !ok {
			continue
		}

		switch n.kind {
		case KindInput:
			for _, eid := range n.out {
				e, ok := g.edgeAt(eid)
				if !ok {
					continue
				}
				steps = append(steps, step{op: opWriteInput, dst: virtualFor(e.id)})
			}

		case KindOutput:
			if len(n.in) != 1 {
				return nil, 0, nil, ErrDanglingNode
			}
			e, ok := g.edgeAt(n.in[0])
			if !ok {
				return nil, 0, nil, ErrDanglingNode
			}
			steps = append(steps, step{op: opReadOutput, src: virtualFor(e.id)})

		case KindEffect:
			if len(n.in) != 1 || len(n.out) != 1 {
				return nil, 0, nil, ErrDanglingNode
			}
			inEdge, ok := g.edgeAt(n.in[0])
			if !ok {
				return nil, 0, nil, ErrDanglingNode
			}
			outEdge, ok := g.edgeAt(n.out[0])
			if !ok {
				return nil, 0, nil, ErrDanglingNode
			}
			steps = append(steps, step{
				op:     opProcessEffect,
				node:   id,
				src:    virtualFor(inEdge.id),
				dst:    virtualFor(outEdge.id),
				effect: n.effect,
				bypass: n.bypass,
			})

		case KindSplit:
			if len(n.in) != 1 || len(n.out) == 0 {
				return nil, 0, nil, ErrDanglingNode
			}
			inEdge, ok := g.edgeAt(n.in[0])
			if !ok {
				return nil, 0, nil, ErrDanglingNode
			}
			s := step{op: opSplitCopy, src: virtualFor(inEdge.id)}
			for _, eid := range n.out {
				e, ok := g.edgeAt(eid)
				if !ok {
					continue
				}
				s.splitDst[s.splitCount] = virtualFor(e.id)
				s.splitCount++
			}
			steps = append(steps, s)

		case KindMerge:
			if len(n.in) == 0 || len(n.out) != 1 {
				return nil, 0, nil, ErrDanglingNode
			}
			outEdge, ok := g.edgeAt(n.out[0])
			if !ok {
				return nil, 0, nil, ErrDanglingNode
			}
			dst := virtualFor(outEdge.id)
			steps = append(steps, step{op: opClearBuffer, dst: dst})

			maxIn := 0
			for _, eid := range n.in {
				e, ok := g.edgeAt(eid)
				if !ok {
					continue
				}
				if v := latency[e.from]; v > maxIn {
					maxIn = v
				}
			}

			gain := float32(1.0 / float64(len(n.in)))
			for _, eid := range n.in {
				e, ok := g.edgeAt(eid)
				if !ok {
					continue
				}
				v := virtualFor(e.id)
				gap := maxIn - latency[e.from]
				if gap > 0 {
					idx := len(delaySpecs)
					delaySpecs = append(delaySpecs, gap)
					steps = append(steps, step{op: opDelayCompensate, src: v, delayIdx: idx})
				}
				steps = append(steps, step{op: opAccumulateBuffer, src: v, dst: dst, gain: gain})
			}
		}
	}

	return steps, nextVirtual, delaySpecs, nil
}

// bufLifetime tracks a virtual buffer's first and last referenced step
// index, the interval a physical slot must stay reserved for it.
type bufLifetime struct {
	v     int
	first int
	last  int
}

// stepRefs invokes visit once per virtual-buffer index a step references,
// in the order they're read or written. Shared by lifetime analysis and
// physical-index remapping so the two can never drift apart.
func stepRefs(s step, visit func(v int)) {
	switch s.op {
	case opWriteInput:
		visit(s.dst)
	case opReadOutput:
		visit(s.src)
	case opClearBuffer:
		visit(s.dst)
	case opProcessEffect, opAccumulateBuffer:
		visit(s.src)
		visit(s.dst)
	case opDelayCompensate:
		visit(s.src)
	case opSplitCopy:
		visit(s.src)
		for i := 0; i < s.splitCount; i++ {
			visit(s.splitDst[i])
		}
	}
}

func remapStep(s *step, physicalOf []int) {
	switch s.op {
	case opWriteInput:
		s.dst = physicalOf[s.dst]
	case opReadOutput:
		s.src = physicalOf[s.src]
	case opClearBuffer:
		s.dst = physicalOf[s.dst]
	case opProcessEffect, opAccumulateBuffer:
		s.src = physicalOf[s.src]
		s.dst = physicalOf[s.dst]
	case opDelayCompensate:
		s.src = physicalOf[s.src]
	case opSplitCopy:
		s.src = physicalOf[s.src]
		for i := 0; i < s.splitCount; i++ {
			s.splitDst[i] = physicalOf[s.splitDst[i]]
		}
	}
}

// allocateBuffers assigns each virtual buffer a physical slot via greedy
// liveness-based reuse: sort by first reference, and hand out the first
// released physical slot (in release order) whose previous occupant's last
// reference has already passed, allocating a new one only when none is free. This is
// the same shape as a compiler's linear-scan register allocator applied to
// audio buffers instead of registers.
func allocateBuffers(steps []step, numVirtual int) ([]step, int) {
	if numVirtual == 0 {
		return steps, 0
	}

	lifetimes := make([]bufLifetime, numVirtual)
	for v := range lifetimes {
		lifetimes[v] = bufLifetime{v: v, first: -1, last: -1}
	}
	for idx, s := range steps {
		stepRefs(s, func(v int) {
			if lifetimes[v].first == -1 {
				lifetimes[v].first = idx
			}
			lifetimes[v].last = idx
		})
	}

	order := make([]int, numVirtual)
	for i := range order {
		order[i] = i
	}
	sortByFirst(order, lifetimes)

	type freeSlot struct {
		phys   int
		freeAt int
	}
	var free []freeSlot
	physicalOf := make([]int, numVirtual)
	nextPhys := 0

	for _, v := range order {
		bl := lifetimes[v]
		reuse := -1
		for i, fs := range free {
			if fs.freeAt < bl.first {
				reuse = i
				break
			}
		}
		var phys int
		if reuse >= 0 {
			phys = free[reuse].phys
			free = append(free[:reuse], free[reuse+1:]...)
		} else {
			phys = nextPhys
			nextPhys++
		}
		physicalOf[v] = phys
		free = append(free, freeSlot{phys: phys, freeAt: bl.last})
	}

	for i := range steps {
		remapStep(&steps[i], physicalOf)
	}
	return steps, nextPhys
}

// sortByFirst sorts virtual-buffer indices ascending by first reference,
// using a plain insertion sort: schedules are small (bounded by node and
// edge count in one engine instance), so asymptotic cost doesn't matter and
// a dependency-free sort keeps this file self-contained.
func sortByFirst(order []int, lifetimes []bufLifetime) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && lifetimes[order[j-1]].first > lifetimes[order[j]].first; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
}
