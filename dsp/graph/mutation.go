package graph

// AddInput creates a new Input node and returns its ID. A graph is only
// compilable with exactly one Input node; adding a second is allowed by the
// mutation API (per spec, the one-Input invariant is enforced at Compile,
// not here) but will make the next Compile fail with ErrInvalidInputCount.
func (g *Graph) AddInput() NodeID {
	n := g.allocNode(KindInput)
	g.inputID = n.id
	return n.id
}

// AddOutput creates a new Output node and returns its ID. See AddInput for
// the one-Output invariant's enforcement point.
func (g *Graph) AddOutput() NodeID {
	n := g.allocNode(KindOutput)
	g.outputID = n.id
	return n.id
}

// AddEffect creates a new Effect node wrapping instance and returns its ID.
// instance must not be nil.
func (g *Graph) AddEffect(instance Effect) NodeID {
	n := g.allocNode(KindEffect)
	n.effect = instance
	n.bypass = &bypassState{smooth: newSmoother(g.sampleRate, bypassSmoothMs)}
	n.bypass.smooth.snapTo(1)
	return n.id
}

// AddSplit creates a new Split (fan-out) node and returns its ID.
func (g *Graph) AddSplit() NodeID {
	return g.allocNode(KindSplit).id
}

// AddMerge creates a new Merge (fan-in) node and returns its ID.
func (g *Graph) AddMerge() NodeID {
	return g.allocNode(KindMerge).id
}

// RemoveNode removes the node and every edge touching it (from both
// endpoints' adjacency lists). Returns ErrNodeNotFound if id does not name
// an active node.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.nodeAt(id)
	if !ok {
		return ErrNodeNotFound
	}

	// Copy adjacency lists since disconnect mutates them in place.
	in := append([]EdgeID(nil), n.in...)
	out := append([]EdgeID(nil), n.out...)
	for _, eid := range in {
		_ = g.Disconnect(eid)
	}
	for _, eid := range out {
		_ = g.Disconnect(eid)
	}

	if g.inputID == id {
		g.inputID = invalidNodeID
	}
	if g.outputID == id {
		g.outputID = invalidNodeID
	}

	n.vacant = true
	n.effect = nil
	n.bypass = nil
	n.in = nil
	n.out = nil
	return nil
}

// Connect adds a directed edge from -> to, returning its ID. Connect fails
// with:
//   - ErrNodeNotFound if either endpoint is missing
//   - ErrDuplicateEdge if the edge already exists
//   - ErrInvalidConnection if a structural fan-in/out rule is violated
//   - ErrCycleDetected if the edge would close a cycle
//
// All failures are reported wrapped in a *ConnectError and leave the graph
// state unchanged.
func (g *Graph) Connect(from, to NodeID) (EdgeID, error) {
	fromNode, ok := g.nodeAt(from)
	if !ok {
		return invalidEdgeID, newConnectError(from, to, ErrNodeNotFound)
	}
	toNode, ok := g.nodeAt(to)
	if !ok {
		return invalidEdgeID, newConnectError(from, to, ErrNodeNotFound)
	}

	if _, exists := g.FindEdge(from, to); exists {
		return invalidEdgeID, newConnectError(from, to, ErrDuplicateEdge)
	}

	if err := g.checkStructural(fromNode, toNode); err != nil {
		return invalidEdgeID, newConnectError(from, to, err)
	}

	// Primary cycle guard: does the prospective destination already reach
	// the prospective source? If so this edge would close a cycle.
	if from == to || g.canReach(to, from) {
		return invalidEdgeID, newConnectError(from, to, ErrCycleDetected)
	}

	e := g.allocEdge(from, to)
	fromNode.out = append(fromNode.out, e.id)
	toNode.in = append(toNode.in, e.id)
	return e.id, nil
}

func (g *Graph) checkStructural(from, to *node) error {
	if to.kind == KindInput {
		return ErrInvalidConnection
	}
	if from.kind == KindOutput {
		return ErrInvalidConnection
	}
	if (to.kind == KindEffect || to.kind == KindSplit) && len(to.in) > 0 {
		return ErrInvalidConnection
	}
	if (from.kind == KindEffect || from.kind == KindMerge) && len(from.out) > 0 {
		return ErrInvalidConnection
	}
	if from.kind == KindSplit && len(from.out) >= MaxSplitTargets {
		return ErrInvalidConnection
	}
	return nil
}

// canReach reports whether there is a directed path from start to target,
// via depth-first search over outgoing edges.
func (g *Graph) canReach(start, target NodeID) bool {
	if start == target {
		return true
	}
	visited := make(map[NodeID]bool, len(g.nodes))
	stack := []NodeID{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		n, ok := g.nodeAt(cur)
		if !ok {
			continue
		}
		for _, eid := range n.out {
			e, ok := g.edgeAt(eid)
			if !ok {
				continue
			}
			if e.to == target {
				return true
			}
			if !visited[e.to] {
				stack = append(stack, e.to)
			}
		}
	}
	return false
}

// Disconnect removes an edge, detaching it from both endpoints' adjacency
// lists.
func (g *Graph) Disconnect(id EdgeID) error {
	e, ok := g.edgeAt(id)
	if !ok {
		return ErrEdgeNotFound
	}
	if from, ok := g.nodeAt(e.from); ok {
		from.out = removeEdgeID(from.out, id)
	}
	if to, ok := g.nodeAt(e.to); ok {
		to.in = removeEdgeID(to.in, id)
	}
	e.vacant = true
	return nil
}

func removeEdgeID(list []EdgeID, id EdgeID) []EdgeID {
	for i, v := range list {
		if v == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// SetBypass toggles bypass on an Effect node, arming the bypass crossfade
// smoother toward the new target. Non-effect nodes and missing nodes are a
// no-op.
func (g *Graph) SetBypass(id NodeID, on bool) {
	n, ok := g.nodeAt(id)
	if !ok || n.kind != KindEffect || n.bypass == nil {
		return
	}
	n.bypass.active = on
	if on {
		n.bypass.smooth.setTarget(0)
	} else {
		n.bypass.smooth.setTarget(1)
	}
}

// IsBypassed reports an Effect node's bypass flag. Returns false for
// non-effect or missing nodes.
func (g *Graph) IsBypassed(id NodeID) bool {
	n, ok := g.nodeAt(id)
	if !ok || n.bypass == nil {
		return false
	}
	return n.bypass.active
}

// Effect returns the Effect instance owned by an Effect node, or nil if id
// does not name an Effect node.
func (g *Graph) Effect(id NodeID) Effect {
	n, ok := g.nodeAt(id)
	if !ok || n.kind != KindEffect {
		return nil
	}
	return n.effect
}

// ExtractEffect removes the Effect instance from an Effect node, leaving a
// passthrough in its place (the node keeps its edges but no longer
// processes audio), and returns the removed instance. Returns nil if id
// does not name an Effect node or already has no instance.
func (g *Graph) ExtractEffect(id NodeID) Effect {
	n, ok := g.nodeAt(id)
	if !ok || n.kind != KindEffect {
		return nil
	}
	fx := n.effect
	n.effect = nil
	return fx
}

// SetEffect installs a new Effect instance into an existing Effect node,
// replacing any previous one (which is returned, or nil). Returns nil
// without effect if id does not name an Effect node.
func (g *Graph) SetEffect(id NodeID, instance Effect) Effect {
	n, ok := g.nodeAt(id)
	if !ok || n.kind != KindEffect {
		return nil
	}
	old := n.effect
	n.effect = instance
	return old
}
