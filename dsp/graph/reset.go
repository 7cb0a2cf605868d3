package graph

// Reset clears every Effect's internal state, every installed delay line,
// and cancels any in-progress swap crossfade. It does not touch graph
// topology or the compiled schedule, so a caller can Reset (e.g. on
// transport stop/rewind) without recompiling.
func (g *Graph) Reset() {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.vacant || n.kind != KindEffect || n.effect == nil {
			continue
		}
		n.effect.Reset()
		if n.bypass != nil {
			target := float64(1)
			if n.bypass.active {
				target = 0
			}
			n.bypass.smooth.snapTo(target)
		}
	}

	if s := g.active.Load(); s != nil {
		for _, d := range s.delays {
			d.reset()
		}
	}

	g.xfade.active = false
}

// SetSampleRate updates the graph's sample rate and propagates it to every
// Effect node. Existing compiled schedules are left installed; callers
// should Compile again afterward for latency figures that reflect the new
// rate.
func (g *Graph) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	g.sampleRate = sampleRate
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.vacant || n.kind != KindEffect || n.effect == nil {
			continue
		}
		if err := n.effect.SetSampleRate(sampleRate); err != nil {
			return err
		}
		if n.bypass != nil {
			n.bypass.smooth.rateHz = sampleRate
		}
	}
	g.xfade.smooth.rateHz = sampleRate
	return nil
}

// SetTempoContext broadcasts bpm/time-signature hints to every Effect node
// that opts into TempoAware. Nodes whose effect doesn't implement it are
// silently skipped.
func (g *Graph) SetTempoContext(ctx TempoContext) {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.vacant || n.kind != KindEffect || n.effect == nil {
			continue
		}
		if ta, ok := n.effect.(TempoAware); ok {
			ta.SetTempoContext(ctx)
		}
	}
}
