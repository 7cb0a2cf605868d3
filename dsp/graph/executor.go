package graph

// ProcessBlock runs one block of audio through the graph's currently
// installed schedule, writing silence and ErrNotCompiled if Compile has
// never succeeded. in and out must be equal length and must not exceed the
// graph's configured block size; both channels are required (mono sources
// should duplicate their signal into L and R before calling).
//
// ProcessBlock never allocates: every buffer it touches was sized during
// Compile. It is safe to call concurrently with a Compile running on
// another goroutine, since the schedule handoff is a single atomic pointer
// swap; it is not safe to call concurrently with itself.
func (g *Graph) ProcessBlock(in, out StereoBlock) error {
	s := g.active.Load()
	if s == nil {
		out.Zero()
		return ErrNotCompiled
	}

	n := in.Len()
	if n == 0 {
		return nil
	}

	runSchedule(s, in, out)

	if g.xfade.active {
		for i := 0; i < n; i++ {
			fade := float32(g.xfade.smooth.advance())
			var oldL, oldR float32
			if i < g.xfade.frozenLen {
				oldL, oldR = g.xfade.frozen.L[i], g.xfade.frozen.R[i]
			}
			out.L[i] = fade*out.L[i] + (1-fade)*oldL
			out.R[i] = fade*out.R[i] + (1-fade)*oldR
		}
		if g.xfade.smooth.done() {
			g.xfade.active = false
		}
	}

	m := n
	if m > len(g.lastOutput.L) {
		m = len(g.lastOutput.L)
	}
	copy(g.lastOutput.L[:m], out.L[:m])
	copy(g.lastOutput.R[:m], out.R[:m])

	return nil
}

// runSchedule executes one schedule's step program against a single block.
// Only the live (current) schedule runs through it; a swap crossfade blends
// against the frozen last output instead of re-running the old schedule.
func runSchedule(s *Schedule, in, out StereoBlock) {
	n := in.Len()
	for _, st := range s.steps {
		switch st.op {
		case opWriteInput:
			s.pool.get(st.dst, n).CopyFrom(in)

		case opReadOutput:
			out.CopyFrom(s.pool.get(st.src, n))

		case opClearBuffer:
			s.pool.get(st.dst, n).Zero()

		case opProcessEffect:
			runProcessEffect(s, st, n)

		case opSplitCopy:
			src := s.pool.get(st.src, n)
			for i := 0; i < st.splitCount; i++ {
				s.pool.get(st.splitDst[i], n).CopyFrom(src)
			}

		case opAccumulateBuffer:
			src := s.pool.get(st.src, n)
			dst := s.pool.get(st.dst, n)
			for i := 0; i < n; i++ {
				dst.L[i] += st.gain * src.L[i]
				dst.R[i] += st.gain * src.R[i]
			}

		case opDelayCompensate:
			s.delays[st.delayIdx].processInPlace(s.pool.get(st.src, n))
		}
	}
}

// runProcessEffect drives one Effect node's block, applying its bypass
// crossfade. The effect is always invoked, bypassed or not, so delays,
// LFOs, and filter state stay warm across a bypass toggle and don't click
// or pop back in when re-enabled.
func runProcessEffect(s *Schedule, st step, n int) {
	src := s.pool.get(st.src, n)
	dst := s.pool.get(st.dst, n)

	if st.effect == nil {
		dst.CopyFrom(src)
		return
	}

	processEffectBlock(st.effect, src, dst)

	if st.bypass == nil {
		return
	}
	for i := 0; i < n; i++ {
		fade := float32(st.bypass.smooth.advance())
		dst.L[i] = fade*dst.L[i] + (1-fade)*src.L[i]
		dst.R[i] = fade*dst.R[i] + (1-fade)*src.R[i]
	}
}
