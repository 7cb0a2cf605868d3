package graph

// swapCrossfade blends a newly installed Schedule's output against a
// frozen snapshot of the last block the previous schedule actually
// produced, avoiding an audible click when Compile swaps in structural
// changes mid-stream. The previous schedule itself is never re-invoked:
// that would process its effects a second time against state they've
// already advanced past, which is wrong for anything with memory (a
// filter, a delay, an LFO). Holding the last real block static and fading
// out of it uses the same linear smoother as the per-node bypass ramp in
// the executor, one level up the stack.
type swapCrossfade struct {
	active bool
	smooth smoother

	frozen    StereoBlock
	frozenLen int
}

func newSwapCrossfade(sampleRate float64, blockSize int) swapCrossfade {
	return swapCrossfade{
		smooth: newSmoother(sampleRate, swapSmoothMs),
		frozen: StereoBlock{
			L: make([]float32, blockSize),
			R: make([]float32, blockSize),
		},
	}
}

// arm freezes snapshot as the fade-out target and starts ramping toward
// the new schedule's live output. A no-op if snapshot is empty (nothing
// rendered yet, e.g. the very first compile).
func (x *swapCrossfade) arm(snapshot StereoBlock) {
	n := snapshot.Len()
	if n == 0 {
		return
	}
	if n > len(x.frozen.L) {
		n = len(x.frozen.L)
	}
	copy(x.frozen.L[:n], snapshot.L[:n])
	copy(x.frozen.R[:n], snapshot.R[:n])
	x.frozenLen = n
	x.active = true
	x.smooth.snapTo(0)
	x.smooth.setTarget(1)
}

// resize grows the crossfade's frozen-snapshot buffer to at least
// blockSize samples. Called only from Compile.
func (x *swapCrossfade) resize(blockSize int) {
	if len(x.frozen.L) >= blockSize {
		return
	}
	x.frozen = StereoBlock{
		L: make([]float32, blockSize),
		R: make([]float32, blockSize),
	}
}
