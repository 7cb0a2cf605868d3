package graph

// StereoBlock is a pair of equal-length sample slices for one audio block.
// The core is monomorphic over float32 stereo audio; effect implementations
// that operate on float64 internally convert at their own boundary.
type StereoBlock struct {
	L, R []float32
}

// Len returns the block length, or 0 for a zero-value block.
func (b StereoBlock) Len() int {
	if b.L == nil {
		return 0
	}
	return len(b.L)
}

// Zero fills both channels with silence.
func (b StereoBlock) Zero() {
	for i := range b.L {
		b.L[i] = 0
	}
	for i := range b.R {
		b.R[i] = 0
	}
}

// CopyFrom copies src into b, channel by channel. Both blocks must already
// be sized to the same length; no allocation occurs.
func (b StereoBlock) CopyFrom(src StereoBlock) {
	copy(b.L, src.L)
	copy(b.R, src.R)
}

// TempoContext carries host tempo hints to effects that opt into
// TempoAware. bpm <= 0 means "no tempo available".
type TempoContext struct {
	BPM               float64
	BeatsPerBar       int
	BeatUnit          int // e.g. 4 for a /4 time signature
}

// ParamAccess is the opaque parameter-metadata sub-interface the core
// stores on an effect node but never interprets. Parameter introspection
// and smoothing are the effect's concern; the core only needs enough to
// support Chain.Snapshot (see dsp/effectchain).
type ParamAccess interface {
	// ParamCount returns the number of parameters the effect exposes.
	ParamCount() int
	// ParamValue returns the current value of parameter index i.
	ParamValue(i int) float64
	// SetParamValue sets parameter index i. Implementations should ignore
	// out-of-range indices rather than panic.
	SetParamValue(i int, v float64)
}

// Effect is the contract any audio-processing node must satisfy. The core
// treats every Effect as opaque: it knows nothing about what the effect
// computes, only how to drive it.
type Effect interface {
	// ProcessSampleMono processes one sample of a mono signal, maintaining
	// internal state.
	ProcessSampleMono(in float32) float32

	// ProcessSampleStereo processes one stereo sample pair. The default
	// behaviour for an effect with no inherent stereo coupling is to run
	// ProcessSampleMono independently on each channel; effects with
	// genuine stereo coupling (a true stereo widener, for instance)
	// override this directly.
	ProcessSampleStereo(l, r float32) (float32, float32)

	// Reset clears all internal state to a defined initial condition.
	Reset()

	// SetSampleRate adjusts the effect to a new sample rate, recomputing
	// any sample-rate-dependent coefficients.
	SetSampleRate(sampleRate float64) error

	// LatencySamples reports the effect's internal latency contribution,
	// in integer samples at the current sample rate. Returns 0 for
	// memoryless effects.
	LatencySamples() int

	// TrueStereo reports whether the effect produces L/R-decorrelated
	// output from a mono-style input. Used only by testing infrastructure,
	// never interpreted by the core's routing.
	TrueStereo() bool
}

// BlockProcessor is an optional fast path: effects that can process an
// entire block at once (rather than sample-by-sample through the default
// loop) implement this to skip the executor's per-sample fallback.
type BlockProcessor interface {
	// ProcessBlockStereo processes in into out. in and out may alias
	// (in-place processing) or not (out-of-place); implementations must
	// support both.
	ProcessBlockStereo(in, out StereoBlock)
}

// TempoAware is an optional interface for effects with tempo-synced
// parameters (e.g. a tempo-locked delay or tremolo).
type TempoAware interface {
	SetTempoContext(ctx TempoContext)
}

// Parameterized is an optional interface an Effect may implement to expose
// ParamAccess to the engine facade's snapshot/restore machinery.
type Parameterized interface {
	Params() ParamAccess
}

// processEffectBlock runs an Effect across a stereo block, preferring its
// BlockProcessor fast path when available and falling back to the
// per-sample loop (default per spec: per-block is optional, per-sample is
// mandatory).
func processEffectBlock(e Effect, in, out StereoBlock) {
	if bp, ok := e.(BlockProcessor); ok {
		bp.ProcessBlockStereo(in, out)
		return
	}
	n := in.Len()
	for i := 0; i < n; i++ {
		l, r := e.ProcessSampleStereo(in.L[i], in.R[i])
		out.L[i] = l
		out.R[i] = r
	}
}
