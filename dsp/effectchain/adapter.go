package effectchain

import "github.com/cwbudde/realtime-effect-graph/dsp/graph"

// monoEffect is satisfied by every dsp/effects/* processor: independent
// per-sample state, reset to a defined initial condition.
type monoEffect interface {
	ProcessSample(in float64) float64
	Reset()
}

// rateSetter is implemented by every monoEffect except effects.Reverb,
// whose comb/allpass network has no sample-rate-dependent coefficients
// to recompute.
type rateSetter interface {
	SetSampleRate(sampleRate float64) error
}

// pairAdapter drives two independent instances of the same mono effect
// type, one per channel, and exposes them as a single graph.Effect.
// Two separate instances, rather than one instance run twice, keep each
// channel's internal state - filter history, LFO phase, delay write
// position - from leaking across channels.
type pairAdapter[T monoEffect] struct {
	left, right T
	latency     int
}

func newPairAdapter[T monoEffect](left, right T) *pairAdapter[T] {
	return &pairAdapter[T]{left: left, right: right}
}

func (p *pairAdapter[T]) ProcessSampleMono(in float32) float32 {
	return float32(p.left.ProcessSample(float64(in)))
}

func (p *pairAdapter[T]) ProcessSampleStereo(l, r float32) (float32, float32) {
	return float32(p.left.ProcessSample(float64(l))), float32(p.right.ProcessSample(float64(r)))
}

func (p *pairAdapter[T]) Reset() {
	p.left.Reset()
	p.right.Reset()
}

// SetSampleRate propagates to both channel instances if the wrapped
// type supports it, and is a no-op otherwise.
func (p *pairAdapter[T]) SetSampleRate(sampleRate float64) error {
	ls, ok := any(p.left).(rateSetter)
	if !ok {
		return nil
	}

	if err := ls.SetSampleRate(sampleRate); err != nil {
		return err
	}

	return any(p.right).(rateSetter).SetSampleRate(sampleRate)
}

func (p *pairAdapter[T]) LatencySamples() int { return p.latency }

// TrueStereo is always false: the two channel instances never share
// state, so left and right are only as decorrelated as the input was.
func (p *pairAdapter[T]) TrueStereo() bool { return false }

var _ graph.Effect = (*pairAdapter[monoEffect])(nil)
