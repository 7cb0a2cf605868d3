package effectchain

import (
	"github.com/cwbudde/realtime-effect-graph/dsp/filter/biquad"
	"github.com/cwbudde/realtime-effect-graph/dsp/filter/design"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

type eqKind int

const (
	eqLowpass eqKind = iota
	eqHighpass
	eqBandpass
	eqNotch
	eqPeak
	eqLowShelf
	eqHighShelf
)

// eqEffect is a single biquad section per channel, redesigned whenever
// the sample rate changes. Unlike pairAdapter, SetSampleRate here does
// real work: a biquad.Section's coefficients are sample-rate-dependent
// and the section itself exposes no SetSampleRate of its own.
type eqEffect struct {
	kind            eqKind
	freq, q, gainDB float64

	left, right *biquad.Section
}

func designEQCoefficients(kind eqKind, freq, q, gainDB, sampleRate float64) biquad.Coefficients {
	switch kind {
	case eqLowpass:
		return design.Lowpass(freq, q, sampleRate)
	case eqHighpass:
		return design.Highpass(freq, q, sampleRate)
	case eqBandpass:
		return design.Bandpass(freq, q, sampleRate)
	case eqNotch:
		return design.Notch(freq, q, sampleRate)
	case eqPeak:
		return design.Peak(freq, gainDB, q, sampleRate)
	case eqLowShelf:
		return design.LowShelf(freq, gainDB, q, sampleRate)
	case eqHighShelf:
		return design.HighShelf(freq, gainDB, q, sampleRate)
	default:
		return design.Lowpass(freq, q, sampleRate)
	}
}

func newEQEffect(kind eqKind, sampleRate, freq, q, gainDB float64) *eqEffect {
	c := designEQCoefficients(kind, freq, q, gainDB, sampleRate)

	return &eqEffect{
		kind:   kind,
		freq:   freq,
		q:      q,
		gainDB: gainDB,
		left:   biquad.NewSection(c),
		right:  biquad.NewSection(c),
	}
}

// NewLowpassEQ builds a stereo second-order Butterworth-Q lowpass.
func NewLowpassEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 1200)
	q := p.GetNum("q", 0.707)

	return newEQEffect(eqLowpass, ctx.SampleRate, freq, q, 0), nil
}

// NewHighpassEQ builds a stereo second-order highpass.
func NewHighpassEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 120)
	q := p.GetNum("q", 0.707)

	return newEQEffect(eqHighpass, ctx.SampleRate, freq, q, 0), nil
}

// NewBandpassEQ builds a stereo constant-skirt-gain bandpass.
func NewBandpassEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 1000)
	q := p.GetNum("q", 1.0)

	return newEQEffect(eqBandpass, ctx.SampleRate, freq, q, 0), nil
}

// NewNotchEQ builds a stereo notch filter.
func NewNotchEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 1000)
	q := p.GetNum("q", 8.0)

	return newEQEffect(eqNotch, ctx.SampleRate, freq, q, 0), nil
}

// NewPeakEQ builds a stereo RBJ peaking (bell) filter.
func NewPeakEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 1000)
	q := p.GetNum("q", 1.0)
	gainDB := p.GetNum("gainDB", 0)

	return newEQEffect(eqPeak, ctx.SampleRate, freq, q, gainDB), nil
}

// NewLowShelfEQ builds a stereo low-shelf filter.
func NewLowShelfEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 200)
	q := p.GetNum("q", 0.707)
	gainDB := p.GetNum("gainDB", 0)

	return newEQEffect(eqLowShelf, ctx.SampleRate, freq, q, gainDB), nil
}

// NewHighShelfEQ builds a stereo high-shelf filter.
func NewHighShelfEQ(ctx Context, p Params) (graph.Effect, error) {
	freq := p.GetNum("freq", 6000)
	q := p.GetNum("q", 0.707)
	gainDB := p.GetNum("gainDB", 0)

	return newEQEffect(eqHighShelf, ctx.SampleRate, freq, q, gainDB), nil
}

func (e *eqEffect) ProcessSampleMono(in float32) float32 {
	return float32(e.left.ProcessSample(float64(in)))
}

func (e *eqEffect) ProcessSampleStereo(l, r float32) (float32, float32) {
	return float32(e.left.ProcessSample(float64(l))), float32(e.right.ProcessSample(float64(r)))
}

func (e *eqEffect) Reset() {
	e.left.Reset()
	e.right.Reset()
}

func (e *eqEffect) SetSampleRate(sampleRate float64) error {
	c := designEQCoefficients(e.kind, e.freq, e.q, e.gainDB, sampleRate)
	e.left.Coefficients = c
	e.right.Coefficients = c

	return nil
}

func (e *eqEffect) LatencySamples() int { return 0 }

func (e *eqEffect) TrueStereo() bool { return false }

var _ graph.Effect = (*eqEffect)(nil)
