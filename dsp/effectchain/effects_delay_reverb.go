package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/core"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects/reverb"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// NewDelay builds a stereo feedback delay from two independent
// effects.Delay instances. Its reported latency is 0: the delay is a
// feedback effect the player hears immediately, not a fixed processing
// latency the compiler needs to time-align.
func NewDelay(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredDelay(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredDelay(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.Delay](left, right), nil
}

func newConfiguredDelay(ctx Context, p Params) (*effects.Delay, error) {
	fx, err := effects.NewDelay(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new delay: %w", err)
	}

	err = configureDelay(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("time", 0.25), 0.001, 2),
		core.Clamp(p.GetNum("feedback", 0.35), 0, 0.99),
		core.Clamp(p.GetNum("mix", 0.25), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewFreeverb builds a stereo Schroeder/Freeverb-style reverb from two
// independent reverb.Reverb instances. reverb.Reverb carries no
// sample-rate-dependent coefficients, so SetSampleRate on the adapter
// is a safe no-op (pairAdapter skips it via the rateSetter check).
func NewFreeverb(_ Context, p Params) (graph.Effect, error) {
	left := reverb.NewReverb()
	right := reverb.NewReverb()

	configureFreeverb(
		left,
		core.Clamp(p.GetNum("wet", 0.22), 0, 1.5),
		core.Clamp(p.GetNum("dry", 1), 0, 1.5),
		core.Clamp(p.GetNum("roomSize", 0.72), 0, 0.98),
		core.Clamp(p.GetNum("damp", 0.45), 0, 0.99),
		core.Clamp(p.GetNum("gain", 0.015), 0, 0.1),
	)
	configureFreeverb(
		right,
		core.Clamp(p.GetNum("wet", 0.22), 0, 1.5),
		core.Clamp(p.GetNum("dry", 1), 0, 1.5),
		core.Clamp(p.GetNum("roomSize", 0.72), 0, 0.98),
		core.Clamp(p.GetNum("damp", 0.45), 0, 0.99),
		core.Clamp(p.GetNum("gain", 0.015), 0, 0.1),
	)

	return newPairAdapter[*reverb.Reverb](left, right), nil
}

// NewFDNReverb builds a stereo feedback-delay-network reverb from two
// independent reverb.FDNReverb instances.
func NewFDNReverb(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredFDNReverb(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredFDNReverb(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*reverb.FDNReverb](left, right), nil
}

func newConfiguredFDNReverb(ctx Context, p Params) (*reverb.FDNReverb, error) {
	fx, err := reverb.NewFDNReverb(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new FDN reverb: %w", err)
	}

	err = configureFDNReverb(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("wet", 0.22), 0, 1.5),
		core.Clamp(p.GetNum("dry", 1), 0, 1.5),
		core.Clamp(p.GetNum("rt60", 1.8), 0.2, 8),
		core.Clamp(p.GetNum("preDelay", 0.01), 0, 0.1),
		core.Clamp(p.GetNum("damp", 0.45), 0, 0.99),
		core.Clamp(p.GetNum("modDepth", 0.002), 0, 0.01),
		core.Clamp(p.GetNum("modRate", 0.1), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewHarmonicBass builds a stereo harmonic bass enhancer from two
// independent effects.HarmonicBass instances.
func NewHarmonicBass(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredHarmonicBass(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredHarmonicBass(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.HarmonicBass](left, right), nil
}

func newConfiguredHarmonicBass(ctx Context, p Params) (*effects.HarmonicBass, error) {
	fx, err := effects.NewHarmonicBass(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new harmonic bass: %w", err)
	}

	highpass := clampInt(p.GetNum("highpass", 0), 0, 2)

	err = configureHarmonicBass(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("frequency", 80), 10, 500),
		core.Clamp(p.GetNum("inputGain", 1), 0, 2),
		core.Clamp(p.GetNum("highGain", 1), 0, 2),
		core.Clamp(p.GetNum("original", 1), 0, 2),
		core.Clamp(p.GetNum("harmonic", 0), 0, 2),
		core.Clamp(p.GetNum("decay", 0), -1, 1),
		core.Clamp(p.GetNum("responseMs", 20), 1, 200),
		highpass,
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}
