package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/core"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects/dynamics"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// NewCompressor builds a stereo compressor from two independently
// configured dynamics.Compressor instances.
func NewCompressor(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredCompressor(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredCompressor(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*dynamics.Compressor](left, right), nil
}

func newConfiguredCompressor(ctx Context, p Params) (*dynamics.Compressor, error) {
	fx, err := dynamics.NewCompressor(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new compressor: %w", err)
	}

	if err := fx.SetThreshold(core.Clamp(p.GetNum("thresholdDB", -20), -60, 0)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor threshold: %w", err)
	}

	if err := fx.SetRatio(core.Clamp(p.GetNum("ratio", 4), 1, 100)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor ratio: %w", err)
	}

	if err := fx.SetKnee(core.Clamp(p.GetNum("kneeDB", 6), 0, 24)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor knee: %w", err)
	}

	if err := fx.SetAttack(core.Clamp(p.GetNum("attackMs", 10), 0.1, 1000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor attack: %w", err)
	}

	if err := fx.SetRelease(core.Clamp(p.GetNum("releaseMs", 100), 1, 5000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor release: %w", err)
	}

	if err := fx.SetAutoMakeup(false); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor auto makeup: %w", err)
	}

	if err := fx.SetMakeupGain(core.Clamp(p.GetNum("makeupGainDB", 0), 0, 24)); err != nil {
		return nil, fmt.Errorf("effectchain: configure compressor makeup gain: %w", err)
	}

	return fx, nil
}

// NewLimiter builds a stereo peak limiter (100:1, fast attack) from two
// independent effects.Limiter instances.
func NewLimiter(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredLimiter(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredLimiter(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.Limiter](left, right), nil
}

func newConfiguredLimiter(ctx Context, p Params) (*effects.Limiter, error) {
	fx, err := effects.NewLimiter(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new limiter: %w", err)
	}

	if err := fx.SetThreshold(core.Clamp(p.GetNum("thresholdDB", -0.1), -24, 0)); err != nil {
		return nil, fmt.Errorf("effectchain: configure limiter threshold: %w", err)
	}

	if err := fx.SetRelease(core.Clamp(p.GetNum("releaseMs", 100), 1, 5000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure limiter release: %w", err)
	}

	return fx, nil
}

// NewLookaheadLimiter builds a stereo lookahead limiter. Its reported
// LatencySamples matches the configured lookahead time, since the
// limiter delays its program path internally by that amount.
func NewLookaheadLimiter(ctx Context, p Params) (graph.Effect, error) {
	lookaheadMs := core.Clamp(p.GetNum("lookaheadMs", 3), 0, 200)

	left, err := newConfiguredLookaheadLimiter(ctx, p, lookaheadMs)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredLookaheadLimiter(ctx, p, lookaheadMs)
	if err != nil {
		return nil, err
	}

	adapter := newPairAdapter[*dynamics.LookaheadLimiter](left, right)
	adapter.latency = int(lookaheadMs * ctx.SampleRate / 1000.0)

	return adapter, nil
}

func newConfiguredLookaheadLimiter(ctx Context, p Params, lookaheadMs float64) (*dynamics.LookaheadLimiter, error) {
	fx, err := dynamics.NewLookaheadLimiter(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new lookahead limiter: %w", err)
	}

	if err := fx.SetThreshold(core.Clamp(p.GetNum("thresholdDB", -1), -24, 0)); err != nil {
		return nil, fmt.Errorf("effectchain: configure lookahead limiter threshold: %w", err)
	}

	if err := fx.SetRelease(core.Clamp(p.GetNum("releaseMs", 100), 1, 5000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure lookahead limiter release: %w", err)
	}

	if err := fx.SetLookahead(lookaheadMs); err != nil {
		return nil, fmt.Errorf("effectchain: configure lookahead limiter lookahead: %w", err)
	}

	return fx, nil
}

// NewGate builds a stereo noise gate from two independent dynamics.Gate
// instances.
func NewGate(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredGate(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredGate(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*dynamics.Gate](left, right), nil
}

func newConfiguredGate(ctx Context, p Params) (*dynamics.Gate, error) {
	fx, err := dynamics.NewGate(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new gate: %w", err)
	}

	if err := fx.SetThreshold(core.Clamp(p.GetNum("thresholdDB", -40), -80, 0)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate threshold: %w", err)
	}

	if err := fx.SetRatio(core.Clamp(p.GetNum("ratio", 10), 1, 100)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate ratio: %w", err)
	}

	if err := fx.SetKnee(core.Clamp(p.GetNum("kneeDB", 6), 0, 24)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate knee: %w", err)
	}

	if err := fx.SetAttack(core.Clamp(p.GetNum("attackMs", 0.1), 0.1, 1000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate attack: %w", err)
	}

	if err := fx.SetHold(core.Clamp(p.GetNum("holdMs", 50), 0, 5000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate hold: %w", err)
	}

	if err := fx.SetRelease(core.Clamp(p.GetNum("releaseMs", 100), 1, 5000)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate release: %w", err)
	}

	if err := fx.SetRange(core.Clamp(p.GetNum("rangeDB", -80), -120, 0)); err != nil {
		return nil, fmt.Errorf("effectchain: configure gate range: %w", err)
	}

	return fx, nil
}
