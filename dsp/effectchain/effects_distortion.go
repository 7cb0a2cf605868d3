package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/core"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

var distortionModeByName = map[string]effects.DistortionMode{
	"hard":      effects.DistortionModeHardClip,
	"soft":      effects.DistortionModeSoftClip,
	"tanh":      effects.DistortionModeTanh,
	"saturator": effects.DistortionModeSoftSat,
	"chebyshev": effects.DistortionModeChebyshev,
}

func normalizeDistortionModeName(name string) effects.DistortionMode {
	if mode, ok := distortionModeByName[name]; ok {
		return mode
	}

	return effects.DistortionModeSoftClip
}

// NewDistortion builds a stereo waveshaping distortion from two
// independent effects.Distortion instances.
func NewDistortion(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredDistortion(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredDistortion(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.Distortion](left, right), nil
}

func newConfiguredDistortion(ctx Context, p Params) (*effects.Distortion, error) {
	fx, err := effects.NewDistortion(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new distortion: %w", err)
	}

	err = configureDistortion(
		fx,
		ctx.SampleRate,
		normalizeDistortionModeName(p.GetStr("mode", "soft")),
		effects.DistortionApproxExact,
		core.Clamp(p.GetNum("drive", 1.8), 0.01, 20),
		core.Clamp(p.GetNum("mix", 1.0), 0, 1),
		core.Clamp(p.GetNum("output", 1.0), 0, 4),
		core.Clamp(p.GetNum("clip", 1.0), 0.05, 1),
		core.Clamp(p.GetNum("shape", 0.5), 0, 1),
		core.Clamp(p.GetNum("bias", 0), -1, 1),
		3,
		effects.ChebyshevHarmonicAll,
		false,
		1.0,
		false,
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewTransformerSimulation builds a stereo transformer-saturation
// effect from two independent effects.TransformerSimulation instances.
func NewTransformerSimulation(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredTransformer(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredTransformer(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.TransformerSimulation](left, right), nil
}

func newConfiguredTransformer(ctx Context, p Params) (*effects.TransformerSimulation, error) {
	fx, err := effects.NewTransformerSimulation(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new transformer simulation: %w", err)
	}

	err = configureTransformer(
		fx,
		ctx.SampleRate,
		effects.TransformerQualityHigh,
		core.Clamp(p.GetNum("drive", 2.0), 0.1, 30),
		core.Clamp(p.GetNum("mix", 1.0), 0, 1),
		core.Clamp(p.GetNum("output", 1.0), 0, 4),
		core.Clamp(p.GetNum("highpassHz", 25), 5, ctx.SampleRate*0.45),
		core.Clamp(p.GetNum("dampingHz", 9000), 200, ctx.SampleRate*0.49),
		4,
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}
