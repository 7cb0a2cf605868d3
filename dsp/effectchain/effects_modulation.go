package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/core"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects/modulation"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// NewChorus builds a stereo chorus from two independently configured
// modulation.Chorus instances. Two instances rather than one run twice
// keeps the LFO phase from correlating across channels.
func NewChorus(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredChorus(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredChorus(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.Chorus](left, right), nil
}

func newConfiguredChorus(ctx Context, p Params) (*modulation.Chorus, error) {
	fx, err := modulation.NewChorus()
	if err != nil {
		return nil, fmt.Errorf("effectchain: new chorus: %w", err)
	}

	stages := clampInt(p.GetNum("stages", 3), 1, 6)

	err = configureChorus(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("mix", 0.18), 0, 1),
		core.Clamp(p.GetNum("depth", 0.003), 0, 0.01),
		core.Clamp(p.GetNum("speedHz", 0.35), 0.05, 5),
		stages,
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewFlanger builds a stereo flanger from two independent
// modulation.Flanger instances.
func NewFlanger(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredFlanger(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredFlanger(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.Flanger](left, right), nil
}

func newConfiguredFlanger(ctx Context, p Params) (*modulation.Flanger, error) {
	fx, err := modulation.NewFlanger(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new flanger: %w", err)
	}

	err = configureFlanger(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("rateHz", 0.25), 0.05, 5),
		core.Clamp(p.GetNum("baseDelay", 0.001), 0.0001, 0.01),
		core.Clamp(p.GetNum("depth", 0.0015), 0, 0.0099),
		core.Clamp(p.GetNum("feedback", 0.25), -0.99, 0.99),
		core.Clamp(p.GetNum("mix", 0.5), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewPhaser builds a stereo phaser from two independent
// modulation.Phaser instances.
func NewPhaser(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredPhaser(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredPhaser(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.Phaser](left, right), nil
}

func newConfiguredPhaser(ctx Context, p Params) (*modulation.Phaser, error) {
	minHz := core.Clamp(p.GetNum("minFreqHz", 300), 20, ctx.SampleRate*0.45)
	maxHz := core.Clamp(p.GetNum("maxFreqHz", 1600), minHz+1, ctx.SampleRate*0.49)
	stages := clampInt(p.GetNum("stages", 6), 1, 12)

	fx, err := modulation.NewPhaser(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new phaser: %w", err)
	}

	err = configurePhaser(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("rateHz", 0.4), 0.05, 5),
		minHz,
		maxHz,
		stages,
		core.Clamp(p.GetNum("feedback", 0.2), -0.99, 0.99),
		core.Clamp(p.GetNum("mix", 0.5), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewTremolo builds a stereo tremolo from two independent
// modulation.Tremolo instances.
func NewTremolo(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredTremolo(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredTremolo(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.Tremolo](left, right), nil
}

func newConfiguredTremolo(ctx Context, p Params) (*modulation.Tremolo, error) {
	fx, err := modulation.NewTremolo(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new tremolo: %w", err)
	}

	err = configureTremolo(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("rateHz", 4), 0.05, 20),
		core.Clamp(p.GetNum("depth", 0.6), 0, 1),
		core.Clamp(p.GetNum("smoothingMs", 5), 0, 200),
		core.Clamp(p.GetNum("mix", 1), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewRingModulator builds a stereo ring modulator from two independent
// modulation.RingModulator instances sharing the same carrier
// frequency (each channel keeps its own carrier phase).
func NewRingModulator(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredRingMod(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredRingMod(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.RingModulator](left, right), nil
}

func newConfiguredRingMod(ctx Context, p Params) (*modulation.RingModulator, error) {
	fx, err := modulation.NewRingModulator(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new ring modulator: %w", err)
	}

	err = configureRingMod(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("carrierHz", 440), 1, ctx.SampleRate*0.49),
		core.Clamp(p.GetNum("mix", 1), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewAutoWah builds a stereo envelope-following wah from two
// independent modulation.AutoWah instances, each tracking its own
// channel's envelope rather than sharing a single sidechain.
func NewAutoWah(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredAutoWah(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredAutoWah(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*modulation.AutoWah](left, right), nil
}

func newConfiguredAutoWah(ctx Context, p Params) (*modulation.AutoWah, error) {
	fx, err := modulation.NewAutoWah(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new auto-wah: %w", err)
	}

	err = configureAutoWah(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("minFreqHz", 300), 20, ctx.SampleRate*0.49),
		core.Clamp(p.GetNum("maxFreqHz", 3000), 20, ctx.SampleRate*0.49),
		core.Clamp(p.GetNum("q", 5), 0.1, 20),
		core.Clamp(p.GetNum("sensitivity", 0.5), 0, 1),
		core.Clamp(p.GetNum("attackMs", 10), 0.1, 500),
		core.Clamp(p.GetNum("releaseMs", 150), 1, 2000),
		core.Clamp(p.GetNum("mix", 1), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

// NewBitCrusher builds a stereo bit-crusher/downsampler from two
// independent effects.BitCrusher instances.
func NewBitCrusher(ctx Context, p Params) (graph.Effect, error) {
	left, err := newConfiguredBitCrusher(ctx, p)
	if err != nil {
		return nil, err
	}

	right, err := newConfiguredBitCrusher(ctx, p)
	if err != nil {
		return nil, err
	}

	return newPairAdapter[*effects.BitCrusher](left, right), nil
}

func newConfiguredBitCrusher(ctx Context, p Params) (*effects.BitCrusher, error) {
	fx, err := effects.NewBitCrusher(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new bit crusher: %w", err)
	}

	downsample := clampInt(p.GetNum("downsample", 4), 1, 256)

	err = configureBitCrusher(
		fx,
		ctx.SampleRate,
		core.Clamp(p.GetNum("bitDepth", 8), 1, 32),
		downsample,
		core.Clamp(p.GetNum("mix", 1), 0, 1),
	)
	if err != nil {
		return nil, err
	}

	return fx, nil
}

func clampInt(v float64, lo, hi int) int {
	n := int(v + 0.5)
	if n < lo {
		return lo
	}

	if n > hi {
		return hi
	}

	return n
}
