package effectchain

import (
	"fmt"

	"github.com/cwbudde/realtime-effect-graph/dsp/core"
	"github.com/cwbudde/realtime-effect-graph/dsp/effects/spatial"
	"github.com/cwbudde/realtime-effect-graph/dsp/graph"
)

// widenerEffect wraps spatial.StereoWidener directly, rather than
// through pairAdapter: widening genuinely couples L and R (mid/side
// processing), so there is no independent per-channel instance to run.
type widenerEffect struct {
	fx *spatial.StereoWidener
}

// NewStereoWidener builds a mid/side stereo widener.
func NewStereoWidener(ctx Context, p Params) (graph.Effect, error) {
	fx, err := spatial.NewStereoWidener(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: new stereo widener: %w", err)
	}

	if err := configureWidener(fx, ctx.SampleRate, core.Clamp(p.GetNum("width", 1), 0, 4)); err != nil {
		return nil, err
	}

	return &widenerEffect{fx: fx}, nil
}

func (w *widenerEffect) ProcessSampleMono(in float32) float32 {
	l, r := w.fx.ProcessStereo(float64(in), float64(in))

	return float32(0.5 * (l + r))
}

func (w *widenerEffect) ProcessSampleStereo(l, r float32) (float32, float32) {
	outL, outR := w.fx.ProcessStereo(float64(l), float64(r))

	return float32(outL), float32(outR)
}

func (w *widenerEffect) Reset() { w.fx.Reset() }

func (w *widenerEffect) SetSampleRate(sampleRate float64) error {
	return w.fx.SetSampleRate(sampleRate)
}

func (w *widenerEffect) LatencySamples() int { return 0 }

// TrueStereo is true: width coupling produces genuinely decorrelated
// L/R output from correlated input.
func (w *widenerEffect) TrueStereo() bool { return true }

var _ graph.Effect = (*widenerEffect)(nil)
