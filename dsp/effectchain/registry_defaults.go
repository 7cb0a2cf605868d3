package effectchain

// DefaultRegistry returns a Registry with every built-in effect type
// registered under its canonical name.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("compressor", NewCompressor)
	r.MustRegister("limiter", NewLimiter)
	r.MustRegister("lookahead-limiter", NewLookaheadLimiter)
	r.MustRegister("gate", NewGate)

	r.MustRegister("distortion", NewDistortion)
	r.MustRegister("transformer", NewTransformerSimulation)

	r.MustRegister("chorus", NewChorus)
	r.MustRegister("flanger", NewFlanger)
	r.MustRegister("phaser", NewPhaser)
	r.MustRegister("tremolo", NewTremolo)
	r.MustRegister("ring-modulator", NewRingModulator)
	r.MustRegister("bitcrusher", NewBitCrusher)
	r.MustRegister("auto-wah", NewAutoWah)

	r.MustRegister("delay", NewDelay)
	r.MustRegister("reverb", NewFreeverb)
	r.MustRegister("fdn-reverb", NewFDNReverb)

	r.MustRegister("harmonic-bass", NewHarmonicBass)
	r.MustRegister("stereo-widener", NewStereoWidener)

	r.MustRegister("eq-lowpass", NewLowpassEQ)
	r.MustRegister("eq-highpass", NewHighpassEQ)
	r.MustRegister("eq-bandpass", NewBandpassEQ)
	r.MustRegister("eq-notch", NewNotchEQ)
	r.MustRegister("eq-peak", NewPeakEQ)
	r.MustRegister("eq-lowshelf", NewLowShelfEQ)
	r.MustRegister("eq-highshelf", NewHighShelfEQ)

	return r
}
