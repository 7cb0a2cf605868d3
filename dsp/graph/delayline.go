package graph

// delayLine is a fixed-size, integer-sample, stereo compensation delay
// inserted on a Merge input whose cumulative latency is less than the
// incoming max, so every path into the Merge arrives time-aligned.
// Compensation only ever needs whole-sample alignment (the gap is a count
// of effect-reported integer latencies), so this is deliberately simpler
// than dsp/delay.Line's fractional-interpolation modes.
type delayLine struct {
	bufL, bufR []float32
	writePos   int
	samples    int // configured delay length; 0 is legal (no-op passthrough)
}

// newDelayLine allocates a stereo delay line of the given length in
// samples. samples may be 0, producing a passthrough.
func newDelayLine(samples int) *delayLine {
	if samples < 0 {
		samples = 0
	}
	size := samples
	if size == 0 {
		size = 1
	}
	return &delayLine{
		bufL:    make([]float32, size),
		bufR:    make([]float32, size),
		samples: samples,
	}
}

// processInPlace delays buf by the configured sample count, in place.
func (d *delayLine) processInPlace(buf StereoBlock) {
	if d.samples == 0 {
		return
	}
	size := len(d.bufL)
	for i := 0; i < buf.Len(); i++ {
		readPos := d.writePos
		outL, outR := d.bufL[readPos], d.bufR[readPos]
		d.bufL[readPos] = buf.L[i]
		d.bufR[readPos] = buf.R[i]
		buf.L[i] = outL
		buf.R[i] = outR
		d.writePos++
		if d.writePos >= size {
			d.writePos = 0
		}
	}
}

// reset clears the delay line's internal state to silence.
func (d *delayLine) reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.writePos = 0
}
