package graph

// bypassSmoothMs is the ramp time for a per-effect bypass toggle.
const bypassSmoothMs = 10.0

// swapSmoothMs is the ramp time for a schedule-swap crossfade.
const swapSmoothMs = 5.0

// snapEpsilon is how close a smoother must get to its target before it
// snaps the rest of the way, so it doesn't chase asymptotically forever.
const snapEpsilon = 1e-4

// smoother is a linear ramp from a current value toward a target value,
// advanced one sample (or one block) at a time. It is used both for the
// per-effect bypass crossfade and the schedule-swap crossfade; both just
// need a click-free ramp between two gains.
type smoother struct {
	value  float64
	target float64
	step   float64 // per-sample increment toward target, recomputed on setTarget
	rateHz float64
	timeMs float64
}

// newSmoother creates a smoother with the given ramp time at sampleRate.
// The initial value and target are both 0.
func newSmoother(sampleRate, timeMs float64) smoother {
	return smoother{rateHz: sampleRate, timeMs: timeMs}
}

// setTarget arms the smoother to ramp from its current value to target over
// timeMs.
func (s *smoother) setTarget(target float64) {
	s.target = target
	n := s.rateHz * s.timeMs / 1000.0
	if n < 1 {
		n = 1
	}
	s.step = (target - s.value) / n
}

// snapTo immediately sets both value and target, with no ramp.
func (s *smoother) snapTo(v float64) {
	s.value = v
	s.target = v
	s.step = 0
}

// done reports whether the smoother has reached its target.
func (s *smoother) done() bool {
	return s.value == s.target
}

// advance moves the smoother one sample toward its target and returns the
// new value.
func (s *smoother) advance() float64 {
	if s.value == s.target {
		return s.value
	}
	s.value += s.step
	if (s.step > 0 && s.value >= s.target) || (s.step < 0 && s.value <= s.target) {
		s.value = s.target
	} else if abs64(s.value-s.target) < snapEpsilon {
		s.value = s.target
	}
	return s.value
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
