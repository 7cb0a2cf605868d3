//go:build !amd64 && !arm64

package biquad

import (
	_ "github.com/cwbudde/realtime-effect-graph/dsp/filter/biquad/internal/arch/generic"
	_ "github.com/cwbudde/realtime-effect-graph/dsp/filter/biquad/internal/arch/registry"
)
