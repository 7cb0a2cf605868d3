//go:build purego

package vecmath

import (
	// Generic implementations (pure Go fallback)
	_ "github.com/cwbudde/realtime-effect-graph/internal/vecmath/arch/generic"
	// Import registry package
	_ "github.com/cwbudde/realtime-effect-graph/internal/vecmath/registry"
)
