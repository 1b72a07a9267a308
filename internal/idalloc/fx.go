package idalloc

import "go.uber.org/fx"

// Module provides the legacy-compatible allocator. The snowflake variant
// stays opt-in; the mirrored tables keep the historical numbering.
var Module = fx.Module("idalloc",
	fx.Provide(func() Allocator {
		return MaxPlusOne{}
	}),
)
