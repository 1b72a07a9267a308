package schema

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/config"
)

// Module provides the integrity checker with the configured baseline.
var Module = fx.Module("schema",
	fx.Provide(func(cfg config.Config) (Baseline, error) {
		return LoadBaseline(cfg.SchemaBaselinePath)
	}),
	fx.Provide(func(baseline Baseline, log *zap.Logger) *Checker {
		return NewChecker(baseline, log)
	}),
)
