package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/cashregister"
	"github.com/benalexplus/mrpbridge/internal/category"
	"github.com/benalexplus/mrpbridge/internal/clock"
	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/counterpart"
	"github.com/benalexplus/mrpbridge/internal/idalloc"
	"github.com/benalexplus/mrpbridge/internal/invoice"
	"github.com/benalexplus/mrpbridge/internal/product"
	"github.com/benalexplus/mrpbridge/internal/schema"
	"github.com/benalexplus/mrpbridge/internal/stockmovement"
	"github.com/benalexplus/mrpbridge/pkg/db"
	"github.com/benalexplus/mrpbridge/pkg/log"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		schema.Module,
		idalloc.Module,

		// Functional domains
		invoice.Module,
		category.Module,
		product.Module,
		counterpart.Module,
		stockmovement.Module,
		cashregister.Module,

		fx.Invoke(RunIntegrityCheck),
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

// RunIntegrityCheck verifies the live store against the column baseline
// before anything else touches it, then stops the process. The binary is
// a preflight tool; the packages under internal/ are the actual surface
// and are embedded by consuming services.
func RunIntegrityCheck(lc fx.Lifecycle, sd fx.Shutdowner, checker *schema.Checker, gdb *gorm.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := checker.Check(gdb); err != nil {
				logger.Error("store integrity check failed", zap.Error(err))
				return err
			}
			logger.Info("store integrity check passed")
			return sd.Shutdown()
		},
	})
}
