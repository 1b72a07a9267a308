package db

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/config"
)

// Module opens the store connection.
var Module = fx.Module("db",
	fx.Provide(FromAppConfig),
	fx.Provide(Open),
)

// FromAppConfig narrows the application config to the db layer's own.
func FromAppConfig(cfg config.Config) Config {
	return Config{
		Type:     cfg.DBType,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		SSLMode:  cfg.DBSSLMode,
	}
}

// Open connects to the store. The layer holds a single connection and
// issues strictly sequential statements over it; no pooling knobs are
// tuned here beyond the driver defaults.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	log.Debug("connected to store", zap.String("type", cfg.Type), zap.String("name", cfg.Name))
	return gdb, nil
}
