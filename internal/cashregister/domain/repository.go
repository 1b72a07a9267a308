package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository reads raw receipt rows.
type Repository interface {
	ByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]Row, error)
}
