package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads category rows. Lookups that find nothing return empty
// results, never an error.
type Repository interface {
	ByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Category, error)
	ByNumbers(ctx context.Context, db *gorm.DB, numbers []int64) ([]Category, error)
	All(ctx context.Context, db *gorm.DB) ([]Category, error)
	StateRows(ctx context.Context, db *gorm.DB) ([]StateRow, error)
}
