package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads and writes product rows. Write methods update one
// enumerated column each; no field names travel as strings through the
// public surface.
type Repository interface {
	Rows(ctx context.Context, db *gorm.DB, ids []int64) ([]Row, error)
	IDByNumber(ctx context.Context, db *gorm.DB, number int64) (int64, error)
	ExtensionCategories(ctx context.Context, db *gorm.DB, ids []int64) ([]ExtRow, error)
	SlaveRows(ctx context.Context, db *gorm.DB, masterIDs []int64) ([]SlaveRow, error)
	StockQuantity(ctx context.Context, db *gorm.DB, productID int64) (int64, error)

	StateRows(ctx context.Context, db *gorm.DB) ([]StateRow, error)
	DetailUpdateCounts(ctx context.Context, db *gorm.DB) ([]UpdateCountRow, error)
	StatusUpdateCounts(ctx context.Context, db *gorm.DB) ([]UpdateCountRow, error)

	SetName(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetSKU(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetEAN(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetEshopFlag(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetEshopInfo(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetMetatags(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetSmallNote(ctx context.Context, db *gorm.DB, id int64, value string) error
	SetAttributes(ctx context.Context, db *gorm.DB, id int64, value string) error
	UpsertDescription(ctx context.Context, db *gorm.DB, id int64, value string) error
}
