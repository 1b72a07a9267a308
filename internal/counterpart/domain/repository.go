package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository reads and writes counterpart rows. Company ids are
// normalized (trimmed, inner spaces removed) on every comparison.
type Repository interface {
	ByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Counterpart, error)
	// IDByCompanyID resolves a normalized company id to the highest
	// matching row id, 0 when absent.
	IDByCompanyID(ctx context.Context, db *gorm.DB, companyID string) (int64, error)
	// LastGeneratedCompanyID returns the lexically highest company id
	// carrying the generated-id prefix, empty when none exists.
	LastGeneratedCompanyID(ctx context.Context, db *gorm.DB, prefix string) (string, error)
	StateRows(ctx context.Context, db *gorm.DB) ([]StateRow, error)

	Insert(ctx context.Context, db *gorm.DB, id int64, in UserInput, smallNote string) error
	// UpdateByCompanyID rewrites the row(s) matching the normalized
	// company id and reports whether anything matched.
	UpdateByCompanyID(ctx context.Context, db *gorm.DB, in UserInput, smallNote string) (bool, error)
}
