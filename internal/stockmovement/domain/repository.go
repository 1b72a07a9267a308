package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository reads stock movements of the configured movement kinds.
type Repository interface {
	// CompanyIDsOnDate returns the distinct normalized company ids with
	// at least one movement on the date; blank ids are dropped.
	CompanyIDsOnDate(ctx context.Context, db *gorm.DB, date time.Time) ([]string, error)
	ByCompanyID(ctx context.Context, db *gorm.DB, companyID string) ([]MovementRow, error)
}
