package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/stockmovement/domain"
)

type repo struct {
	movementKinds []int
}

func Provide(cfg config.Config) domain.Repository {
	return &repo{movementKinds: cfg.Business.MovementKinds}
}

func (r *repo) CompanyIDsOnDate(ctx context.Context, gdb *gorm.DB, date time.Time) ([]string, error) {
	var ids []string
	err := gdb.WithContext(ctx).Raw(`
        SELECT REPLACE(TRIM(company_id), ' ', '') AS company_id
        FROM stock_movements
        WHERE moved_on = ? AND movement_kind IN ?
        GROUP BY REPLACE(TRIM(company_id), ' ', '')`, date, r.movementKinds).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	filtered := ids[:0]
	for _, id := range ids {
		if id != "" {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

func (r *repo) ByCompanyID(ctx context.Context, gdb *gorm.DB, companyID string) ([]domain.MovementRow, error) {
	var rows []domain.MovementRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT
            REPLACE(TRIM(company_id), ' ', '') AS company_id,
            movement_kind,
            COALESCE(TRIM(variable_symbol), '') AS variable_symbol,
            COALESCE(total, 0) AS total,
            is_expense,
            moved_on
        FROM stock_movements
        WHERE REPLACE(TRIM(company_id), ' ', '') = ? AND movement_kind IN ?
        ORDER BY id ASC`, companyID, r.movementKinds).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
