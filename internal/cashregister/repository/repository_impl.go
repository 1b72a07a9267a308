package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/cashregister/domain"
	"github.com/benalexplus/mrpbridge/internal/config"
)

type repo struct{}

func Provide(_ config.Config) domain.Repository {
	return &repo{}
}

func (r *repo) ByDate(ctx context.Context, gdb *gorm.DB, date time.Time) ([]domain.Row, error) {
	var rows []domain.Row
	err := gdb.WithContext(ctx).Raw(`
        SELECT
            id,
            amount,
            logged_at,
            payload,
            COALESCE(TRIM(storno_uid), '') AS storno_uid
        FROM cash_register_receipts
        WHERE recorded_on = ?
        ORDER BY id ASC`, date).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
