package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/category/domain"
	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

type repo struct {
	chunkSize int
}

func Provide(cfg config.Config) domain.Repository {
	return &repo{chunkSize: cfg.Business.ChunkSize}
}

const baseSelect = `
SELECT
    id,
    COALESCE(TRIM(name), '') AS name,
    number,
    parent_number,
    position
FROM product_categories`

func (r *repo) find(ctx context.Context, gdb *gorm.DB, where string, args ...interface{}) ([]domain.Category, error) {
	query := baseSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id ASC"

	var rows []domain.Category
	if err := gdb.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ByIDs(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.Category, error) {
	var rows []domain.Category
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		part, err := r.find(ctx, gdb, "id IN ?", chunk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) ByNumbers(ctx context.Context, gdb *gorm.DB, numbers []int64) ([]domain.Category, error) {
	var rows []domain.Category
	for _, chunk := range db.Chunk(numbers, r.chunkSize) {
		part, err := r.find(ctx, gdb, "number IN ?", chunk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) All(ctx context.Context, gdb *gorm.DB) ([]domain.Category, error) {
	return r.find(ctx, gdb, "")
}

func (r *repo) StateRows(ctx context.Context, gdb *gorm.DB) ([]domain.StateRow, error) {
	var rows []domain.StateRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT id, COALESCE(TRIM(name), '') AS name, number, parent_number, position
        FROM product_categories
        ORDER BY id ASC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
