package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/product/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

type repo struct {
	chunkSize    int
	stockNumbers []int
}

func Provide(cfg config.Config) domain.Repository {
	return &repo{
		chunkSize:    cfg.Business.ChunkSize,
		stockNumbers: cfg.Business.StockNumbers,
	}
}

// Rows runs the grouped catalog projection. The stock-location filter
// sits in WHERE, so products without a stock row at a configured
// location drop out of the result entirely, as the legacy reports
// expect.
func (r *repo) Rows(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.Row, error) {
	const query = `
        SELECT
            p.id AS id,
            p.number AS number,
            COALESCE(TRIM(p.name), '') AS name,
            COALESCE(TRIM(p.sku), '') AS sku,
            COALESCE(TRIM(p.ean), '') AS ean,
            COALESCE(p.category_number, 0) AS category_number,
            COALESCE(TRIM(g.name), '') AS group_name,
            COALESCE(TRIM(p.metatags), '') AS metatags,
            COALESCE(TRIM(p.units), '') AS units,
            COALESCE(p.units_multiplier, 0) AS units_multiplier,
            COALESCE(p.vat_percent, 0) AS vat_percent,
            COALESCE(TRIM(p.eshop_flag), '') AS eshop_flag,
            COALESCE(TRIM(p.eshop_info), '') AS eshop_info,
            COALESCE(p.warranty, 0) AS warranty,
            COALESCE(TRIM(d.description), '') AS description,
            COALESCE(TRIM(p.attributes), '') AS attributes,
            COALESCE(MAX(s.price1), 0) AS price1,
            COALESCE(MAX(s.price2), 0) AS price2,
            COALESCE(MAX(s.price3), 0) AS price3,
            COALESCE(MAX(s.price4), 0) AS price4,
            COALESCE(MAX(s.price5), 0) AS price5,
            COALESCE(SUM(s.stock_quantity), 0) AS stock_quantity,
            COALESCE(p.stock_minimum, 0) AS stock_minimum,
            COALESCE(pi.master_product_id, 0) AS master_product_id
        FROM products p
        LEFT JOIN product_details d ON d.product_id = p.id
        LEFT JOIN product_groups g ON g.number = p.group_number
        LEFT JOIN product_items pi ON pi.slave_product_id = p.id
        LEFT JOIN product_status s ON s.product_id = p.id
        WHERE s.stock_number IN ? AND p.id IN ?
        GROUP BY
            p.id, p.number, p.name, p.sku, p.ean, p.category_number, g.name,
            p.metatags, p.units, p.units_multiplier, p.vat_percent,
            p.eshop_flag, p.eshop_info, p.warranty, d.description,
            p.attributes, p.stock_minimum, pi.master_product_id
        ORDER BY p.id ASC`

	var rows []domain.Row
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		var part []domain.Row
		err := gdb.WithContext(ctx).Raw(query, r.stockNumbers, chunk).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) IDByNumber(ctx context.Context, gdb *gorm.DB, number int64) (int64, error) {
	var id int64
	err := gdb.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(id), 0) FROM products WHERE number = ?`, number).
		Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) ExtensionCategories(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.ExtRow, error) {
	var rows []domain.ExtRow
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		var part []domain.ExtRow
		err := gdb.WithContext(ctx).Raw(`
            SELECT product_id, category_number
            FROM product_category_ext
            WHERE product_id IN ?`, chunk).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

// SlaveRows lists the components of compounded products in the order
// they were attached (product_items insertion order).
func (r *repo) SlaveRows(ctx context.Context, gdb *gorm.DB, masterIDs []int64) ([]domain.SlaveRow, error) {
	var rows []domain.SlaveRow
	for _, chunk := range db.Chunk(masterIDs, r.chunkSize) {
		var part []domain.SlaveRow
		err := gdb.WithContext(ctx).Raw(`
            SELECT
                pi.master_product_id AS master_product_id,
                pi.slave_product_id AS slave_product_id,
                pi.slave_count AS slave_count,
                COALESCE(TRIM(p.name), '') AS name,
                COALESCE(TRIM(p.sku), '') AS sku
            FROM product_items pi
            LEFT JOIN products p ON p.id = pi.slave_product_id
            WHERE pi.master_product_id IN ?
            ORDER BY pi.id ASC`, chunk).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) StockQuantity(ctx context.Context, gdb *gorm.DB, productID int64) (int64, error) {
	var quantity int64
	err := gdb.WithContext(ctx).Raw(`
        SELECT COALESCE(SUM(stock_quantity), 0)
        FROM product_status
        WHERE stock_number IN ? AND product_id = ?`, r.stockNumbers, productID).
		Scan(&quantity).Error
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *repo) StateRows(ctx context.Context, gdb *gorm.DB) ([]domain.StateRow, error) {
	var rows []domain.StateRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT
            id,
            COALESCE(TRIM(name), '') AS name,
            COALESCE(category_number, 0) AS category_number,
            COALESCE(TRIM(metatags), '') AS metatags,
            COALESCE(TRIM(ean), '') AS ean,
            COALESCE(TRIM(sku), '') AS sku,
            COALESCE(TRIM(eshop_flag), '') AS eshop_flag,
            COALESCE(warranty, 0) AS warranty,
            COALESCE(stock_minimum, 0) AS stock_minimum,
            COALESCE(TRIM(attributes), '') AS attributes
        FROM products
        ORDER BY id ASC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) DetailUpdateCounts(ctx context.Context, gdb *gorm.DB) ([]domain.UpdateCountRow, error) {
	return r.updateCounts(ctx, gdb, "product_details")
}

func (r *repo) StatusUpdateCounts(ctx context.Context, gdb *gorm.DB) ([]domain.UpdateCountRow, error) {
	return r.updateCounts(ctx, gdb, "product_status")
}

func (r *repo) updateCounts(ctx context.Context, gdb *gorm.DB, table string) ([]domain.UpdateCountRow, error) {
	var rows []domain.UpdateCountRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT product_id, COALESCE(SUM(update_count), 0) AS sum_update_count
        FROM `+table+`
        GROUP BY product_id`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SetName(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "name", value)
}

func (r *repo) SetSKU(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "sku", value)
}

func (r *repo) SetEAN(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "ean", value)
}

func (r *repo) SetEshopFlag(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "eshop_flag", value)
}

func (r *repo) SetEshopInfo(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "eshop_info", value)
}

func (r *repo) SetMetatags(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "metatags", value)
}

func (r *repo) SetSmallNote(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "small_note", value)
}

func (r *repo) SetAttributes(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	return r.setColumn(ctx, gdb, id, "attributes", value)
}

// setColumn is only ever called with compile-time column names from the
// Set* methods above; no caller-supplied identifier reaches the query.
func (r *repo) setColumn(ctx context.Context, gdb *gorm.DB, id int64, column, value string) error {
	return gdb.WithContext(ctx).
		Exec(`UPDATE products SET `+column+` = ? WHERE id = ?`, value, id).Error
}

func (r *repo) UpsertDescription(ctx context.Context, gdb *gorm.DB, id int64, value string) error {
	res := gdb.WithContext(ctx).
		Exec(`UPDATE product_details SET description = ? WHERE product_id = ?`, value, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return gdb.WithContext(ctx).Exec(`
        INSERT INTO product_details (product_id, description, update_count)
        VALUES (?, ?, 0)`, id, value).Error
}
