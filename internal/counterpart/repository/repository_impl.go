package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/counterpart/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

type repo struct {
	chunkSize  int
	dueDays    int
	priceGroup int
}

func Provide(cfg config.Config) domain.Repository {
	return &repo{
		chunkSize:  cfg.Business.ChunkSize,
		dueDays:    cfg.Business.DefaultDueDays,
		priceGroup: cfg.Business.DefaultPriceGroup,
	}
}

// individual column: 'F' marks a company, 'T' a private person.
const baseSelect = `
SELECT
    id,
    COALESCE(TRIM(name), '') AS name,
    COALESCE(TRIM(street), '') AS street,
    COALESCE(TRIM(zip), '') AS zip,
    COALESCE(TRIM(city), '') AS city,
    COALESCE(TRIM(country), '') AS country,
    COALESCE(TRIM(country_code), '') AS country_code,
    COALESCE(TRIM(email), '') AS email,
    COALESCE(TRIM(phone), '') AS phone,
    COALESCE(TRIM(phone2), '') AS phone2,
    COALESCE(TRIM(phone3), '') AS phone3,
    CASE WHEN individual = 'F' THEN 1 ELSE 0 END AS is_company,
    COALESCE(TRIM(company_name), '') AS company_name,
    COALESCE(REPLACE(TRIM(company_id), ' ', ''), '') AS company_id,
    COALESCE(REPLACE(TRIM(tax_id), ' ', ''), '') AS tax_id,
    COALESCE(REPLACE(TRIM(vat_id), ' ', ''), '') AS vat_id,
    COALESCE(due_days, ?) AS due_days,
    COALESCE(price_group, ?) AS price_group,
    added_on,
    COALESCE(TRIM(note), '') AS note
FROM counterparts`

func (r *repo) ByIDs(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.Counterpart, error) {
	var rows []domain.Counterpart
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		var part []domain.Counterpart
		err := gdb.WithContext(ctx).
			Raw(baseSelect+" WHERE id IN ? ORDER BY id ASC", r.dueDays, r.priceGroup, chunk).
			Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) IDByCompanyID(ctx context.Context, gdb *gorm.DB, companyID string) (int64, error) {
	var id int64
	err := gdb.WithContext(ctx).Raw(`
        SELECT COALESCE(MAX(id), 0)
        FROM counterparts
        WHERE REPLACE(TRIM(company_id), ' ', '') = ?`, companyID).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) LastGeneratedCompanyID(ctx context.Context, gdb *gorm.DB, prefix string) (string, error) {
	var companyID string
	err := gdb.WithContext(ctx).Raw(`
        SELECT COALESCE(MAX(REPLACE(TRIM(company_id), ' ', '')), '')
        FROM counterparts
        WHERE company_id LIKE ?`, prefix+"%").Scan(&companyID).Error
	if err != nil {
		return "", err
	}
	return companyID, nil
}

func (r *repo) StateRows(ctx context.Context, gdb *gorm.DB) ([]domain.StateRow, error) {
	var rows []domain.StateRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT
            MAX(id) AS id,
            REPLACE(TRIM(company_id), ' ', '') AS company_id,
            COALESCE(SUM(update_count), 0) AS sum_update_count
        FROM counterparts
        GROUP BY REPLACE(TRIM(company_id), ' ', '')
        ORDER BY MAX(id) ASC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func individualFlag(isCompany bool) string {
	if isCompany {
		return "F"
	}
	return "T"
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, id int64, in domain.UserInput, smallNote string) error {
	return gdb.WithContext(ctx).Exec(`
        INSERT INTO counterparts
            (id, name, street, city, zip, country, country_code, phone, email,
             individual, company_name, company_id, tax_id, vat_id, small_note, update_count)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		id, in.Name, in.Street, in.City, in.ZIP, in.Country, in.CountryCode,
		in.Phone, in.Email, individualFlag(in.IsCompany),
		in.CompanyName, in.CompanyID, in.TaxID, in.VATID, smallNote,
	).Error
}

func (r *repo) UpdateByCompanyID(ctx context.Context, gdb *gorm.DB, in domain.UserInput, smallNote string) (bool, error) {
	res := gdb.WithContext(ctx).Exec(`
        UPDATE counterparts SET
            name = ?, street = ?, city = ?, zip = ?, country = ?,
            country_code = ?, phone = ?, email = ?, individual = ?,
            company_name = ?, tax_id = ?, vat_id = ?, small_note = ?
        WHERE REPLACE(TRIM(company_id), ' ', '') = ?`,
		in.Name, in.Street, in.City, in.ZIP, in.Country, in.CountryCode,
		in.Phone, in.Email, individualFlag(in.IsCompany),
		in.CompanyName, in.TaxID, in.VATID, smallNote, in.CompanyID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
