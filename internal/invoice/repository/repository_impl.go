package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/invoice/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

type repo struct {
	chunkSize int
}

func Provide(cfg config.Config) domain.Repository {
	return &repo{chunkSize: cfg.Business.ChunkSize}
}

// baseSelect is the shared invoice projection. Identity columns coming
// from the legacy store are fixed-width CHARs, so every text field is
// trimmed and company identifiers additionally lose inner spaces.
const baseSelect = `
SELECT
    i.id AS id,
    COALESCE(TRIM(c.name), '') AS customer_name,
    COALESCE(TRIM(c.company_name), '') AS company_name,
    COALESCE(REPLACE(TRIM(c.company_id), ' ', ''), '') AS company_id,
    COALESCE(REPLACE(TRIM(c.tax_id), ' ', ''), '') AS tax_id,
    COALESCE(REPLACE(TRIM(c.vat_id), ' ', ''), '') AS vat_id,
    TRIM(i.variable_symbol) AS variable_symbol,
    COALESCE(TRIM(i.paid_by_variable_symbol), '') AS paid_by_variable_symbol,
    i.issue_date AS issue_date,
    i.issued_at AS issued_at,
    i.due_date AS due_date,
    i.total AS total,
    COALESCE(TRIM(i.shipping_method), '') AS shipping_method,
    COALESCE(TRIM(i.payment_method), '') AS payment_method
FROM invoices i
LEFT JOIN counterparts c ON c.company_id = i.company_id`

const baseOrder = ` ORDER BY i.variable_symbol ASC`

func (r *repo) find(ctx context.Context, gdb *gorm.DB, where string, args ...interface{}) ([]domain.Row, error) {
	query := baseSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += baseOrder

	var rows []domain.Row
	if err := gdb.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ByIDs(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.Row, error) {
	var rows []domain.Row
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		part, err := r.find(ctx, gdb, "i.id IN ?", chunk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) ByIssueDateRange(ctx context.Context, gdb *gorm.DB, from, to time.Time) ([]domain.Row, error) {
	return r.find(ctx, gdb, "i.issue_date >= ? AND i.issue_date <= ?", from, to)
}

func (r *repo) ByDueDate(ctx context.Context, gdb *gorm.DB, due time.Time) ([]domain.Row, error) {
	return r.find(ctx, gdb, "i.due_date = ?", due)
}

func (r *repo) ByTotal(ctx context.Context, gdb *gorm.DB, total decimal.Decimal) ([]domain.Row, error) {
	return r.find(ctx, gdb, "i.total = ?", total)
}

func (r *repo) ByVariableSymbols(ctx context.Context, gdb *gorm.DB, symbols []string) ([]domain.Row, error) {
	var rows []domain.Row
	for _, chunk := range db.Chunk(symbols, r.chunkSize) {
		part, err := r.find(ctx, gdb, "TRIM(i.variable_symbol) IN ?", chunk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) ByCompanyID(ctx context.Context, gdb *gorm.DB, companyID string) ([]domain.Row, error) {
	return r.find(ctx, gdb, "REPLACE(TRIM(i.company_id), ' ', '') = ?", companyID)
}

// PaidInRange selects invoices with at least one payment dated inside the
// range. Report mode additionally matches on the payment's log timestamp,
// catching payments recorded late for a past date.
func (r *repo) PaidInRange(ctx context.Context, gdb *gorm.DB, from, to time.Time, reportMode bool) ([]domain.Row, error) {
	sub := `i.id IN (
        SELECT p.invoice_id FROM invoice_payments p
        WHERE (p.paid_on >= ? AND p.paid_on <= ?)`
	args := []interface{}{from, to}
	if reportMode {
		sub += ` OR (p.logged_at >= ? AND p.logged_at < ?)`
		args = append(args, from, to.Add(24*time.Hour))
	}
	sub += ` GROUP BY p.invoice_id
    )`
	return r.find(ctx, gdb, sub, args...)
}

func (r *repo) All(ctx context.Context, gdb *gorm.DB) ([]domain.Row, error) {
	return r.find(ctx, gdb, "")
}

func (r *repo) RealInvoicesIssuedUpTo(ctx context.Context, gdb *gorm.DB, symbolPrefix string, upTo time.Time) ([]domain.Row, error) {
	return r.find(ctx, gdb,
		"i.total <> 0 AND i.variable_symbol LIKE ? AND i.issue_date <= ?",
		symbolPrefix+"%", upTo)
}

func (r *repo) IDByVariableSymbol(ctx context.Context, gdb *gorm.DB, symbol string) (int64, error) {
	var id int64
	err := gdb.WithContext(ctx).
		Raw(`SELECT COALESCE(MAX(id), 0) FROM invoices WHERE variable_symbol = ?`, symbol).
		Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

// PaymentsByInvoiceIDs fetches payments in canonical (paid_on, id) order
// so downstream aggregation and hashing never depend on join order.
func (r *repo) PaymentsByInvoiceIDs(ctx context.Context, gdb *gorm.DB, ids []int64) ([]domain.PaymentRow, error) {
	var rows []domain.PaymentRow
	for _, chunk := range db.Chunk(ids, r.chunkSize) {
		var part []domain.PaymentRow
		err := gdb.WithContext(ctx).Raw(`
            SELECT p.id AS id, p.invoice_id AS invoice_id, p.amount AS amount, p.paid_on AS paid_on
            FROM invoice_payments p
            WHERE p.invoice_id IN ?
            ORDER BY p.paid_on ASC, p.id ASC`, chunk).Scan(&part).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

func (r *repo) StateRows(ctx context.Context, gdb *gorm.DB) ([]domain.StateRow, error) {
	var rows []domain.StateRow
	err := gdb.WithContext(ctx).Raw(`
        SELECT
            i.id AS id,
            i.update_count AS update_count,
            i.total AS total,
            COALESCE(SUM(p.amount), 0) AS payments_sum
        FROM invoices i
        LEFT JOIN invoice_payments p ON p.invoice_id = i.id
        GROUP BY i.id, i.update_count, i.total
        ORDER BY i.id ASC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) InsertPayment(ctx context.Context, gdb *gorm.DB, p domain.PaymentInsert) error {
	return gdb.WithContext(ctx).Exec(`
        INSERT INTO invoice_payments
            (id, invoice_id, bank_id, amount, amount_currency, amount_currency_invoice,
             paid_on, method, currency, log_user, update_count)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		p.ID,
		p.InvoiceID,
		p.BankID,
		p.Amount,
		p.Amount,
		p.Amount,
		p.PaidOn,
		p.Method,
		p.Currency,
		p.LogUser,
	).Error
}
