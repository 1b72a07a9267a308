package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Counterpart is one customer or supplier of the legacy address book.
// Rows are canonically identified by the normalized company id; several
// physical rows may share one company id, in which case the highest row
// id wins lookups.
type Counterpart struct {
	ID          int64     `gorm:"column:id"`
	Name        string    `gorm:"column:name"`
	Street      string    `gorm:"column:street"`
	ZIP         string    `gorm:"column:zip"`
	City        string    `gorm:"column:city"`
	Country     string    `gorm:"column:country"`
	CountryCode string    `gorm:"column:country_code"`
	Email       string    `gorm:"column:email"`
	Phone       string    `gorm:"column:phone"`
	Phone2      string    `gorm:"column:phone2"`
	Phone3      string    `gorm:"column:phone3"`
	IsCompany   bool      `gorm:"column:is_company"`
	CompanyName string    `gorm:"column:company_name"`
	CompanyID   string    `gorm:"column:company_id"`
	TaxID       string    `gorm:"column:tax_id"`
	VATID       string    `gorm:"column:vat_id"`
	DueDays     int       `gorm:"column:due_days"`
	PriceGroup  int       `gorm:"column:price_group"`
	AddedOn     time.Time `gorm:"column:added_on"`
	Note        string    `gorm:"column:note"`
}

// UserInput carries the fields of an upserted counterpart. An empty
// CompanyID requests an auto-generated one.
type UserInput struct {
	Name        string
	Street      string
	City        string
	ZIP         string
	Country     string
	CountryCode string
	Phone       string
	Email       string
	IsCompany   bool
	CompanyName string
	CompanyID   string
	TaxID       string
	VATID       string
}

// StateRow backs the counterpart change-detection fingerprint, one per
// normalized company id.
type StateRow struct {
	ID          int64  `gorm:"column:id"`
	CompanyID   string `gorm:"column:company_id"`
	UpdateCount int64  `gorm:"column:sum_update_count"`
}

// FinanceStats summarizes a counterpart's stock movements for one store
// year: income and expense totals, and how much of the invoice-backed
// income is still unpaid.
type FinanceStats struct {
	Year                 int
	IncomeTotalAmount    decimal.Decimal
	IncomeMissingAmount  decimal.Decimal
	ExpenseTotalAmount   decimal.Decimal
	ExpenseMissingAmount decimal.Decimal
}
