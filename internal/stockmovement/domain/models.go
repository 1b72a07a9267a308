package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRow is one stock movement of a counterpart. Kind 2 movements
// are invoice-backed and carry the invoice's variable symbol.
type MovementRow struct {
	CompanyID      string          `gorm:"column:company_id"`
	MovementKind   int             `gorm:"column:movement_kind"`
	VariableSymbol string          `gorm:"column:variable_symbol"`
	Total          decimal.Decimal `gorm:"column:total"`
	IsExpense      bool            `gorm:"column:is_expense"`
	MovedOn        time.Time       `gorm:"column:moved_on"`
}
