package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is the raw base projection of one invoice joined to its
// counterpart, before payment aggregation and flag derivation.
type Row struct {
	ID                   int64           `gorm:"column:id"`
	CustomerName         string          `gorm:"column:customer_name"`
	CompanyName          string          `gorm:"column:company_name"`
	CompanyID            string          `gorm:"column:company_id"`
	TaxID                string          `gorm:"column:tax_id"`
	VATID                string          `gorm:"column:vat_id"`
	VariableSymbol       string          `gorm:"column:variable_symbol"`
	PaidByVariableSymbol string          `gorm:"column:paid_by_variable_symbol"`
	IssueDate            time.Time       `gorm:"column:issue_date"`
	IssuedAt             time.Time       `gorm:"column:issued_at"`
	DueDate              time.Time       `gorm:"column:due_date"`
	Total                decimal.Decimal `gorm:"column:total"`
	ShippingMethod       string          `gorm:"column:shipping_method"`
	PaymentMethod        string          `gorm:"column:payment_method"`
}

// PaymentRow is one payment row of an invoice, ordered canonically by
// (paid_on, id) when fetched.
type PaymentRow struct {
	ID        int64           `gorm:"column:id"`
	InvoiceID int64           `gorm:"column:invoice_id"`
	Amount    decimal.Decimal `gorm:"column:amount"`
	PaidOn    time.Time       `gorm:"column:paid_on"`
}

// Payment is the (amount, date) view of one settled amount exposed on a
// reconciled invoice.
type Payment struct {
	Amount decimal.Decimal
	Date   time.Time
}

// Invoice is the reconciled view: base projection plus payment
// aggregation, derived status flags and the flag strings.
type Invoice struct {
	ID                   int64
	CustomerName         string
	CompanyName          string
	CompanyID            string
	TaxID                string
	VATID                string
	VariableSymbol       string
	PaidByVariableSymbol string
	IssueDate            time.Time
	IssuedAt             time.Time
	DueDate              time.Time
	ShippingMethod       string
	PaymentMethod        string

	Total       decimal.Decimal
	Missing     decimal.Decimal
	PaymentsSum decimal.Decimal
	Payments    []Payment
	// PaidDate is the latest payment date, nil while nothing was paid.
	PaidDate *time.Time

	IsPaid          bool
	IsPartiallyPaid bool
	IsOverpaid      bool
	IsProforma      bool
	IsOverdue       bool
	IsFreshOverdue  bool
	IsCreditNote    bool

	// Flags and FlagsShort are the human-readable and short-code flag
	// strings, comma-joined in fixed precedence order.
	Flags      string
	FlagsShort string
}

// StateRow backs the invoice change-detection fingerprint.
type StateRow struct {
	ID          int64           `gorm:"column:id"`
	UpdateCount int64           `gorm:"column:update_count"`
	Total       decimal.Decimal `gorm:"column:total"`
	PaymentsSum decimal.Decimal `gorm:"column:payments_sum"`
}

// DateRangeReport wraps invoices of an issue-date or payment-date range
// with summary totals. TotalAmount excludes proforma invoices so money
// already counted on the settling real invoice is not counted twice;
// MissingAmount includes them.
type DateRangeReport struct {
	Invoices      []*Invoice
	TotalAmount   decimal.Decimal
	MissingAmount decimal.Decimal
}

// DueDateReport additionally counts invoices still unpaid.
type DueDateReport struct {
	Invoices      []*Invoice
	TotalAmount   decimal.Decimal
	MissingAmount decimal.Decimal
	MissingCount  int
}

// UnpaidReport lists unpaid invoices with the overdue subset.
type UnpaidReport struct {
	Invoices        []*Invoice
	OverdueInvoices []*Invoice
	TotalAmount     decimal.Decimal
	MissingAmount   decimal.Decimal
	OverdueAmount   decimal.Decimal
}

// OverpaidReport lists overpaid invoices; OverpaidAmount sums their
// (negative) missing amounts.
type OverpaidReport struct {
	Invoices       []*Invoice
	OverpaidAmount decimal.Decimal
}

// ExposureReport summarizes outstanding receivables as of a date.
type ExposureReport struct {
	Invoices        int
	Exposure        decimal.Decimal
	OverdueInvoices int
	OverdueExposure decimal.Decimal
}
