package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Row is one raw point-of-sale receipt: the booked amount plus the
// fiscal payload as stored by the register. A non-empty storno uid marks
// a refund.
type Row struct {
	ID        int64           `gorm:"column:id"`
	Amount    decimal.Decimal `gorm:"column:amount"`
	LoggedAt  time.Time       `gorm:"column:logged_at"`
	Payload   datatypes.JSON  `gorm:"column:payload"`
	StornoUID string          `gorm:"column:storno_uid"`
}

// Payload is the fiscal receipt envelope embedded in each row.
type Payload struct {
	ReceiptData ReceiptData `json:"ReceiptData"`
}

type ReceiptData struct {
	ReceiptType   string       `json:"ReceiptType"`
	InvoiceNumber string       `json:"InvoiceNumber"`
	Custom        CustomFields `json:"Custom"`
	Items         []Item       `json:"Items"`
}

type CustomFields struct {
	Cashier     string          `json:"Cashier"`
	PaymentCard decimal.Decimal `json:"PaymentCard"`
	PaymentCash decimal.Decimal `json:"PaymentCash"`
}

type Item struct {
	Price    decimal.Decimal `json:"Price"`
	ItemType string          `json:"ItemType"`
}

// Record is one parsed receipt.
type Record struct {
	ID             int64
	Amount         decimal.Decimal
	LoggedAt       time.Time
	Cashier        string
	Card           decimal.Decimal
	Cash           decimal.Decimal
	Discount       decimal.Decimal
	IsRefund       bool
	VariableSymbol string
}

// DayReport aggregates one day of receipts. Refunds count into every
// monetary total but are dropped from the per-cashier counts.
type DayReport struct {
	Records        []Record
	CardAmount     decimal.Decimal
	CashAmount     decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Customers      int
	CashierStats   map[string]int
}
