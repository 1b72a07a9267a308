package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/cashregister/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

// Receipt type and item type codes of the fiscal register. Discounts
// exist only on PD (cash sale) receipts, as Z-typed line items.
const (
	receiptTypeCashSale = "PD"
	itemTypeDiscount    = "Z"
)

// Service parses receipt payloads and builds the daily reconciliation
// report.
type Service struct {
	repo domain.Repository
	log  *zap.Logger
}

type Param struct {
	fx.In

	Repo domain.Repository
	Log  *zap.Logger
}

func New(p Param) *Service {
	return &Service{repo: p.Repo, log: p.Log}
}

// DayReport reconciles one day of receipts: parsed records, monetary
// totals and per-cashier sale counts with refunds excluded from the
// counts.
func (s *Service) DayReport(ctx context.Context, sess *db.Session, date time.Time) (*domain.DayReport, error) {
	rows, err := s.repo.ByDate(ctx, sess.DB(), date)
	if err != nil {
		return nil, err
	}

	report := &domain.DayReport{
		CardAmount:     decimal.Zero,
		CashAmount:     decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		CashierStats:   map[string]int{},
	}

	for _, row := range rows {
		record, err := parseRecord(row)
		if err != nil {
			return nil, err
		}
		report.Records = append(report.Records, record)

		report.TotalAmount = report.TotalAmount.Add(record.Amount)
		report.CardAmount = report.CardAmount.Add(record.Card)
		report.CashAmount = report.CashAmount.Add(record.Cash)
		report.DiscountAmount = report.DiscountAmount.Add(record.Discount)
		if !record.IsRefund {
			report.CashierStats[record.Cashier]++
		}
	}
	for _, count := range report.CashierStats {
		report.Customers += count
	}
	return report, nil
}

func parseRecord(row domain.Row) (domain.Record, error) {
	var payload domain.Payload
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return domain.Record{}, fmt.Errorf("parse receipt %d payload: %w", row.ID, err)
	}
	data := payload.ReceiptData

	record := domain.Record{
		ID:             row.ID,
		Amount:         row.Amount,
		LoggedAt:       row.LoggedAt,
		Cashier:        data.Custom.Cashier,
		Card:           data.Custom.PaymentCard,
		Cash:           data.Custom.PaymentCash,
		Discount:       decimal.Zero,
		IsRefund:       row.StornoUID != "",
		VariableSymbol: data.InvoiceNumber,
	}
	if data.ReceiptType == receiptTypeCashSale {
		for _, item := range data.Items {
			if item.ItemType == itemTypeDiscount {
				record.Discount = record.Discount.Add(item.Price)
			}
		}
	}
	return record, nil
}
