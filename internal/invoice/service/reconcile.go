package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/benalexplus/mrpbridge/internal/invoice/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

type aggregation struct {
	payments []domain.Payment
	sum      decimal.Decimal
	paidDate *time.Time
}

// aggregate folds payment rows, already in canonical (paid_on, id) order,
// into the sum, the (amount, date) list and the latest payment date.
// An empty row set aggregates to a zero sum, never an engine NULL.
func aggregate(rows []domain.PaymentRow) aggregation {
	agg := aggregation{sum: decimal.Zero}
	for _, row := range rows {
		agg.payments = append(agg.payments, domain.Payment{Amount: row.Amount, Date: row.PaidOn})
		agg.sum = agg.sum.Add(row.Amount)
		if agg.paidDate == nil || row.PaidOn.After(*agg.paidDate) {
			paidOn := row.PaidOn
			agg.paidDate = &paidOn
		}
	}
	return agg
}

// reconcile turns base rows into fully derived invoices: payment
// aggregation, status flags, proforma redirection and flag strings.
// "Now" is read once, so every invoice of one pass sees the same day.
func (s *Service) reconcile(ctx context.Context, sess *db.Session, rows []domain.Row) ([]*domain.Invoice, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	paymentRows, err := s.repo.PaymentsByInvoiceIDs(ctx, sess.DB(), ids)
	if err != nil {
		return nil, err
	}
	byInvoice := make(map[int64][]domain.PaymentRow, len(rows))
	for _, p := range paymentRows {
		byInvoice[p.InvoiceID] = append(byInvoice[p.InvoiceID], p)
	}

	today := dateOnly(s.clk.Now())
	yesterday := today.AddDate(0, 0, -1)

	invoices := make([]*domain.Invoice, 0, len(rows))
	for _, row := range rows {
		inv := &domain.Invoice{
			ID:                   row.ID,
			CustomerName:         row.CustomerName,
			CompanyName:          row.CompanyName,
			CompanyID:            row.CompanyID,
			TaxID:                row.TaxID,
			VATID:                row.VATID,
			VariableSymbol:       row.VariableSymbol,
			PaidByVariableSymbol: row.PaidByVariableSymbol,
			IssueDate:            row.IssueDate,
			IssuedAt:             row.IssuedAt,
			DueDate:              row.DueDate,
			ShippingMethod:       row.ShippingMethod,
			PaymentMethod:        row.PaymentMethod,
			Total:                row.Total,
		}

		agg := aggregate(byInvoice[row.ID])
		inv.Payments = agg.payments
		inv.PaymentsSum = agg.sum
		inv.PaidDate = agg.paidDate
		inv.Missing = inv.Total.Sub(inv.PaymentsSum)

		inv.IsPaid = inv.PaymentsSum.GreaterThanOrEqual(inv.Total)
		inv.IsPartiallyPaid = inv.PaymentsSum.LessThan(inv.Total)
		inv.IsOverpaid = inv.PaymentsSum.GreaterThan(inv.Total)
		inv.IsCreditNote = inv.Total.IsNegative()
		inv.IsProforma = strings.HasPrefix(inv.VariableSymbol, s.biz.ProformaPrefix)

		// Overdue measures against the last payment when one exists,
		// against today while nothing was paid yet.
		reference := today
		if inv.PaidDate != nil {
			reference = dateOnly(*inv.PaidDate)
		}
		due := dateOnly(inv.DueDate)
		inv.IsOverdue = due.Before(reference)
		inv.IsFreshOverdue = due.Equal(yesterday)

		// Zero-total invoices are a priori paid.
		if inv.Total.IsZero() {
			inv.IsPaid = true
		}

		if inv.IsProforma && inv.PaidByVariableSymbol != "" {
			if err := s.redirectProforma(ctx, sess, inv); err != nil {
				return nil, err
			}
		}

		inv.Flags, inv.FlagsShort = flagStrings(inv)
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// redirectProforma replaces a proforma's own payment aggregation with
// that of the real invoice referenced by paid_by_variable_symbol. The
// substituted sum is capped at the proforma's total: the real invoice may
// have collected more, and counting the surplus here would report the
// same overpayment on both documents.
func (s *Service) redirectProforma(ctx context.Context, sess *db.Session, inv *domain.Invoice) error {
	realID, err := s.repo.IDByVariableSymbol(ctx, sess.DB(), inv.PaidByVariableSymbol)
	if err != nil {
		return err
	}
	if realID == 0 {
		// Dangling reference; keep the proforma's own aggregation.
		return nil
	}

	paymentRows, err := s.repo.PaymentsByInvoiceIDs(ctx, sess.DB(), []int64{realID})
	if err != nil {
		return err
	}
	agg := aggregate(paymentRows)
	if agg.sum.GreaterThan(inv.Total) {
		agg.sum = inv.Total
	}

	inv.Payments = agg.payments
	inv.PaymentsSum = agg.sum
	inv.PaidDate = agg.paidDate
	inv.Missing = inv.Total.Sub(agg.sum)
	inv.IsPaid = agg.sum.GreaterThanOrEqual(inv.Total)
	inv.IsOverpaid = agg.sum.GreaterThan(inv.Total)
	return nil
}

func flagStrings(inv *domain.Invoice) (string, string) {
	var flags, short []string
	if inv.IsPartiallyPaid {
		flags = append(flags, domain.FlagPartiallyPaid)
		short = append(short, domain.FlagPartiallyPaidShort)
	}
	if inv.IsCreditNote {
		flags = append(flags, domain.FlagCreditNote)
		short = append(short, domain.FlagCreditNoteShort)
	}
	if inv.IsProforma {
		flags = append(flags, domain.FlagProforma)
		short = append(short, domain.FlagProformaShort)
	}
	if inv.IsOverpaid {
		flags = append(flags, domain.FlagOverpaid)
		short = append(short, domain.FlagOverpaidShort)
	}
	if inv.IsOverdue || inv.IsFreshOverdue {
		flags = append(flags, domain.FlagOverdue)
		short = append(short, domain.FlagOverdueShort)
	}
	return strings.Join(flags, ","), strings.Join(short, ",")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
