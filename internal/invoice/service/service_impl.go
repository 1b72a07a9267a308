package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/clock"
	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/idalloc"
	"github.com/benalexplus/mrpbridge/internal/invoice/domain"
	"github.com/benalexplus/mrpbridge/internal/statehash"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

// Service reconciles invoices: payment aggregation, derived flags,
// proforma redirection, summary reports and the payment writer.
type Service struct {
	repo  domain.Repository
	biz   config.Business
	clk   clock.Clock
	alloc idalloc.Allocator
	log   *zap.Logger
}

type Param struct {
	fx.In

	Repo   domain.Repository
	Config config.Config
	Clock  clock.Clock
	Alloc  idalloc.Allocator
	Log    *zap.Logger
}

func New(p Param) *Service {
	return &Service{
		repo:  p.Repo,
		biz:   p.Config.Business,
		clk:   p.Clock,
		alloc: p.Alloc,
		log:   p.Log,
	}
}

// ByID returns one reconciled invoice, nil when the id is unknown.
func (s *Service) ByID(ctx context.Context, sess *db.Session, id int64) (*domain.Invoice, error) {
	invoices, err := s.ByIDs(ctx, sess, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return invoices[0], nil
}

func (s *Service) ByIDs(ctx context.Context, sess *db.Session, ids []int64) ([]*domain.Invoice, error) {
	rows, err := s.repo.ByIDs(ctx, sess.DB(), ids)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, sess, rows)
}

func (s *Service) ByCompanyID(ctx context.Context, sess *db.Session, companyID string) ([]*domain.Invoice, error) {
	rows, err := s.repo.ByCompanyID(ctx, sess.DB(), companyID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, sess, rows)
}

func (s *Service) ByPrice(ctx context.Context, sess *db.Session, price decimal.Decimal) ([]*domain.Invoice, error) {
	rows, err := s.repo.ByTotal(ctx, sess.DB(), price)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, sess, rows)
}

// ByVariableSymbol returns the invoice carrying the symbol, nil when the
// symbol matches nothing.
func (s *Service) ByVariableSymbol(ctx context.Context, sess *db.Session, symbol string) (*domain.Invoice, error) {
	invoices, err := s.ByVariableSymbols(ctx, sess, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return invoices[0], nil
}

func (s *Service) ByVariableSymbols(ctx context.Context, sess *db.Session, symbols []string) ([]*domain.Invoice, error) {
	rows, err := s.repo.ByVariableSymbols(ctx, sess.DB(), symbols)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, sess, rows)
}

func (s *Service) ByDate(ctx context.Context, sess *db.Session, date time.Time) (*domain.DateRangeReport, error) {
	return s.ByDateRange(ctx, sess, date, date)
}

func (s *Service) ByDateRange(ctx context.Context, sess *db.Session, from, to time.Time) (*domain.DateRangeReport, error) {
	rows, err := s.repo.ByIssueDateRange(ctx, sess.DB(), from, to)
	if err != nil {
		return nil, err
	}
	invoices, err := s.reconcile(ctx, sess, rows)
	if err != nil {
		return nil, err
	}
	return s.rangeReport(invoices), nil
}

func (s *Service) PaidByDate(ctx context.Context, sess *db.Session, date time.Time, reportMode bool) (*domain.DateRangeReport, error) {
	return s.PaidByDateRange(ctx, sess, date, date, reportMode)
}

func (s *Service) PaidByDateRange(ctx context.Context, sess *db.Session, from, to time.Time, reportMode bool) (*domain.DateRangeReport, error) {
	rows, err := s.repo.PaidInRange(ctx, sess.DB(), from, to, reportMode)
	if err != nil {
		return nil, err
	}
	invoices, err := s.reconcile(ctx, sess, rows)
	if err != nil {
		return nil, err
	}
	return s.rangeReport(invoices), nil
}

// rangeReport sums totals over a reconciled set. Proforma totals are
// excluded: the money is already counted on the settling real invoice.
// Missing amounts include proformas.
func (s *Service) rangeReport(invoices []*domain.Invoice) *domain.DateRangeReport {
	report := &domain.DateRangeReport{
		Invoices:      invoices,
		TotalAmount:   decimal.Zero,
		MissingAmount: decimal.Zero,
	}
	for _, inv := range invoices {
		if !inv.IsProforma {
			report.TotalAmount = report.TotalAmount.Add(inv.Total)
		}
		report.MissingAmount = report.MissingAmount.Add(inv.Missing)
	}
	return report
}

func (s *Service) ByDueDate(ctx context.Context, sess *db.Session, due time.Time) (*domain.DueDateReport, error) {
	rows, err := s.repo.ByDueDate(ctx, sess.DB(), due)
	if err != nil {
		return nil, err
	}
	invoices, err := s.reconcile(ctx, sess, rows)
	if err != nil {
		return nil, err
	}

	report := &domain.DueDateReport{
		Invoices:      invoices,
		TotalAmount:   decimal.Zero,
		MissingAmount: decimal.Zero,
	}
	for _, inv := range invoices {
		if !inv.IsProforma {
			report.TotalAmount = report.TotalAmount.Add(inv.Total)
		}
		report.MissingAmount = report.MissingAmount.Add(inv.Missing)
		if !inv.IsPaid {
			report.MissingCount++
		}
	}
	return report, nil
}

// Unpaid returns invoices still missing money. The unpaid predicate
// cannot live in SQL alone: proforma redirection may reclassify an
// invoice as paid through its real invoice, so the set is post-filtered
// here after reconciliation.
func (s *Service) Unpaid(ctx context.Context, sess *db.Session) (*domain.UnpaidReport, error) {
	rows, err := s.repo.All(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	reconciled, err := s.reconcile(ctx, sess, rows)
	if err != nil {
		return nil, err
	}

	report := &domain.UnpaidReport{
		TotalAmount:   decimal.Zero,
		MissingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, inv := range reconciled {
		if inv.IsPaid {
			continue
		}
		report.Invoices = append(report.Invoices, inv)
		report.TotalAmount = report.TotalAmount.Add(inv.Total)
		report.MissingAmount = report.MissingAmount.Add(inv.Missing)
		if inv.IsOverdue {
			report.OverdueInvoices = append(report.OverdueInvoices, inv)
			report.OverdueAmount = report.OverdueAmount.Add(inv.Missing)
		}
	}
	return report, nil
}

// Overpaid returns invoices holding more money than their total. Like
// Unpaid, the set is post-filtered after proforma redirection: a capped
// proforma is never overpaid.
func (s *Service) Overpaid(ctx context.Context, sess *db.Session) (*domain.OverpaidReport, error) {
	rows, err := s.repo.All(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	reconciled, err := s.reconcile(ctx, sess, rows)
	if err != nil {
		return nil, err
	}

	report := &domain.OverpaidReport{OverpaidAmount: decimal.Zero}
	for _, inv := range reconciled {
		if !inv.IsOverpaid {
			continue
		}
		report.Invoices = append(report.Invoices, inv)
		report.OverpaidAmount = report.OverpaidAmount.Add(inv.Missing)
	}
	return report, nil
}

// ExposureByDate reports receivables outstanding as of the given date:
// real (non-proforma) non-zero invoices issued up to the date and not yet
// settled by it. Partial payments reduce the exposure; invoices paid only
// after the date still count.
func (s *Service) ExposureByDate(ctx context.Context, sess *db.Session, date time.Time) (*domain.ExposureReport, error) {
	rows, err := s.repo.RealInvoicesIssuedUpTo(ctx, sess.DB(), s.biz.InvoicePrefix, date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &domain.ExposureReport{Exposure: decimal.Zero, OverdueExposure: decimal.Zero}, nil
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

	maxCreditNote := decimal.NewFromInt(int64(s.biz.MaxCreditNoteValue))
	report := &domain.ExposureReport{Exposure: decimal.Zero, OverdueExposure: decimal.Zero}
	cutoff := dateOnly(date)

	for _, row := range rows {
		agg := aggregate(byInvoice[row.ID])

		var outstanding decimal.Decimal
		if len(agg.payments) == 0 {
			if row.Total.LessThan(maxCreditNote) {
				continue
			}
			outstanding = row.Total
		} else {
			paidAfterCutoff := dateOnly(*agg.paidDate).After(cutoff)
			if !(paidAfterCutoff && agg.sum.LessThanOrEqual(row.Total)) && !agg.sum.LessThan(row.Total) {
				continue
			}
			outstanding = row.Total.Sub(agg.sum)
			if !outstanding.IsPositive() {
				outstanding = row.Total
			}
		}

		report.Invoices++
		report.Exposure = report.Exposure.Add(outstanding)
		if dateOnly(row.DueDate).Before(cutoff) {
			report.OverdueInvoices++
			report.OverdueExposure = report.OverdueExposure.Add(outstanding)
		}
	}
	return report, nil
}

// States returns the change-detection fingerprints of all invoices,
// ordered by id ascending. The fingerprint covers the row's update
// counter, total and payment sum; absent payments hash as zero.
func (s *Service) States(ctx context.Context, sess *db.Session) ([]statehash.State, error) {
	rows, err := s.repo.StateRows(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	states := make([]statehash.State, 0, len(rows))
	for _, row := range rows {
		states = append(states, statehash.State{
			ID: row.ID,
			Fingerprint: statehash.Fingerprint(
				statehash.Int(row.UpdateCount),
				statehash.Amount(row.Total),
				statehash.Amount(row.PaymentsSum),
			),
		})
	}
	return states, nil
}

// AddPayment records one payment against an invoice and returns the new
// payment id. Bank, currency, method and log user are the fixed business
// constants of this layer.
func (s *Service) AddPayment(ctx context.Context, sess *db.Session, invoiceID int64, amount decimal.Decimal, paidOn time.Time) (int64, error) {
	id, err := s.alloc.NextID(ctx, sess.DB(), "invoice_payments", "id")
	if err != nil {
		return 0, err
	}

	err = s.repo.InsertPayment(ctx, sess.DB(), domain.PaymentInsert{
		ID:        id,
		InvoiceID: invoiceID,
		BankID:    s.biz.PaymentBankID,
		Amount:    amount,
		Currency:  s.biz.PaymentCurrency,
		PaidOn:    paidOn,
		Method:    s.biz.PaymentMethod,
		LogUser:   s.biz.PaymentLogUser,
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("payment recorded",
		zap.Int64("invoice_id", invoiceID),
		zap.Int64("payment_id", id),
		zap.String("amount", amount.String()),
	)
	return id, nil
}
