package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/benalexplus/mrpbridge/internal/clock"
	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/idalloc"
	"github.com/benalexplus/mrpbridge/internal/invoice/repository"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE invoices (
			id INTEGER PRIMARY KEY,
			company_id TEXT DEFAULT '',
			variable_symbol TEXT NOT NULL,
			paid_by_variable_symbol TEXT DEFAULT '',
			issue_date DATE,
			issued_at TIMESTAMP,
			due_date DATE,
			total NUMERIC NOT NULL,
			shipping_method TEXT DEFAULT '',
			payment_method TEXT DEFAULT '',
			update_count INTEGER DEFAULT 0
		)`,
		`CREATE TABLE invoice_payments (
			id INTEGER PRIMARY KEY,
			invoice_id INTEGER NOT NULL,
			bank_id INTEGER,
			amount NUMERIC NOT NULL,
			amount_currency NUMERIC,
			amount_currency_invoice NUMERIC,
			paid_on DATE,
			method INTEGER,
			currency TEXT,
			log_user TEXT,
			logged_at TIMESTAMP,
			update_count INTEGER DEFAULT 0
		)`,
		`CREATE TABLE counterparts (
			id INTEGER PRIMARY KEY,
			name TEXT DEFAULT '',
			company_name TEXT DEFAULT '',
			company_id TEXT DEFAULT '',
			tax_id TEXT DEFAULT '',
			vat_id TEXT DEFAULT ''
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, gdb.Exec(stmt).Error)
	}
	return gdb
}

func newTestService(t *testing.T, clk clock.Clock) (*Service, *gorm.DB) {
	t.Helper()

	gdb := openTestDB(t)
	cfg := config.Config{Business: config.DefaultBusiness()}
	svc := New(Param{
		Repo:   repository.Provide(cfg),
		Config: cfg,
		Clock:  clk,
		Alloc:  idalloc.MaxPlusOne{},
		Log:    zap.NewNop(),
	})
	return svc, gdb
}

func openSession(t *testing.T, gdb *gorm.DB) *db.Session {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	sess, err := db.OpenSession(context.Background(), gdb, zap.NewNop(), node)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedInvoice(t *testing.T, sess *db.Session, id int64, symbol, paidBy string, issue, due time.Time, total string) {
	t.Helper()
	err := sess.DB().Exec(`
		INSERT INTO invoices (id, company_id, variable_symbol, paid_by_variable_symbol, issue_date, issued_at, due_date, total, update_count)
		VALUES (?, '', ?, ?, ?, ?, ?, ?, 0)`,
		id, symbol, paidBy, issue, issue, due, total).Error
	require.NoError(t, err)
}

func seedPayment(t *testing.T, sess *db.Session, id, invoiceID int64, amount string, paidOn time.Time) {
	t.Helper()
	err := sess.DB().Exec(`
		INSERT INTO invoice_payments (id, invoice_id, bank_id, amount, amount_currency, amount_currency_invoice, paid_on, method, currency, log_user, logged_at, update_count)
		VALUES (?, ?, 6101, ?, ?, ?, ?, 1, 'EUR', 'MRPDBA', ?, 0)`,
		id, invoiceID, amount, amount, amount, paidOn, paidOn).Error
	require.NoError(t, err)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPartialPaymentAggregation(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	seedInvoice(t, sess, 1, "2026001", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedPayment(t, sess, 1, 1, "40", day(2026, 3, 2))
	seedPayment(t, sess, 2, 1, "30", day(2026, 3, 5))

	inv, err := svc.ByID(ctx, sess, 1)
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.True(t, inv.PaymentsSum.Equal(amount("70")), "sum = %s", inv.PaymentsSum)
	assert.True(t, inv.Missing.Equal(amount("30")), "missing = %s", inv.Missing)
	assert.True(t, inv.Missing.Add(inv.PaymentsSum).Equal(inv.Total))
	assert.False(t, inv.IsPaid)
	assert.True(t, inv.IsPartiallyPaid)
	assert.False(t, inv.IsOverpaid)
	assert.Len(t, inv.Payments, 2)
	require.NotNil(t, inv.PaidDate)
	assert.Equal(t, day(2026, 3, 5), dateOnly(*inv.PaidDate))
	assert.Equal(t, "ČIASTOČNE UHRADENÁ", inv.Flags)
	assert.Equal(t, "ČU", inv.FlagsShort)
}

func TestZeroTotalInvoiceIsPaid(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026002", "", day(2026, 3, 1), day(2026, 3, 15), "0")

	inv, err := svc.ByID(context.Background(), sess, 1)
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.True(t, inv.IsPaid)
	assert.True(t, inv.Missing.IsZero())
}

func TestUnknownInvoiceReturnsNil(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	inv, err := svc.ByID(context.Background(), sess, 999)
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestProformaRedirectionCapsAtOwnTotal(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	// Real invoice collected 150; the proforma it settles is only worth 100.
	seedInvoice(t, sess, 1, "2026003", "", day(2026, 3, 1), day(2026, 3, 15), "150")
	seedInvoice(t, sess, 2, "9202603", "2026003", day(2026, 2, 20), day(2026, 3, 6), "100")
	seedPayment(t, sess, 1, 1, "150", day(2026, 3, 4))

	proforma, err := svc.ByID(ctx, sess, 2)
	require.NoError(t, err)
	require.NotNil(t, proforma)

	assert.True(t, proforma.IsProforma)
	assert.True(t, proforma.PaymentsSum.Equal(amount("100")), "sum = %s", proforma.PaymentsSum)
	assert.True(t, proforma.Missing.IsZero())
	assert.True(t, proforma.IsPaid)
	assert.False(t, proforma.IsOverpaid)
}

func TestProformaWithDanglingReferenceKeepsOwnPayments(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "9202604", "2026999", day(2026, 2, 20), day(2026, 3, 6), "100")
	seedPayment(t, sess, 1, 1, "100", day(2026, 3, 1))

	inv, err := svc.ByID(context.Background(), sess, 1)
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.True(t, inv.IsPaid)
	assert.True(t, inv.PaymentsSum.Equal(amount("100")))
}

func TestOverdueFlags(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	// Due yesterday, unpaid: overdue and freshly overdue.
	seedInvoice(t, sess, 1, "2026010", "", day(2026, 2, 20), day(2026, 3, 9), "50")
	// Long overdue, unpaid.
	seedInvoice(t, sess, 2, "2026011", "", day(2026, 1, 5), day(2026, 1, 20), "50")
	// Paid before due: never overdue, whatever today is.
	seedInvoice(t, sess, 3, "2026012", "", day(2026, 1, 5), day(2026, 1, 20), "50")
	seedPayment(t, sess, 1, 3, "50", day(2026, 1, 15))
	// Paid, but only after due: stays overdue.
	seedInvoice(t, sess, 4, "2026013", "", day(2026, 1, 5), day(2026, 1, 20), "50")
	seedPayment(t, sess, 2, 4, "50", day(2026, 2, 1))

	byID := map[int64]bool{}
	invoices, err := svc.ByIDs(ctx, sess, []int64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, invoices, 4)

	for _, inv := range invoices {
		byID[inv.ID] = true
		switch inv.ID {
		case 1:
			assert.True(t, inv.IsOverdue, "id 1 overdue")
			assert.True(t, inv.IsFreshOverdue, "id 1 fresh overdue")
			assert.Contains(t, inv.FlagsShort, "PS")
		case 2:
			assert.True(t, inv.IsOverdue, "id 2 overdue")
			assert.False(t, inv.IsFreshOverdue, "id 2 fresh overdue")
		case 3:
			assert.False(t, inv.IsOverdue, "id 3 overdue")
			assert.NotContains(t, inv.FlagsShort, "PS")
		case 4:
			assert.True(t, inv.IsOverdue, "id 4 overdue")
		}
	}
	assert.Len(t, byID, 4)
}

func TestCreditNoteFlag(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026020", "", day(2026, 3, 1), day(2026, 3, 15), "-120")

	inv, err := svc.ByID(context.Background(), sess, 1)
	require.NoError(t, err)
	require.NotNil(t, inv)

	assert.True(t, inv.IsCreditNote)
	assert.Contains(t, inv.Flags, "DOBROPIS")
	assert.Contains(t, inv.FlagsShort, "DP")
}

func TestUnpaidExcludesProformaSettledElsewhere(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	seedInvoice(t, sess, 1, "2026030", "", day(2026, 3, 1), day(2026, 3, 15), "200")
	seedPayment(t, sess, 1, 1, "200", day(2026, 3, 3))
	// Proforma with no payments of its own, settled through invoice 1.
	seedInvoice(t, sess, 2, "9202630", "2026030", day(2026, 2, 20), day(2026, 3, 6), "200")
	// Genuinely unpaid and long overdue.
	seedInvoice(t, sess, 3, "2026031", "", day(2026, 1, 5), day(2026, 1, 20), "80")

	report, err := svc.Unpaid(ctx, sess)
	require.NoError(t, err)

	require.Len(t, report.Invoices, 1)
	assert.Equal(t, int64(3), report.Invoices[0].ID)
	assert.True(t, report.MissingAmount.Equal(amount("80")), "missing = %s", report.MissingAmount)
	require.Len(t, report.OverdueInvoices, 1)
	assert.True(t, report.OverdueAmount.Equal(amount("80")))
}

func TestOverpaidReport(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026040", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedPayment(t, sess, 1, 1, "130", day(2026, 3, 2))
	seedInvoice(t, sess, 2, "2026041", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedPayment(t, sess, 2, 2, "100", day(2026, 3, 2))

	report, err := svc.Overpaid(context.Background(), sess)
	require.NoError(t, err)

	require.Len(t, report.Invoices, 1)
	assert.Equal(t, int64(1), report.Invoices[0].ID)
	assert.Contains(t, report.Invoices[0].FlagsShort, "PP")
	assert.True(t, report.OverpaidAmount.Equal(amount("-30")), "overpaid = %s", report.OverpaidAmount)
}

func TestDateRangeReportExcludesProformaTotals(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026050", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedInvoice(t, sess, 2, "9202650", "", day(2026, 3, 1), day(2026, 3, 15), "60")

	report, err := svc.ByDate(context.Background(), sess, day(2026, 3, 1))
	require.NoError(t, err)

	require.Len(t, report.Invoices, 2)
	assert.True(t, report.TotalAmount.Equal(amount("100")), "total = %s", report.TotalAmount)
	assert.True(t, report.MissingAmount.Equal(amount("160")), "missing = %s", report.MissingAmount)
}

func TestByDueDateCountsUnpaid(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	due := day(2026, 3, 15)
	seedInvoice(t, sess, 1, "2026060", "", day(2026, 3, 1), due, "100")
	seedInvoice(t, sess, 2, "2026061", "", day(2026, 3, 1), due, "50")
	seedPayment(t, sess, 1, 2, "50", day(2026, 3, 5))

	report, err := svc.ByDueDate(context.Background(), sess, due)
	require.NoError(t, err)

	require.Len(t, report.Invoices, 2)
	assert.Equal(t, 1, report.MissingCount)
	assert.True(t, report.TotalAmount.Equal(amount("150")))
	assert.True(t, report.MissingAmount.Equal(amount("100")))
}

func TestPaidByDateRange(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026070", "", day(2026, 2, 1), day(2026, 2, 15), "100")
	seedPayment(t, sess, 1, 1, "100", day(2026, 3, 2))
	seedInvoice(t, sess, 2, "2026071", "", day(2026, 2, 1), day(2026, 2, 15), "100")
	seedPayment(t, sess, 2, 2, "100", day(2026, 1, 10))

	report, err := svc.PaidByDateRange(context.Background(), sess, day(2026, 3, 1), day(2026, 3, 5), false)
	require.NoError(t, err)

	require.Len(t, report.Invoices, 1)
	assert.Equal(t, int64(1), report.Invoices[0].ID)
}

func TestExposureByDate(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	// Unpaid as of the cutoff, already overdue.
	seedInvoice(t, sess, 1, "2026080", "", day(2026, 1, 5), day(2026, 1, 20), "100")
	// Partially paid before the cutoff.
	seedInvoice(t, sess, 2, "2026081", "", day(2026, 1, 10), day(2026, 2, 28), "200")
	seedPayment(t, sess, 1, 2, "80", day(2026, 1, 20))
	// Fully settled before the cutoff: no exposure.
	seedInvoice(t, sess, 3, "2026082", "", day(2026, 1, 10), day(2026, 1, 24), "300")
	seedPayment(t, sess, 2, 3, "300", day(2026, 1, 15))
	// Settled only after the cutoff: still exposed on that day.
	seedInvoice(t, sess, 4, "2026083", "", day(2026, 1, 12), day(2026, 1, 26), "50")
	seedPayment(t, sess, 3, 4, "50", day(2026, 2, 20))
	// Proforma symbols never count.
	seedInvoice(t, sess, 5, "9202680", "", day(2026, 1, 5), day(2026, 1, 20), "999")

	report, err := svc.ExposureByDate(ctx, sess, day(2026, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Invoices)
	assert.True(t, report.Exposure.Equal(amount("270")), "exposure = %s", report.Exposure)
	assert.Equal(t, 2, report.OverdueInvoices)
	assert.True(t, report.OverdueExposure.Equal(amount("150")), "overdue = %s", report.OverdueExposure)
}

func TestStatesFingerprintChangesWithPayments(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	seedInvoice(t, sess, 1, "2026090", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedInvoice(t, sess, 2, "2026091", "", day(2026, 3, 1), day(2026, 3, 15), "100")

	before, err := svc.States(ctx, sess)
	require.NoError(t, err)
	require.Len(t, before, 2)
	assert.Equal(t, int64(1), before[0].ID)
	assert.Equal(t, int64(2), before[1].ID)
	// Identical rows with no payments digest identically.
	assert.Equal(t, before[0].Fingerprint, before[1].Fingerprint)

	seedPayment(t, sess, 1, 1, "40", day(2026, 3, 5))

	after, err := svc.States(ctx, sess)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.NotEqual(t, before[0].Fingerprint, after[0].Fingerprint)
	assert.Equal(t, before[1].Fingerprint, after[1].Fingerprint)
}

func TestAddPayment(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)
	ctx := context.Background()

	seedInvoice(t, sess, 1, "2026100", "", day(2026, 3, 1), day(2026, 3, 15), "100")
	seedPayment(t, sess, 7, 1, "40", day(2026, 3, 2))

	id, err := svc.AddPayment(ctx, sess, 1, amount("60"), day(2026, 3, 8))
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	inv, err := svc.ByID(ctx, sess, 1)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.True(t, inv.IsPaid)
	assert.True(t, inv.Missing.IsZero())

	var row struct {
		BankID   int    `gorm:"column:bank_id"`
		Currency string `gorm:"column:currency"`
		LogUser  string `gorm:"column:log_user"`
		Method   int    `gorm:"column:method"`
	}
	err = sess.DB().Raw(`SELECT bank_id, currency, log_user, method FROM invoice_payments WHERE id = ?`, id).Scan(&row).Error
	require.NoError(t, err)
	assert.Equal(t, 6101, row.BankID)
	assert.Equal(t, "EUR", row.Currency)
	assert.Equal(t, "MRPDBA", row.LogUser)
	assert.Equal(t, 1, row.Method)
}

func TestByVariableSymbols(t *testing.T) {
	clk := clock.NewFakeClock(day(2026, 3, 10))
	svc, gdb := newTestService(t, clk)
	sess := openSession(t, gdb)

	seedInvoice(t, sess, 1, "2026110", "", day(2026, 3, 1), day(2026, 3, 15), "10")
	seedInvoice(t, sess, 2, "2026111", "", day(2026, 3, 1), day(2026, 3, 15), "20")

	invoices, err := svc.ByVariableSymbols(context.Background(), sess, []string{"2026110", "2026111", "2026999"})
	require.NoError(t, err)
	assert.Len(t, invoices, 2)

	missing, err := svc.ByVariableSymbol(context.Background(), sess, "2026999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
