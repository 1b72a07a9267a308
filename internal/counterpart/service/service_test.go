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
	"github.com/benalexplus/mrpbridge/internal/counterpart/domain"
	counterpartrepo "github.com/benalexplus/mrpbridge/internal/counterpart/repository"
	"github.com/benalexplus/mrpbridge/internal/idalloc"
	invoicerepo "github.com/benalexplus/mrpbridge/internal/invoice/repository"
	invoiceservice "github.com/benalexplus/mrpbridge/internal/invoice/service"
	stockrepo "github.com/benalexplus/mrpbridge/internal/stockmovement/repository"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE counterparts (
			id INTEGER PRIMARY KEY,
			name TEXT DEFAULT '',
			street TEXT DEFAULT '',
			city TEXT DEFAULT '',
			zip TEXT DEFAULT '',
			country TEXT DEFAULT '',
			country_code TEXT DEFAULT '',
			phone TEXT DEFAULT '',
			phone2 TEXT DEFAULT '',
			phone3 TEXT DEFAULT '',
			email TEXT DEFAULT '',
			individual TEXT DEFAULT 'T',
			company_name TEXT DEFAULT '',
			company_id TEXT DEFAULT '',
			tax_id TEXT DEFAULT '',
			vat_id TEXT DEFAULT '',
			due_days INTEGER,
			price_group INTEGER,
			added_on TIMESTAMP,
			note TEXT DEFAULT '',
			small_note TEXT DEFAULT '',
			update_count INTEGER DEFAULT 0
		)`,
		`CREATE TABLE stock_movements (
			id INTEGER PRIMARY KEY,
			company_id TEXT DEFAULT '',
			movement_kind INTEGER NOT NULL,
			stock_number INTEGER DEFAULT 1,
			variable_symbol TEXT DEFAULT '',
			total NUMERIC DEFAULT 0,
			is_expense INTEGER DEFAULT 0,
			moved_on DATE
		)`,
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
	invoices := invoiceservice.New(invoiceservice.Param{
		Repo:   invoicerepo.Provide(cfg),
		Config: cfg,
		Clock:  clk,
		Alloc:  idalloc.MaxPlusOne{},
		Log:    zap.NewNop(),
	})
	svc := New(Param{
		Repo:      counterpartrepo.Provide(cfg),
		Movements: stockrepo.Provide(cfg),
		Invoices:  invoices,
		Config:    cfg,
		Clock:     clk,
		Alloc:     idalloc.MaxPlusOne{},
		Log:       zap.NewNop(),
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

func TestByIDsNormalizesAndDefaults(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)

	err := sess.DB().Exec(`
		INSERT INTO counterparts (id, name, individual, company_id, tax_id)
		VALUES (1, ' Acme s.r.o. ', 'F', ' 12 345 678 ', ' 20 21 ')`).Error
	require.NoError(t, err)

	row, err := svc.ByID(context.Background(), sess, 1)
	require.NoError(t, err)
	require.NotNil(t, row)

	assert.Equal(t, "Acme s.r.o.", row.Name)
	assert.True(t, row.IsCompany)
	assert.Equal(t, "12345678", row.CompanyID)
	assert.Equal(t, "2021", row.TaxID)
	assert.Equal(t, 14, row.DueDays)
	assert.Equal(t, 1, row.PriceGroup)
}

func TestByCompanyIDPicksHighestRow(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)
	ctx := context.Background()

	err := sess.DB().Exec(`
		INSERT INTO counterparts (id, name, company_id)
		VALUES (1, 'Old row', '12345678'), (7, 'New row', ' 12345678 ')`).Error
	require.NoError(t, err)

	row, err := svc.ByCompanyID(ctx, sess, "12345678")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(7), row.ID)
	assert.Equal(t, "New row", row.Name)

	missing, err := svc.ByCompanyID(ctx, sess, "99999999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAddUserGeneratesCompanyID(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)
	ctx := context.Background()

	err := sess.DB().Exec(`
		INSERT INTO counterparts (id, name, company_id) VALUES (3, 'Earlier', 'A0123')`).Error
	require.NoError(t, err)

	id, companyID, err := svc.AddUser(ctx, sess, domain.UserInput{Name: "New Person"})
	require.NoError(t, err)
	assert.Equal(t, "A0124", companyID)
	assert.Equal(t, int64(4), id)

	var note string
	require.NoError(t, sess.DB().Raw(`SELECT small_note FROM counterparts WHERE id = ?`, id).Scan(&note).Error)
	assert.Equal(t, " - BENALEXPLUS INTRANET - ", note)
}

func TestAddUserFirstGeneratedCompanyID(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)

	_, companyID, err := svc.AddUser(context.Background(), sess, domain.UserInput{Name: "First"})
	require.NoError(t, err)
	assert.Equal(t, "A01", companyID)
}

func TestAddUserUpdatesExistingCompany(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)
	ctx := context.Background()

	err := sess.DB().Exec(`
		INSERT INTO counterparts (id, name, company_id, email)
		VALUES (5, 'Stale Name', '12345678', 'old@example.com')`).Error
	require.NoError(t, err)

	id, companyID, err := svc.AddUser(ctx, sess, domain.UserInput{
		Name:      "Fresh Name",
		Email:     "new@example.com",
		CompanyID: " 12345678 ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, "12345678", companyID)

	var row struct {
		Name  string `gorm:"column:name"`
		Email string `gorm:"column:email"`
	}
	require.NoError(t, sess.DB().Raw(`SELECT name, email FROM counterparts WHERE id = 5`).Scan(&row).Error)
	assert.Equal(t, "Fresh Name", row.Name)
	assert.Equal(t, "new@example.com", row.Email)

	var count int64
	require.NoError(t, sess.DB().Raw(`SELECT COUNT(1) FROM counterparts`).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStatesGroupByNormalizedCompanyID(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)
	ctx := context.Background()

	err := sess.DB().Exec(`
		INSERT INTO counterparts (id, name, company_id, update_count)
		VALUES (1, 'A', ' 111 ', 2), (2, 'A dup', '111', 3), (3, 'B', '222', 0)`).Error
	require.NoError(t, err)

	states, err := svc.States(ctx, sess)
	require.NoError(t, err)
	require.Len(t, states, 2)
	// Duplicate rows of one company fold into the highest id.
	assert.Equal(t, int64(2), states[0].ID)
	assert.Equal(t, int64(3), states[1].ID)

	first, err := svc.States(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, states, first)

	require.NoError(t, sess.DB().Exec(`UPDATE counterparts SET update_count = 9 WHERE id = 1`).Error)
	changed, err := svc.States(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, states[0].Fingerprint, changed[0].Fingerprint)
	assert.Equal(t, states[1].Fingerprint, changed[1].Fingerprint)
}

func TestFinanceStats(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)
	ctx := context.Background()

	// Invoice-backed income, partly unpaid.
	require.NoError(t, sess.DB().Exec(`
		INSERT INTO invoices (id, variable_symbol, issue_date, issued_at, due_date, total, update_count)
		VALUES (1, '2026001', ?, ?, ?, 100, 0)`, day(2026, 2, 1), day(2026, 2, 1), day(2026, 2, 15)).Error)
	require.NoError(t, sess.DB().Exec(`
		INSERT INTO invoice_payments (id, invoice_id, amount, amount_currency, amount_currency_invoice, paid_on, update_count)
		VALUES (1, 1, 60, 60, 60, ?, 0)`, day(2026, 2, 10)).Error)

	require.NoError(t, sess.DB().Exec(`
		INSERT INTO stock_movements (id, company_id, movement_kind, variable_symbol, total, is_expense, moved_on)
		VALUES
			(1, ' 111 ', 2, '2026001', 100, 0, ?),
			(2, '111', 1, '', 50, 0, ?),
			(3, '111', 3, '', 30, 1, ?),
			(4, '999', 2, '2026999', 500, 0, ?)`,
		day(2026, 2, 1), day(2026, 2, 2), day(2026, 2, 3), day(2026, 2, 4)).Error)

	stats, err := svc.FinanceStats(ctx, sess, "111")
	require.NoError(t, err)

	assert.Equal(t, 2026, stats.Year)
	assert.True(t, stats.IncomeTotalAmount.Equal(decimal.RequireFromString("150")), "income = %s", stats.IncomeTotalAmount)
	assert.True(t, stats.IncomeMissingAmount.Equal(decimal.RequireFromString("40")), "missing = %s", stats.IncomeMissingAmount)
	assert.True(t, stats.ExpenseTotalAmount.Equal(decimal.RequireFromString("30")), "expense = %s", stats.ExpenseTotalAmount)
	assert.True(t, stats.ExpenseMissingAmount.IsZero())
}

func TestCompanyIDsWithMovements(t *testing.T) {
	svc, gdb := newTestService(t, clock.NewFakeClock(day(2026, 3, 10)))
	sess := openSession(t, gdb)

	require.NoError(t, sess.DB().Exec(`
		INSERT INTO stock_movements (id, company_id, movement_kind, moved_on)
		VALUES
			(1, ' 111 ', 1, ?),
			(2, '111', 2, ?),
			(3, '', 1, ?),
			(4, '222', 9, ?),
			(5, '333', 3, ?)`,
		day(2026, 2, 1), day(2026, 2, 1), day(2026, 2, 1), day(2026, 2, 1), day(2026, 2, 2)).Error)

	ids, err := svc.CompanyIDsWithMovements(context.Background(), sess, day(2026, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"111"}, ids)
}
