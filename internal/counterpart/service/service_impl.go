package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/clock"
	"github.com/benalexplus/mrpbridge/internal/config"
	"github.com/benalexplus/mrpbridge/internal/counterpart/domain"
	"github.com/benalexplus/mrpbridge/internal/idalloc"
	invoiceservice "github.com/benalexplus/mrpbridge/internal/invoice/service"
	"github.com/benalexplus/mrpbridge/internal/statehash"
	stockdomain "github.com/benalexplus/mrpbridge/internal/stockmovement/domain"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

// Service exposes counterpart lookups, the user upsert and per-company
// finance stats assembled from stock movements and invoices.
type Service struct {
	repo      domain.Repository
	movements stockdomain.Repository
	invoices  *invoiceservice.Service
	biz       config.Business
	clk       clock.Clock
	alloc     idalloc.Allocator
	log       *zap.Logger
}

type Param struct {
	fx.In

	Repo      domain.Repository
	Movements stockdomain.Repository
	Invoices  *invoiceservice.Service
	Config    config.Config
	Clock     clock.Clock
	Alloc     idalloc.Allocator
	Log       *zap.Logger
}

func New(p Param) *Service {
	return &Service{
		repo:      p.Repo,
		movements: p.Movements,
		invoices:  p.Invoices,
		biz:       p.Config.Business,
		clk:       p.Clock,
		alloc:     p.Alloc,
		log:       p.Log,
	}
}

// NormalizeCompanyID strips surrounding whitespace and inner spaces, the
// canonical form every company-id comparison uses.
func NormalizeCompanyID(companyID string) string {
	return strings.ReplaceAll(strings.TrimSpace(companyID), " ", "")
}

// ByID returns one counterpart, nil when the id is unknown.
func (s *Service) ByID(ctx context.Context, sess *db.Session, id int64) (*domain.Counterpart, error) {
	rows, err := s.ByIDs(ctx, sess, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Service) ByIDs(ctx context.Context, sess *db.Session, ids []int64) ([]domain.Counterpart, error) {
	return s.repo.ByIDs(ctx, sess.DB(), ids)
}

// ByCompanyID resolves the normalized company id to the highest-id row,
// nil when the company id is unknown.
func (s *Service) ByCompanyID(ctx context.Context, sess *db.Session, companyID string) (*domain.Counterpart, error) {
	id, err := s.repo.IDByCompanyID(ctx, sess.DB(), NormalizeCompanyID(companyID))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return s.ByID(ctx, sess, id)
}

// AddUser upserts a counterpart matched on the normalized company id and
// returns the row id plus the (possibly generated) company id. The
// small-note marker tags rows written through this layer.
func (s *Service) AddUser(ctx context.Context, sess *db.Session, in domain.UserInput) (int64, string, error) {
	in.CompanyID = NormalizeCompanyID(in.CompanyID)
	if in.CompanyID == "" {
		generated, err := s.generateCompanyID(ctx, sess)
		if err != nil {
			return 0, "", err
		}
		in.CompanyID = generated
	}

	updated, err := s.repo.UpdateByCompanyID(ctx, sess.DB(), in, s.biz.UserNoteMarker)
	if err != nil {
		return 0, "", err
	}
	if updated {
		id, err := s.repo.IDByCompanyID(ctx, sess.DB(), in.CompanyID)
		if err != nil {
			return 0, "", err
		}
		return id, in.CompanyID, nil
	}

	id, err := s.alloc.NextID(ctx, sess.DB(), "counterparts", "id")
	if err != nil {
		return 0, "", err
	}
	if err := s.repo.Insert(ctx, sess.DB(), id, in, s.biz.UserNoteMarker); err != nil {
		return 0, "", err
	}
	s.log.Debug("counterpart created",
		zap.Int64("id", id),
		zap.String("company_id", in.CompanyID),
	)
	return id, in.CompanyID, nil
}

// generateCompanyID continues the reserved-prefix numbering: highest
// existing generated id, numeric suffix incremented by one. The first
// generated id of an empty store is <prefix>1.
func (s *Service) generateCompanyID(ctx context.Context, sess *db.Session) (string, error) {
	last, err := s.repo.LastGeneratedCompanyID(ctx, sess.DB(), s.biz.CompanyIDPrefix)
	if err != nil {
		return "", err
	}
	suffix := 0
	if last != "" {
		suffix, err = strconv.Atoi(strings.TrimPrefix(last, s.biz.CompanyIDPrefix))
		if err != nil {
			return "", err
		}
	}
	return s.biz.CompanyIDPrefix + strconv.Itoa(suffix+1), nil
}

// States returns the change-detection fingerprints, one per normalized
// company id, ordered by the winning row id ascending.
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
				row.CompanyID,
				statehash.Int(row.UpdateCount),
			),
		})
	}
	return states, nil
}

// FinanceStats folds a counterpart's stock movements into income and
// expense totals. Invoice-backed income (movement kind 2) additionally
// reports how much of it is still unpaid, resolved through the invoices
// referenced by the movements' variable symbols.
func (s *Service) FinanceStats(ctx context.Context, sess *db.Session, companyID string) (*domain.FinanceStats, error) {
	rows, err := s.movements.ByCompanyID(ctx, sess.DB(), NormalizeCompanyID(companyID))
	if err != nil {
		return nil, err
	}

	stats := &domain.FinanceStats{
		Year:                 s.clk.Now().Year(),
		IncomeTotalAmount:    decimal.Zero,
		IncomeMissingAmount:  decimal.Zero,
		ExpenseTotalAmount:   decimal.Zero,
		ExpenseMissingAmount: decimal.Zero,
	}

	var invoiceSymbols []string
	for _, row := range rows {
		if row.IsExpense {
			stats.ExpenseTotalAmount = stats.ExpenseTotalAmount.Add(row.Total)
			continue
		}
		stats.IncomeTotalAmount = stats.IncomeTotalAmount.Add(row.Total)
		if row.MovementKind == 2 && row.VariableSymbol != "" {
			invoiceSymbols = append(invoiceSymbols, row.VariableSymbol)
		}
	}

	if len(invoiceSymbols) > 0 {
		invoices, err := s.invoices.ByVariableSymbols(ctx, sess, invoiceSymbols)
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			stats.IncomeMissingAmount = stats.IncomeMissingAmount.Add(inv.Missing)
		}
	}
	return stats, nil
}

// CompanyIDsWithMovements lists the normalized company ids that moved
// stock on the given date.
func (s *Service) CompanyIDsWithMovements(ctx context.Context, sess *db.Session, date time.Time) ([]string, error) {
	return s.movements.CompanyIDsOnDate(ctx, sess.DB(), date)
}
