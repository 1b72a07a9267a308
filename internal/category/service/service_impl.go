package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/category/domain"
	"github.com/benalexplus/mrpbridge/internal/statehash"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

// Service exposes the category tree and its change-detection snapshot.
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

func (s *Service) ByIDs(ctx context.Context, sess *db.Session, ids []int64) ([]domain.Category, error) {
	return s.repo.ByIDs(ctx, sess.DB(), ids)
}

func (s *Service) ByNumbers(ctx context.Context, sess *db.Session, numbers []int64) ([]domain.Category, error) {
	return s.repo.ByNumbers(ctx, sess.DB(), numbers)
}

// Tree returns every category; consumers rebuild the hierarchy from
// ParentNumber and order siblings by Position.
func (s *Service) Tree(ctx context.Context, sess *db.Session) ([]domain.Category, error) {
	return s.repo.All(ctx, sess.DB())
}

// States returns the change-detection fingerprints of all categories,
// ordered by id ascending.
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
				row.Name,
				statehash.Int(row.Number),
				statehash.Int(row.ParentNumber),
				statehash.Int(row.Position),
			),
		})
	}
	return states, nil
}
