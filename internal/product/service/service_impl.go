package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/benalexplus/mrpbridge/internal/product/domain"
	"github.com/benalexplus/mrpbridge/internal/statehash"
	"github.com/benalexplus/mrpbridge/pkg/db"
)

// Column widths of the legacy CHAR fields. Setters truncate silently at
// these limits; the target schema enforces the same widths.
const (
	maxLenEAN       = 25
	maxLenEshopFlag = 50
	maxLenEshopInfo = 50
	maxLenMetatags  = 50
	maxLenName      = 64
	maxLenSKU       = 64
	maxLenSmallNote = 50
)

// Service assembles the product catalog view (extension categories,
// compounded-product listings, stock) and carries the field setters.
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

// ByID returns one assembled product, nil when the id is unknown.
func (s *Service) ByID(ctx context.Context, sess *db.Session, id int64) (*domain.Product, error) {
	products, err := s.ByIDs(ctx, sess, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products[0], nil
}

// ByNumber resolves the product number to an id first; an unknown number
// yields nil, not an error.
func (s *Service) ByNumber(ctx context.Context, sess *db.Session, number int64) (*domain.Product, error) {
	id, err := s.repo.IDByNumber(ctx, sess.DB(), number)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return s.ByID(ctx, sess, id)
}

func (s *Service) ByIDs(ctx context.Context, sess *db.Session, ids []int64) ([]*domain.Product, error) {
	rows, err := s.repo.Rows(ctx, sess.DB(), ids)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rowIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		rowIDs = append(rowIDs, row.ID)
	}

	extRows, err := s.repo.ExtensionCategories(ctx, sess.DB(), rowIDs)
	if err != nil {
		return nil, err
	}
	extByProduct := make(map[int64][]int64)
	for _, ext := range extRows {
		extByProduct[ext.ProductID] = append(extByProduct[ext.ProductID], ext.CategoryNumber)
	}

	slaveRows, err := s.repo.SlaveRows(ctx, sess.DB(), rowIDs)
	if err != nil {
		return nil, err
	}
	slavesByMaster := make(map[int64][]domain.SlaveRow)
	for _, slave := range slaveRows {
		slavesByMaster[slave.MasterProductID] = append(slavesByMaster[slave.MasterProductID], slave)
	}

	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		product := &domain.Product{Row: row}

		if ext := extByProduct[row.ID]; len(ext) > 0 {
			sorted := make([]int64, len(ext))
			copy(sorted, ext)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			product.ExtensionCategories = sorted
		}

		if slaves := slavesByMaster[row.ID]; len(slaves) > 0 {
			names := make([]string, 0, len(slaves))
			skus := make([]string, 0, len(slaves))
			for _, slave := range slaves {
				names = append(names, fmt.Sprintf("%dx - %s", slave.SlaveCount, slave.Name))
				skus = append(skus, fmt.Sprintf("%dx - %s", slave.SlaveCount, slave.SKU))
			}
			product.SlaveProductNames = strings.Join(names, "|")
			product.SlaveProductSKUs = strings.Join(skus, "|")

			// A compounded product reports the stock of its first slave:
			// the listing sells as one unit but ships from the slave's
			// shelf.
			quantity, err := s.repo.StockQuantity(ctx, sess.DB(), slaves[0].SlaveProductID)
			if err != nil {
				return nil, err
			}
			product.StockQuantity = quantity
		}

		products = append(products, product)
	}
	return products, nil
}

// States returns the change-detection fingerprints of all products,
// ordered by id ascending. Sub-row aggregates (detail and status update
// counters, extension categories) are normalized to zero or empty when
// absent and the category list is sorted before hashing, so join order
// never leaks into the digest.
func (s *Service) States(ctx context.Context, sess *db.Session) ([]statehash.State, error) {
	rows, err := s.repo.StateRows(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	detailCounts, err := s.repo.DetailUpdateCounts(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.repo.StatusUpdateCounts(ctx, sess.DB())
	if err != nil {
		return nil, err
	}
	extRows, err := s.repo.ExtensionCategories(ctx, sess.DB(), idsOf(rows))
	if err != nil {
		return nil, err
	}

	detailByProduct := make(map[int64]int64, len(detailCounts))
	for _, c := range detailCounts {
		detailByProduct[c.ProductID] = c.Sum
	}
	statusByProduct := make(map[int64]int64, len(statusCounts))
	for _, c := range statusCounts {
		statusByProduct[c.ProductID] = c.Sum
	}
	extByProduct := make(map[int64][]string)
	for _, ext := range extRows {
		extByProduct[ext.ProductID] = append(extByProduct[ext.ProductID], statehash.Int(ext.CategoryNumber))
	}

	states := make([]statehash.State, 0, len(rows))
	for _, row := range rows {
		states = append(states, statehash.State{
			ID: row.ID,
			Fingerprint: statehash.Fingerprint(
				row.Name,
				statehash.Int(row.CategoryNumber),
				row.Metatags,
				row.EAN,
				row.SKU,
				row.EshopFlag,
				statehash.Int(row.Warranty),
				statehash.Int(row.StockMinimum),
				row.Attributes,
				statehash.Int(detailByProduct[row.ID]),
				statehash.Int(statusByProduct[row.ID]),
				statehash.List(extByProduct[row.ID]),
			),
		})
	}
	return states, nil
}

func idsOf(rows []domain.StateRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func (s *Service) SetName(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetName(ctx, sess.DB(), id, truncate(value, maxLenName))
}

func (s *Service) SetSKU(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetSKU(ctx, sess.DB(), id, truncate(value, maxLenSKU))
}

func (s *Service) SetEAN(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetEAN(ctx, sess.DB(), id, truncate(value, maxLenEAN))
}

func (s *Service) SetEshopFlag(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetEshopFlag(ctx, sess.DB(), id, truncate(value, maxLenEshopFlag))
}

func (s *Service) SetEshopInfo(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetEshopInfo(ctx, sess.DB(), id, truncate(value, maxLenEshopInfo))
}

func (s *Service) SetMetatags(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetMetatags(ctx, sess.DB(), id, truncate(value, maxLenMetatags))
}

func (s *Service) SetSmallNote(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetSmallNote(ctx, sess.DB(), id, truncate(value, maxLenSmallNote))
}

// SetAttributes and SetDescription write blob columns; no truncation,
// only newline normalization to the CRLF form the legacy editors save.
func (s *Service) SetAttributes(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.SetAttributes(ctx, sess.DB(), id, normalizeNewlines(value))
}

func (s *Service) SetDescription(ctx context.Context, sess *db.Session, id int64, value string) error {
	return s.repo.UpsertDescription(ctx, sess.DB(), id, normalizeNewlines(value))
}

// truncate cuts at rune boundaries; the store counts characters, not
// bytes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// normalizeNewlines renders text the way the legacy editors save blobs:
// every line stripped of surrounding whitespace, outer blank lines
// dropped, lines joined with CRLF.
func normalizeNewlines(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\r\n")
}
