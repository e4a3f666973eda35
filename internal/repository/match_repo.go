package repository

import (
	"context"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/gorm"
)

// MatchRepository handles confirmed match persistence.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new MatchRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MatchRepository: repository instance bound to db.
func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a confirmed match row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tx: open transaction handle.
//   - match: confirmed match to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *MatchRepository) Create(ctx context.Context, tx *gorm.DB, match *domain.OcrMatch) error {
	return tx.WithContext(ctx).Create(match).Error
}

// ListByReceiptSeq retrieves confirmed matches for one raw receipt.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - seq: raw receipt correlation id.
// Returns:
//   - []domain.OcrMatch: matching rows in insertion order.
//   - error: non-nil if the query fails.
func (r *MatchRepository) ListByReceiptSeq(ctx context.Context, seq uint) ([]domain.OcrMatch, error) {
	var matches []domain.OcrMatch
	if err := r.db.WithContext(ctx).
		Where("raw_receipt_seq = ?", seq).
		Order("created_at").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}
