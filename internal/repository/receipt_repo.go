package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/gorm"
)

// ReceiptRepository handles raw receipt persistence. Raw receipts are the first
// phase of the two-phase design: OCR output is captured here before any matching
// decision has been made.
type ReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new ReceiptRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ReceiptRepository: repository instance bound to db.
func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a raw receipt record. The Seq correlation id is generated by the
// database and populated on the passed record after insert.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - receipt: raw receipt record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *domain.RawReceipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to create raw receipt: %w", err)
	}
	return nil
}

// GetBySeq retrieves a raw receipt by its numeric correlation id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - seq: correlation id assigned on insert.
// Returns:
//   - *domain.RawReceipt: receipt record if found.
//   - error: domain.ErrNotFound if no record matches; other errors verbatim.
func (r *ReceiptRepository) GetBySeq(ctx context.Context, seq uint) (*domain.RawReceipt, error) {
	var receipt domain.RawReceipt
	if err := r.db.WithContext(ctx).First(&receipt, "seq = ?", seq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("raw receipt seq %d: %w", seq, domain.ErrNotFound)
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByID retrieves a raw receipt by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: receipt ID.
// Returns:
//   - *domain.RawReceipt: receipt record if found.
//   - error: domain.ErrNotFound if no record matches; other errors verbatim.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*domain.RawReceipt, error) {
	var receipt domain.RawReceipt
	if err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("raw receipt %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &receipt, nil
}

// ListByStore retrieves raw receipts for a store with pagination, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - storeID: owning store ID.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.RawReceipt: matching receipt records.
//   - error: non-nil if the query fails.
func (r *ReceiptRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]domain.RawReceipt, error) {
	var receipts []domain.RawReceipt
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}
