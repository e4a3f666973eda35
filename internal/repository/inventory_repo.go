package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository handles inventory stock reads and writes. Stock mutation
// must go through GetForUpdate inside a transaction so concurrent reconciliations
// against the same row serialize instead of losing updates.
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new InventoryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *InventoryRepository: repository instance bound to db.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetByID retrieves an inventory row by ID without locking.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: inventory ID.
// Returns:
//   - *domain.Inventory: inventory record if found.
//   - error: domain.ErrNotFound if no record matches; other errors verbatim.
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.Inventory, error) {
	return getInventory(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an inventory row with a row-level write lock. Must be
// called with a transaction handle; on PostgreSQL this issues SELECT ... FOR UPDATE,
// on SQLite the transaction's single-writer semantics provide the same guarantee.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tx: open transaction handle.
//   - id: inventory ID.
// Returns:
//   - *domain.Inventory: locked inventory record if found.
//   - error: domain.ErrNotFound if no record matches; other errors verbatim.
func (r *InventoryRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*domain.Inventory, error) {
	return getInventory(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func getInventory(q *gorm.DB, id string) (*domain.Inventory, error) {
	var inv domain.Inventory
	if err := q.First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &inv, nil
}

// SetStock writes a new stock quantity for an inventory row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tx: open transaction handle holding the row lock.
//   - id: inventory ID.
//   - quantity: new absolute stock value.
// Returns:
//   - error: non-nil if the update fails.
func (r *InventoryRepository) SetStock(ctx context.Context, tx *gorm.DB, id string, quantity int) error {
	return tx.WithContext(ctx).
		Model(&domain.Inventory{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// AppendLog inserts an append-only stock movement entry.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tx: open transaction handle.
//   - entry: log entry to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *InventoryRepository) AppendLog(ctx context.Context, tx *gorm.DB, entry *domain.InventoryLog) error {
	return tx.WithContext(ctx).Create(entry).Error
}

// ListLogs retrieves stock movement entries for an inventory row, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - inventoryID: inventory ID.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.InventoryLog: matching log entries.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) ListLogs(ctx context.Context, inventoryID string, limit, offset int) ([]domain.InventoryLog, error) {
	var logs []domain.InventoryLog
	if err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
