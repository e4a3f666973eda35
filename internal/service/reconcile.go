package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/logger"
	"github.com/jaehyun/stocklens/internal/repository"
	"gorm.io/gorm"
)

// ReconcileService turns confirmed matches into permanent match records and
// atomically adjusts inventory stock with an append-only audit entry. All writes
// for one confirmed item (match row, stock update, log entry) commit or roll
// back together.
type ReconcileService struct {
	db        *gorm.DB
	receipts  *repository.ReceiptRepository
	catalog   *repository.CatalogRepository
	inventory *repository.InventoryRepository
	matches   *repository.MatchRepository
	logger    *logger.Logger
}

// NewReconcileService creates a new reconciliation service.
func NewReconcileService(
	db *gorm.DB,
	receipts *repository.ReceiptRepository,
	catalog *repository.CatalogRepository,
	inventory *repository.InventoryRepository,
	matches *repository.MatchRepository,
	log *logger.Logger,
) *ReconcileService {
	return &ReconcileService{
		db:        db,
		receipts:  receipts,
		catalog:   catalog,
		inventory: inventory,
		matches:   matches,
		logger:    log,
	}
}

// ConfirmedItem is one user- or auto-confirmed line awaiting reconciliation.
// CorrectedName, when present and different from ItemName, marks the match as
// MANUAL. TargetID is a product id for MENU matches and an inventory id for
// INVENTORY restocks.
type ConfirmedItem struct {
	ItemName      string           `json:"item_name"`
	CorrectedName string           `json:"corrected_name,omitempty"`
	Quantity      int              `json:"quantity"`
	Price         int              `json:"price"`
	TotalAmount   int              `json:"total_amount"`
	MatchType     domain.MatchType `json:"match_type"`
	TargetID      string           `json:"target_id"`
}

// Confirm reconciles a set of confirmed items against one raw receipt. Items
// are processed in order; processing stops at the first failure, whose item is
// fully rolled back. Items reconciled before the failure stay committed.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - storeID: owning store ID.
//   - rawSeq: raw receipt correlation id the items belong to.
//   - items: confirmed items to reconcile.
// Returns:
//   - []domain.OcrMatch: match rows created, in item order.
//   - error: domain.ErrNotFound for unknown receipt/product/inventory,
//     domain.ErrValidation for malformed items.
func (s *ReconcileService) Confirm(ctx context.Context, storeID string, rawSeq uint, items []ConfirmedItem) ([]domain.OcrMatch, error) {
	if _, err := s.receipts.GetBySeq(ctx, rawSeq); err != nil {
		return nil, err
	}

	created := make([]domain.OcrMatch, 0, len(items))
	for i, item := range items {
		match, err := s.confirmItem(ctx, storeID, rawSeq, item)
		if err != nil {
			return created, fmt.Errorf("item %d (%s): %w", i, item.ItemName, err)
		}
		created = append(created, *match)
	}

	return created, nil
}

// confirmItem reconciles a single item inside one transaction.
func (s *ReconcileService) confirmItem(ctx context.Context, storeID string, rawSeq uint, item ConfirmedItem) (*domain.OcrMatch, error) {
	if item.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if item.TargetID == "" {
		return nil, fmt.Errorf("%w: missing target id", domain.ErrValidation)
	}

	name, method := item.ItemName, domain.MatchMethodAuto
	if item.CorrectedName != "" && item.CorrectedName != item.ItemName {
		name, method = item.CorrectedName, domain.MatchMethodManual
	}

	total := item.TotalAmount
	if total == 0 {
		total = item.Price * item.Quantity
	}

	match := &domain.OcrMatch{
		ID:            uuid.New().String(),
		StoreID:       storeID,
		RawReceiptSeq: rawSeq,
		ItemName:      name,
		Quantity:      item.Quantity,
		Price:         item.Price,
		TotalAmount:   total,
		MatchType:     item.MatchType,
		TargetID:      item.TargetID,
		MatchMethod:   method,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch item.MatchType {
		case domain.MatchTypeMenu:
			return s.applyMenuMatch(ctx, tx, match, item)
		case domain.MatchTypeInventory:
			return s.applyRestock(ctx, tx, match, item)
		default:
			return fmt.Errorf("%w: unknown match type %q", domain.ErrValidation, item.MatchType)
		}
	})
	if err != nil {
		return nil, err
	}

	return match, nil
}

// applyMenuMatch records a catalog-product match and deducts every recipe
// ingredient of the product. Each inventory row is locked before its
// read-modify-write so concurrent reconciliations serialize per row.
func (s *ReconcileService) applyMenuMatch(ctx context.Context, tx *gorm.DB, match *domain.OcrMatch, item ConfirmedItem) error {
	if _, err := s.catalog.GetProduct(ctx, item.TargetID); err != nil {
		return err
	}
	if err := s.matches.Create(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to create match record: %w", err)
	}

	lines, err := s.catalog.ListActiveRecipesForProduct(ctx, item.TargetID)
	if err != nil {
		return fmt.Errorf("failed to load recipe lines: %w", err)
	}

	for _, line := range lines {
		required := line.AmountPerUnit * item.Quantity

		inv, err := s.inventory.GetForUpdate(ctx, tx, line.InventoryID)
		if err != nil {
			return err
		}
		newStock := inv.Quantity - required

		// Negative stock is permitted: the deduction proceeds and is only
		// flagged, so late-arriving receipts cannot block sales records.
		if newStock < 0 {
			s.logger.WithFields(logger.Fields{
				logger.FieldInventoryID: inv.ID,
				"required":              required,
				"available":             inv.Quantity,
			}).Warn("Stock deduction goes negative")
		}

		if err := s.inventory.SetStock(ctx, tx, inv.ID, newStock); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		if err := s.inventory.AppendLog(ctx, tx, &domain.InventoryLog{
			ID:             uuid.New().String(),
			InventoryID:    inv.ID,
			MatchID:        match.ID,
			LogType:        domain.LogTypeDeduction,
			QuantityChange: -required,
			BeforeQuantity: inv.Quantity,
			AfterQuantity:  newStock,
			Reason:         fmt.Sprintf("receipt match: %s x%d", match.ItemName, item.Quantity),
			CreatedAt:      time.Now(),
		}); err != nil {
			return fmt.Errorf("failed to append inventory log: %w", err)
		}
	}

	return nil
}

// applyRestock records a direct inventory restock.
func (s *ReconcileService) applyRestock(ctx context.Context, tx *gorm.DB, match *domain.OcrMatch, item ConfirmedItem) error {
	inv, err := s.inventory.GetForUpdate(ctx, tx, item.TargetID)
	if err != nil {
		return err
	}

	if err := s.matches.Create(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to create match record: %w", err)
	}

	newStock := inv.Quantity + item.Quantity
	if err := s.inventory.SetStock(ctx, tx, inv.ID, newStock); err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if err := s.inventory.AppendLog(ctx, tx, &domain.InventoryLog{
		ID:             uuid.New().String(),
		InventoryID:    inv.ID,
		MatchID:        match.ID,
		LogType:        domain.LogTypeRestock,
		QuantityChange: item.Quantity,
		BeforeQuantity: inv.Quantity,
		AfterQuantity:  newStock,
		Reason:         fmt.Sprintf("restock: %s x%d", match.ItemName, item.Quantity),
		CreatedAt:      time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to append inventory log: %w", err)
	}

	return nil
}
