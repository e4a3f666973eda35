package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/gorm"
)

func TestInventoryStockMutationInTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.Inventory{
		ID: "inv-1", StoreID: "store-1", Name: "원두", Unit: "g", Quantity: 200,
	}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		inv, err := repo.GetForUpdate(ctx, tx, "inv-1")
		if err != nil {
			return err
		}
		newStock := inv.Quantity - 150
		if err := repo.SetStock(ctx, tx, inv.ID, newStock); err != nil {
			return err
		}
		return repo.AppendLog(ctx, tx, &domain.InventoryLog{
			ID:             "log-1",
			InventoryID:    inv.ID,
			MatchID:        "match-1",
			LogType:        domain.LogTypeDeduction,
			QuantityChange: -150,
			BeforeQuantity: inv.Quantity,
			AfterQuantity:  newStock,
		})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	inv, err := repo.GetByID(ctx, "inv-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if inv.Quantity != 50 {
		t.Errorf("stock = %d, want 50", inv.Quantity)
	}

	logs, err := repo.ListLogs(ctx, "inv-1", 10, 0)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	if logs[0].AfterQuantity != logs[0].BeforeQuantity+logs[0].QuantityChange {
		t.Errorf("ledger invariant broken: %+v", logs[0])
	}
}

func TestInventoryTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.Inventory{
		ID: "inv-1", StoreID: "store-1", Name: "원두", Quantity: 200,
	}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.SetStock(ctx, tx, "inv-1", 10); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v", err)
	}

	inv, err := repo.GetByID(ctx, "inv-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if inv.Quantity != 200 {
		t.Errorf("stock = %d, want 200 after rollback", inv.Quantity)
	}
}

func TestInventoryNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.GetForUpdate(ctx, tx, "missing")
		return err
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetForUpdate error = %v, want ErrNotFound", err)
	}
}

func TestCatalogListsOnlyActiveProducts(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	seeds := []*domain.Product{
		{ID: "p-1", StoreID: "store-1", Name: "아메리카노", Active: true},
		{ID: "p-2", StoreID: "store-1", Name: "단종메뉴", Active: false},
		{ID: "p-3", StoreID: "store-2", Name: "아메리카노", Active: true},
	}
	for _, p := range seeds {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	products, err := repo.ListProductsForStore(ctx, "store-1")
	if err != nil {
		t.Fatalf("ListProductsForStore: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p-1" {
		t.Errorf("products = %+v, want only the active store-1 product", products)
	}
}

func TestCatalogRecipeLinesFilterInactive(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	seeds := []*domain.RecipeLine{
		{ID: "rl-1", ProductID: "p-1", InventoryID: "inv-1", AmountPerUnit: 50, Active: true},
		{ID: "rl-2", ProductID: "p-1", InventoryID: "inv-2", AmountPerUnit: 200, Active: false},
	}
	for _, rl := range seeds {
		if err := db.Create(rl).Error; err != nil {
			t.Fatalf("seed recipe line: %v", err)
		}
	}

	lines, err := repo.ListActiveRecipesForProduct(ctx, "p-1")
	if err != nil {
		t.Fatalf("ListActiveRecipesForProduct: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != "rl-1" {
		t.Errorf("lines = %+v, want only the active line", lines)
	}
}
