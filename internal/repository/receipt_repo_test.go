package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stocklens_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.RawReceipt{},
		&domain.Product{},
		&domain.RecipeLine{},
		&domain.Inventory{},
		&domain.OcrMatch{},
		&domain.InventoryLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestReceiptCreateAssignsSeq(t *testing.T) {
	repo := NewReceiptRepository(newTestDB(t))
	ctx := context.Background()

	first := &domain.RawReceipt{ID: "raw-1", StoreID: "store-1", RawText: "a"}
	second := &domain.RawReceipt{ID: "raw-2", StoreID: "store-1", RawText: "b"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	if first.Seq == 0 || second.Seq == 0 {
		t.Fatalf("seq not populated on insert: %d, %d", first.Seq, second.Seq)
	}
	if second.Seq <= first.Seq {
		t.Errorf("seq not monotonic: first=%d second=%d", first.Seq, second.Seq)
	}
}

func TestReceiptItemsRoundTrip(t *testing.T) {
	repo := NewReceiptRepository(newTestDB(t))
	ctx := context.Background()

	unit, total := 4000, 8000
	receipt := &domain.RawReceipt{
		ID:           "raw-1",
		StoreID:      "store-1",
		DocumentType: "RECEIPT",
		RawText:      "아메리카노 x2 8,000원",
		SupplierName: "스타벅스 강남점",
		DocumentDate: "2024-03-15",
		Items: domain.ReceiptItemList{{
			ProductName:  "아메리카노",
			Quantity:     2,
			UnitPrice:    &unit,
			TotalPrice:   &total,
			OriginalText: "아메리카노 x2 8,000원",
		}},
	}
	if err := repo.Create(ctx, receipt); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetBySeq(ctx, receipt.Seq)
	if err != nil {
		t.Fatalf("GetBySeq: %v", err)
	}
	if got.ID != "raw-1" || got.SupplierName != "스타벅스 강남점" {
		t.Errorf("loaded receipt = %+v", got)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.ProductName != "아메리카노" || item.Quantity != 2 {
		t.Errorf("item = %+v", item)
	}
	if item.UnitPrice == nil || *item.UnitPrice != 4000 {
		t.Errorf("unit price = %v, want 4000", item.UnitPrice)
	}
	if item.TotalPrice == nil || *item.TotalPrice != 8000 {
		t.Errorf("total price = %v, want 8000", item.TotalPrice)
	}

	byID, err := repo.GetByID(ctx, "raw-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Seq != receipt.Seq {
		t.Errorf("GetByID seq = %d, want %d", byID.Seq, receipt.Seq)
	}
}

func TestReceiptNotFound(t *testing.T) {
	repo := NewReceiptRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetBySeq(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetBySeq error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
}
