package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/repository"
	"gorm.io/gorm"
)

type reconcileFixture struct {
	db        *gorm.DB
	svc       *ReconcileService
	receipts  *repository.ReceiptRepository
	inventory *repository.InventoryRepository
	matches   *repository.MatchRepository
	rawSeq    uint
}

// newReconcileFixture seeds one store with a latte product whose recipe consumes
// 50g of beans and 200ml of milk per unit, plus a raw receipt to reconcile against.
func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	db := newTestDB(t)

	seeds := []interface{}{
		&domain.Inventory{ID: "inv-beans", StoreID: "store-1", Name: "원두", Unit: "g", Quantity: 200},
		&domain.Inventory{ID: "inv-milk", StoreID: "store-1", Name: "우유", Unit: "ml", Quantity: 1000},
		&domain.Product{ID: "p-latte", StoreID: "store-1", Name: "카페라떼", Price: 4500, Active: true},
		&domain.RecipeLine{ID: "rl-1", ProductID: "p-latte", InventoryID: "inv-beans", AmountPerUnit: 50, Active: true},
		&domain.RecipeLine{ID: "rl-2", ProductID: "p-latte", InventoryID: "inv-milk", AmountPerUnit: 200, Active: true},
		&domain.RecipeLine{ID: "rl-3", ProductID: "p-latte", InventoryID: "inv-beans", AmountPerUnit: 999, Active: false},
	}
	for _, seed := range seeds {
		if err := db.Create(seed).Error; err != nil {
			t.Fatalf("seed %T: %v", seed, err)
		}
	}

	receipts := repository.NewReceiptRepository(db)
	raw := &domain.RawReceipt{
		ID:      "raw-1",
		StoreID: "store-1",
		RawText: "카페라떼 3개 13,500원",
		Items: domain.ReceiptItemList{
			{ProductName: "카페라떼", Quantity: 3, OriginalText: "카페라떼 3개 13,500원"},
		},
	}
	if err := receipts.Create(context.Background(), raw); err != nil {
		t.Fatalf("seed raw receipt: %v", err)
	}

	inventory := repository.NewInventoryRepository(db)
	matches := repository.NewMatchRepository(db)
	svc := NewReconcileService(
		db,
		receipts,
		repository.NewCatalogRepository(db),
		inventory,
		matches,
		newTestLogger(),
	)

	return &reconcileFixture{
		db:        db,
		svc:       svc,
		receipts:  receipts,
		inventory: inventory,
		matches:   matches,
		rawSeq:    raw.Seq,
	}
}

func (f *reconcileFixture) stock(t *testing.T, id string) int {
	t.Helper()
	inv, err := f.inventory.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("read inventory %s: %v", id, err)
	}
	return inv.Quantity
}

func TestConfirmMenuMatchDeductsRecipe(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	created, err := f.svc.Confirm(ctx, "store-1", f.rawSeq, []ConfirmedItem{{
		ItemName:  "카페라떼",
		Quantity:  3,
		Price:     4500,
		MatchType: domain.MatchTypeMenu,
		TargetID:  "p-latte",
	}})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created = %d matches, want 1", len(created))
	}

	match := created[0]
	if match.MatchMethod != domain.MatchMethodAuto {
		t.Errorf("method = %s, want AUTO", match.MatchMethod)
	}
	if match.TotalAmount != 13500 {
		t.Errorf("total = %d, want price*quantity = 13500", match.TotalAmount)
	}
	if match.RawReceiptSeq != f.rawSeq {
		t.Errorf("match raw seq = %d, want %d", match.RawReceiptSeq, f.rawSeq)
	}

	// 50g and 200ml per unit over 3 units.
	if got := f.stock(t, "inv-beans"); got != 50 {
		t.Errorf("beans stock = %d, want 50", got)
	}
	if got := f.stock(t, "inv-milk"); got != 400 {
		t.Errorf("milk stock = %d, want 400", got)
	}

	logs, err := f.inventory.ListLogs(ctx, "inv-beans", 10, 0)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("bean log entries = %d, want 1", len(logs))
	}
	entry := logs[0]
	if entry.LogType != domain.LogTypeDeduction {
		t.Errorf("log type = %s, want DEDUCTION", entry.LogType)
	}
	if entry.QuantityChange != -150 || entry.BeforeQuantity != 200 || entry.AfterQuantity != 50 {
		t.Errorf("log movement = %+v, want -150 from 200 to 50", entry)
	}
	if entry.AfterQuantity != entry.BeforeQuantity+entry.QuantityChange {
		t.Errorf("ledger invariant broken: %+v", entry)
	}
	if entry.MatchID != match.ID {
		t.Errorf("log match id = %q, want %q", entry.MatchID, match.ID)
	}
}

func TestConfirmManualCorrectionMarksManual(t *testing.T) {
	f := newReconcileFixture(t)

	created, err := f.svc.Confirm(context.Background(), "store-1", f.rawSeq, []ConfirmedItem{{
		ItemName:      "카페라III", // OCR garble the operator corrected
		CorrectedName: "카페라떼",
		Quantity:      1,
		Price:         4500,
		MatchType:     domain.MatchTypeMenu,
		TargetID:      "p-latte",
	}})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if created[0].MatchMethod != domain.MatchMethodManual {
		t.Errorf("method = %s, want MANUAL", created[0].MatchMethod)
	}
	if created[0].ItemName != "카페라떼" {
		t.Errorf("item name = %q, want corrected name", created[0].ItemName)
	}
}

func TestConfirmRestockIncreasesStock(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	created, err := f.svc.Confirm(ctx, "store-1", f.rawSeq, []ConfirmedItem{{
		ItemName:    "우유",
		Quantity:    40,
		Price:       1200,
		TotalAmount: 48000,
		MatchType:   domain.MatchTypeInventory,
		TargetID:    "inv-milk",
	}})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if created[0].TotalAmount != 48000 {
		t.Errorf("explicit total overwritten: %d", created[0].TotalAmount)
	}

	if got := f.stock(t, "inv-milk"); got != 1040 {
		t.Errorf("milk stock = %d, want 1040", got)
	}

	logs, err := f.inventory.ListLogs(ctx, "inv-milk", 10, 0)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].LogType != domain.LogTypeRestock {
		t.Fatalf("milk logs = %+v, want one RESTOCK entry", logs)
	}
	if logs[0].QuantityChange != 40 || logs[0].BeforeQuantity != 1000 || logs[0].AfterQuantity != 1040 {
		t.Errorf("log movement = %+v, want +40 from 1000 to 1040", logs[0])
	}
}

func TestConfirmNegativeStockPermitted(t *testing.T) {
	f := newReconcileFixture(t)

	// 5 lattes need 250g of beans against 200g on hand.
	_, err := f.svc.Confirm(context.Background(), "store-1", f.rawSeq, []ConfirmedItem{{
		ItemName:  "카페라떼",
		Quantity:  5,
		Price:     4500,
		MatchType: domain.MatchTypeMenu,
		TargetID:  "p-latte",
	}})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got := f.stock(t, "inv-beans"); got != -50 {
		t.Errorf("beans stock = %d, want -50 (deduction proceeds past zero)", got)
	}
}

func TestConfirmUnknownReceipt(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.svc.Confirm(context.Background(), "store-1", 99999, []ConfirmedItem{{
		ItemName: "카페라떼", Quantity: 1, MatchType: domain.MatchTypeMenu, TargetID: "p-latte",
	}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Confirm error = %v, want ErrNotFound", err)
	}
}

func TestConfirmStopsAtFirstFailureAndRollsBack(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	items := []ConfirmedItem{
		{ItemName: "카페라떼", Quantity: 1, Price: 4500, MatchType: domain.MatchTypeMenu, TargetID: "p-latte"},
		{ItemName: "유령메뉴", Quantity: 1, Price: 1000, MatchType: domain.MatchTypeMenu, TargetID: "p-ghost"},
		{ItemName: "카페라떼", Quantity: 1, Price: 4500, MatchType: domain.MatchTypeMenu, TargetID: "p-latte"},
	}
	created, err := f.svc.Confirm(ctx, "store-1", f.rawSeq, items)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Confirm error = %v, want ErrNotFound", err)
	}
	if len(created) != 1 {
		t.Fatalf("created = %d matches, want only the item before the failure", len(created))
	}

	// The failed item left no trace; the third item was never attempted.
	rows, err := f.matches.ListByReceiptSeq(ctx, f.rawSeq)
	if err != nil {
		t.Fatalf("ListByReceiptSeq: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("persisted matches = %d, want 1", len(rows))
	}
	if got := f.stock(t, "inv-beans"); got != 150 {
		t.Errorf("beans stock = %d, want 150 (one unit deducted)", got)
	}
}

func TestConfirmValidation(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		item ConfirmedItem
	}{
		{"zero quantity", ConfirmedItem{ItemName: "카페라떼", Quantity: 0, MatchType: domain.MatchTypeMenu, TargetID: "p-latte"}},
		{"missing target", ConfirmedItem{ItemName: "카페라떼", Quantity: 1, MatchType: domain.MatchTypeMenu}},
		{"unknown match type", ConfirmedItem{ItemName: "카페라떼", Quantity: 1, MatchType: "BOGUS", TargetID: "p-latte"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Confirm(ctx, "store-1", f.rawSeq, []ConfirmedItem{tc.item})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Confirm error = %v, want ErrValidation", err)
			}
		})
	}

	if rows, _ := f.matches.ListByReceiptSeq(ctx, f.rawSeq); len(rows) != 0 {
		t.Errorf("persisted matches = %d, want 0 after rejected items", len(rows))
	}
}
