package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ReceiptItem is one line item extracted from a receipt by the parser.
// OriginalText always preserves the raw OCR line for audit and debugging.
type ReceiptItem struct {
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    *int   `json:"unit_price,omitempty"`
	TotalPrice   *int   `json:"total_price,omitempty"`
	OriginalText string `json:"original_text"`
}

// ReceiptItemList stores parsed line items as a JSON column.
type ReceiptItemList []ReceiptItem

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the list.
//   - error: non-nil if marshaling fails.
func (l ReceiptItemList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (l *ReceiptItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ReceiptItemList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan ReceiptItemList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// RawReceipt is the as-extracted OCR text and parser output, persisted before any
// matching or human decision is made. Immutable after creation; Seq is the numeric
// correlation id generated on insert and referenced by confirmed matches. Seq is
// the integer primary key so both SQLite and PostgreSQL generate it natively; the
// uuid ID stays the externally exposed identifier.
type RawReceipt struct {
	Seq          uint            `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID           string          `gorm:"type:text;not null;uniqueIndex:idx_raw_receipts_id" json:"id"`
	StoreID      string          `gorm:"type:text;not null;index:idx_raw_receipts_store" json:"store_id"`
	DocumentType string          `gorm:"type:text" json:"document_type"`
	RawText      string          `gorm:"type:text" json:"raw_text"`
	Items        ReceiptItemList `gorm:"type:text" json:"items"`
	SupplierName string          `gorm:"type:text" json:"supplier_name,omitempty"`
	DocumentDate string          `gorm:"type:text" json:"document_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName returns the database table name for RawReceipt.
func (RawReceipt) TableName() string {
	return "raw_receipts"
}
