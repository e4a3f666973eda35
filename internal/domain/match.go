package domain

import "time"

// ExactMatchThreshold is the similarity above which a candidate is treated as an
// unambiguous match and auto-confirmed without human input.
const ExactMatchThreshold = 0.9

// CandidateThreshold is the minimum similarity for a product to appear in the
// candidate list at all.
const CandidateThreshold = 0.5

// MaxCandidates caps the ranked candidate list per item.
const MaxCandidates = 5

// MatchCandidate is a catalog product considered a possible match for an
// OCR-extracted line item.
type MatchCandidate struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       int     `json:"price"`
	Similarity  float64 `json:"similarity"`
	ExactMatch  bool    `json:"exact_match"`
}

// MatchType distinguishes catalog-product matches from direct inventory restocks.
type MatchType string

const (
	MatchTypeMenu      MatchType = "MENU"
	MatchTypeInventory MatchType = "INVENTORY"
)

// MatchMethod records whether a match was accepted automatically or corrected by hand.
type MatchMethod string

const (
	MatchMethodAuto   MatchMethod = "AUTO"
	MatchMethodManual MatchMethod = "MANUAL"
)

// OcrMatch is a confirmed binding of an OCR line item to a catalog product or
// inventory item. Created once per confirmed line; immutable thereafter.
type OcrMatch struct {
	ID            string      `gorm:"type:text;primaryKey" json:"id"`
	StoreID       string      `gorm:"type:text;not null;index:idx_ocr_matches_store" json:"store_id"`
	RawReceiptSeq uint        `gorm:"not null;index:idx_ocr_matches_raw_seq" json:"raw_receipt_seq"`
	ItemName      string      `gorm:"type:text;not null" json:"item_name"`
	Quantity      int         `gorm:"not null" json:"quantity"`
	Price         int         `gorm:"default:0" json:"price"`
	TotalAmount   int         `gorm:"default:0" json:"total_amount"`
	MatchType     MatchType   `gorm:"type:text;not null" json:"match_type"`
	TargetID      string      `gorm:"type:text;not null" json:"target_id"`
	MatchMethod   MatchMethod `gorm:"type:text;not null" json:"match_method"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for OcrMatch.
func (OcrMatch) TableName() string {
	return "ocr_matches"
}
