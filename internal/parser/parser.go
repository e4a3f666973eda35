// Package parser turns raw OCR text lines into candidate receipt line items.
// Classification is heuristic: a line is either noise (headers, totals, dates,
// separators) or an item carrying a product name, a quantity, and one or two
// prices. Lines that yield no usable name or no price are dropped silently.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// noiseKeywords mark receipt header/footer lines that never describe items.
var noiseKeywords = []string{
	// Korean receipt furniture
	"영수증", "합계", "총액", "총합계", "소계", "거스름", "받은금액", "결제금액",
	"카드", "현금", "부가세", "면세", "과세", "사업자", "전화", "주소", "대표",
	// English equivalents
	"receipt", "total", "subtotal", "change", "card", "cash", "vat",
	"tel", "phone", "address",
}

var (
	dateRe      = regexp.MustCompile(`\d{4}[-./]\d{1,2}[-./]\d{1,2}`)
	timeRe      = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)
	separatorRe = regexp.MustCompile(`^[\s*=\-_]+$`)
	numericRe   = regexp.MustCompile(`^[\d,.\s원₩]+$`)

	// priceRe matches digits with optional thousands separators and an optional
	// currency suffix. Quantity notations are blanked out before this runs so a
	// bare multiplier like "x2" is never read as a price.
	priceRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*(?:원|₩|KRW)?`)

	// quantityRes are tried in order; the first match in [1,100] wins. The bare
	// multiplier forms demand a token-start marker and adjacent digits, and the
	// digits must not continue into a thousands-separated number: a name ending
	// in x ("Juice Box") or a price right after the marker is not a quantity.
	quantityRes = []quantityNotation{
		{re: regexp.MustCompile(`(\d+)\s*개`), ownsDigits: true},
		{re: regexp.MustCompile(`(?:^|\s)[xX](\d+)(?:[^,\d]|$)`)},
		{re: regexp.MustCompile(`(?:^|\s)\*(\d+)(?:[^,\d]|$)`)},
		{re: regexp.MustCompile(`(\d+)\s*(?:EA|ea)`), ownsDigits: true},
		{re: regexp.MustCompile(`수량\s*[:：]?\s*(\d+)`), ownsDigits: true},
	}

	punctRe      = regexp.MustCompile(`[*\-=]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// quantityNotation pairs a quantity regex with whether the matched digits belong
// to the notation itself. When they do ("500개", "2EA"), an out-of-range match is
// still blanked so the digits never get misread as a price; when they do not,
// the digits are left alone because they may be part of a real price.
type quantityNotation struct {
	re         *regexp.Regexp
	ownsDigits bool
}

// Price sanity bounds: values outside (0, 1,000,000) are OCR artifacts, not prices.
const maxSanePrice = 1_000_000

// Quantity bounds for the extracted multiplier.
const (
	minQuantity = 1
	maxQuantity = 100
)

// Item is one parsed line item candidate.
type Item struct {
	ProductName  string
	Quantity     int
	UnitPrice    *int
	TotalPrice   *int
	OriginalText string
}

// Document is the full parse result for one receipt.
type Document struct {
	Items        []Item
	SupplierName string
	DocumentDate string
}

// Parse splits raw OCR text into lines and extracts line items plus document
// level fields (supplier name, document date).
func Parse(rawText string) *Document {
	doc := &Document{}

	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if doc.DocumentDate == "" {
			if m := dateRe.FindString(line); m != "" {
				doc.DocumentDate = m
			}
		}

		if IsNoise(line) {
			continue
		}

		item, ok := ParseLine(line)
		if !ok {
			// First readable non-item line is the best supplier-name guess.
			if doc.SupplierName == "" && len([]rune(line)) >= 2 {
				doc.SupplierName = line
			}
			continue
		}
		doc.Items = append(doc.Items, item)
	}

	return doc
}

// IsNoise reports whether a line is receipt furniture rather than an item.
func IsNoise(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if separatorRe.MatchString(trimmed) {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range noiseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	// A pure date/time line carries no item
	stripped := dateRe.ReplaceAllString(trimmed, "")
	stripped = timeRe.ReplaceAllString(stripped, "")
	if strings.TrimSpace(strings.Trim(stripped, "()[]- ")) == "" {
		return true
	}

	// Only digits and currency markers, no name content
	if numericRe.MatchString(strings.ReplaceAll(trimmed, "KRW", "")) {
		return true
	}

	return false
}

// ParseLine extracts a single item from one line. The second return value is
// false when the line yields no usable product name or no price.
func ParseLine(line string) (Item, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Item{}, false
	}

	quantity, working := extractQuantity(trimmed)
	prices, working := extractPrices(working)
	if len(prices) == 0 {
		return Item{}, false
	}

	name := cleanName(working)
	if len([]rune(name)) < 2 {
		return Item{}, false
	}

	item := Item{
		ProductName:  name,
		Quantity:     quantity,
		OriginalText: line,
	}

	// One price: a multi-quantity line states its total; derive the unit price.
	// Two or more: first is unit, second is total, the rest are ignored.
	if len(prices) == 1 {
		p := prices[0]
		if quantity > 1 {
			unit := p / quantity
			item.UnitPrice = &unit
			item.TotalPrice = &p
		} else {
			unit, total := p, p
			item.UnitPrice = &unit
			item.TotalPrice = &total
		}
	} else {
		unit, total := prices[0], prices[1]
		item.UnitPrice = &unit
		item.TotalPrice = &total
	}

	return item, true
}

// extractQuantity finds the first quantity notation in [1,100] and blanks it
// out of the returned working copy. Out-of-range matches of notations that own
// their digits are consumed too, so the digits are never misread as a price;
// the quantity then stays 1.
func extractQuantity(line string) (int, string) {
	working := line
	for _, qn := range quantityRes {
		// Blanking preserves length, so indices stay valid across edits.
		for _, m := range qn.re.FindAllStringSubmatchIndex(working, -1) {
			raw := working[m[2]:m[3]]
			n, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			if n < minQuantity || n > maxQuantity {
				if qn.ownsDigits {
					working = working[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + working[m[1]:]
				}
				continue
			}
			return n, working[:m[0]] + strings.Repeat(" ", m[1]-m[0]) + working[m[1]:]
		}
	}
	return 1, working
}

// extractPrices collects all sane price values in order of appearance and blanks
// them out of the returned working copy.
func extractPrices(line string) ([]int, string) {
	var prices []int
	working := []byte(line)

	for _, m := range priceRe.FindAllStringSubmatchIndex(line, -1) {
		raw := strings.ReplaceAll(line[m[2]:m[3]], ",", "")
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n >= maxSanePrice {
			continue
		}
		prices = append(prices, n)
		for i := m[0]; i < m[1]; i++ {
			working[i] = ' '
		}
	}

	return prices, string(working)
}

// cleanName collapses leftover punctuation and whitespace into a product name.
func cleanName(s string) string {
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
