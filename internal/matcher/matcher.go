// Package matcher scores parsed receipt items against a store's product catalog
// using normalized edit-distance similarity and auto-accepts unambiguous matches.
package matcher

import (
	"sort"
	"strings"

	"github.com/jaehyun/stocklens/internal/domain"
)

// Similarity computes a normalized edit-distance score in [0,1] between two
// names. Both sides are case-folded and trimmed; equal strings score 1.0,
// otherwise the score is 1 - levenshtein/maxLen.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes the classic unit-cost edit distance by dynamic
// programming over two rune slices, keeping one row in memory.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // delete
				curr[j-1]+1,    // insert
				prev[j-1]+cost, // substitute
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Match ranks catalog products against one parsed item. Candidates below the
// similarity threshold are discarded, the rest are sorted descending and capped.
// When the top-ranked exact candidate exists the item is auto-confirmed with
// that product selected; an empty candidate list is a valid non-error outcome.
func Match(item domain.ReceiptItem, products []domain.Product) domain.ItemMatch {
	candidates := make([]domain.MatchCandidate, 0, len(products))

	for _, p := range products {
		score := Similarity(item.ProductName, p.Name)
		if score < domain.CandidateThreshold {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Similarity:  score,
			ExactMatch:  score >= domain.ExactMatchThreshold,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > domain.MaxCandidates {
		candidates = candidates[:domain.MaxCandidates]
	}

	result := domain.ItemMatch{
		Item:       item,
		Candidates: candidates,
	}
	for _, c := range candidates {
		if c.ExactMatch {
			result.Confirmed = true
			result.SelectedProductID = c.ProductID
			break
		}
	}

	return result
}
