package response

import (
	"math"

	"github.com/shopspring/decimal"

	"billextract/internal/domain"
)

// GenericFailure is the message returned when extraction fails unexpectedly.
const GenericFailure = "extraction failed"

// Format builds the public response for a reconciliation result.
// The mandatory shape is always present: a nil or empty result yields a single
// page "1" with no items, the item count is recomputed from the emitted pages,
// and non-finite amounts are emitted as 0.
func Format(result *domain.ReconciliationResult) *domain.BillExtractionResponse {
	var items []domain.LineItem
	var reconciled float64
	if result != nil {
		items = result.LineItems
		reconciled = result.ReconciledAmount
	}

	pages := groupByPage(items)
	count := 0
	for _, p := range pages {
		count += len(p.BillItems)
	}

	return &domain.BillExtractionResponse{
		IsSuccess: true,
		Data: &domain.BillData{
			PagewiseLineItems: pages,
			TotalItemCount:    count,
			ReconciledAmount:  Round2(reconciled),
		},
	}
}

// Failure builds the failure response.
func Failure(msg string) *domain.BillExtractionResponse {
	if msg == "" {
		msg = GenericFailure
	}
	return &domain.BillExtractionResponse{IsSuccess: false, Error: msg}
}

// Empty is the well-formed response for a document with no extractable items.
func Empty() *domain.BillExtractionResponse {
	return Format(nil)
}

// Round2 rounds v to two decimal places. NaN and infinities become 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func groupByPage(items []domain.LineItem) []domain.PageItems {
	var pages []domain.PageItems
	index := make(map[string]int)

	for i := range items {
		it := items[i]
		pageNo := it.PageNo
		if pageNo == "" {
			pageNo = domain.DefaultPageNo
		}
		idx, ok := index[pageNo]
		if !ok {
			idx = len(pages)
			index[pageNo] = idx
			pages = append(pages, domain.PageItems{PageNo: pageNo, BillItems: []domain.LineItem{}})
		}
		pages[idx].BillItems = append(pages[idx].BillItems, domain.LineItem{
			Name:     it.Name,
			Amount:   Round2(it.Amount),
			Rate:     Round2(it.Rate),
			Quantity: Round2(it.Quantity),
			PageNo:   pageNo,
		})
	}

	if len(pages) == 0 {
		pages = []domain.PageItems{{PageNo: domain.DefaultPageNo, BillItems: []domain.LineItem{}}}
	}
	return pages
}
