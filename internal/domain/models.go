package domain

import "time"

// CandidateLine is a normalized text line the classifier accepted as a possible item.
type CandidateLine struct {
	Text   string
	Index  int
	PageNo string
}

// ParsedItem is the raw result of matching a candidate line against a layout pattern.
// It has not been range or arithmetic checked yet.
type ParsedItem struct {
	Name     string
	Quantity float64
	Rate     float64
	Amount   float64
	Pattern  PatternKind
	Line     int
	PageNo   string
}

// LineItem converts a parsed item into its emitted form.
func (p *ParsedItem) LineItem() LineItem {
	return LineItem{
		Name:     p.Name,
		Amount:   p.Amount,
		Rate:     p.Rate,
		Quantity: p.Quantity,
		PageNo:   p.PageNo,
	}
}

// LineItem is a validated bill line item.
type LineItem struct {
	Name     string  `json:"item_name"`
	Amount   float64 `json:"item_amount"`
	Rate     float64 `json:"item_rate"`
	Quantity float64 `json:"item_quantity"`
	PageNo   string  `json:"-"`
}

// ReconciliationResult is the output of reconciling an item set against an optional bill total.
type ReconciliationResult struct {
	LineItems        []LineItem
	SummedAmount     float64
	DetectedTotal    *float64
	ReconciledAmount float64
	Source           ReconciliationSource
	Confidence       float64
	PageCount        int
}

// BillExtractionResponse is the public result contract.
type BillExtractionResponse struct {
	IsSuccess bool      `json:"is_success"`
	Data      *BillData `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// BillData holds the extracted items grouped by page.
type BillData struct {
	PagewiseLineItems []PageItems `json:"pagewise_line_items"`
	TotalItemCount    int         `json:"total_item_count"`
	ReconciledAmount  float64     `json:"reconciled_amount"`
}

// PageItems holds the items of a single bill page.
type PageItems struct {
	PageNo    string     `json:"page_no"`
	BillItems []LineItem `json:"bill_items"`
}

// Document is a fetched source document ready for text extraction.
type Document struct {
	SourceURL   string
	ContentType string
	Body        []byte
}

// Stats holds aggregate counters for the running service.
type Stats struct {
	TotalRequests     int64     `json:"total_requests"`
	Succeeded         int64     `json:"succeeded"`
	Failed            int64     `json:"failed"`
	ItemsExtracted    int64     `json:"items_extracted"`
	AverageConfidence float64   `json:"average_confidence"`
	StartedAt         time.Time `json:"started_at"`
	UptimeSeconds     int64     `json:"uptime_seconds"`
}
