package extraction_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billextract/internal/domain"
	"billextract/internal/extraction"
	"billextract/internal/response"
)

const hospitalBill = `CITY HOSPITAL
Invoice No: 1234
Patient Name: Ravi Kumar
Livi 300ng Tab 14 32.00 448.00
Pizat 4.5mg 2 419.06 838.12
Pizat 4.5mg 2 419.06 838.12
Consultation Fee 500.00
Sub Total 1786.12
CGST 9% 45.00
Total 1560.95
Thank you`

func newEngine(h extraction.Heuristics) *extraction.Engine {
	return extraction.NewEngine(h, zerolog.Nop())
}

func allItems(resp *domain.BillExtractionResponse) []domain.LineItem {
	var out []domain.LineItem
	for _, p := range resp.Data.PagewiseLineItems {
		out = append(out, p.BillItems...)
	}
	return out
}

func TestExtract_HospitalBill(t *testing.T) {
	resp := newEngine(extraction.DefaultHeuristics()).Extract(hospitalBill)

	require.True(t, resp.IsSuccess)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.PagewiseLineItems, 1)
	assert.Equal(t, "1", resp.Data.PagewiseLineItems[0].PageNo)

	items := allItems(resp)
	require.Len(t, items, 3)
	assert.Equal(t, 3, resp.Data.TotalItemCount)

	assert.Equal(t, "Livi 300Ng TAB", items[0].Name)
	assert.Equal(t, 14.0, items[0].Quantity)
	assert.Equal(t, 32.0, items[0].Rate)
	assert.Equal(t, 448.0, items[0].Amount)

	assert.Equal(t, "Pizat 4.5Mg", items[1].Name)
	assert.Equal(t, 838.12, items[1].Amount)

	assert.Equal(t, "Consultation Fee", items[2].Name)

	// items sum to 1786.12 but the printed total disagrees, so it wins
	assert.Equal(t, 1560.95, resp.Data.ReconciledAmount)
	assert.NoError(t, response.ValidateResponse(resp))
}

func TestExtract_TotalLineNeverAnItem(t *testing.T) {
	resp := newEngine(extraction.DefaultHeuristics()).Extract("Crocin 1 100.00 100.00\nTotal 1560.95")

	for _, it := range allItems(resp) {
		assert.NotEqual(t, 1560.95, it.Amount)
		assert.NotContains(t, strings.ToLower(it.Name), "total")
	}
}

func TestExtract_InvoiceHeaderNeverAnItem(t *testing.T) {
	resp := newEngine(extraction.DefaultHeuristics()).Extract(
		"Invoice Value 1500.00\nInvoice 1500.00\nLivi 300ng Tab 14 32.00 448.00")

	items := allItems(resp)
	require.Len(t, items, 1)
	assert.Equal(t, "Livi 300Ng TAB", items[0].Name)
	assert.Equal(t, 1, resp.Data.TotalItemCount)
	assert.Equal(t, 448.0, resp.Data.ReconciledAmount)
}

func TestExtract_ExactRepeatDeduplicated(t *testing.T) {
	for _, mode := range []domain.DedupMode{domain.DedupExact, domain.DedupFuzzy} {
		t.Run(string(mode), func(t *testing.T) {
			h := extraction.DefaultHeuristics()
			h.Dedup.Mode = mode
			resp := newEngine(h).Extract("Pizat 4.5mg 2 419.06 838.12\nPizat 4.5mg 2 419.06 838.12")

			items := allItems(resp)
			require.Len(t, items, 1)
			assert.Equal(t, "Pizat 4.5Mg", items[0].Name)
			assert.Equal(t, 838.12, resp.Data.ReconciledAmount)
		})
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	resp := newEngine(extraction.DefaultHeuristics()).Extract("")

	require.True(t, resp.IsSuccess)
	require.Len(t, resp.Data.PagewiseLineItems, 1)
	assert.Equal(t, "1", resp.Data.PagewiseLineItems[0].PageNo)
	assert.Empty(t, resp.Data.PagewiseLineItems[0].BillItems)
	assert.NotNil(t, resp.Data.PagewiseLineItems[0].BillItems)
	assert.Equal(t, 0, resp.Data.TotalItemCount)
	assert.Equal(t, 0.0, resp.Data.ReconciledAmount)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bill_items":[]`)
}

func TestExtract_SchemaHoldsForNoiseAndGarbage(t *testing.T) {
	inputs := map[string]string{
		"whitespace":   " \n\t\r\n  ",
		"punctuation":  "....,,,;;;:::---===",
		"binary":       string([]byte{0x00, 0xff, 0xfe, 0x10, '\n', 0x80, '1', '.', '.', '2'}),
		"numbers only": "1 2 3\n4.5.6 7..8\n999999999999999999999",
		"nan words":    "NaN Inf -Inf 1e999",
		"header noise": "Invoice No 12\nDate 01/02/2024\nGSTIN 29ABCDE1234F1Z5\nPage 1 of 1",
		"long line":    strings.Repeat("Tab 12.00 ", 2000),
	}
	eng := newEngine(extraction.DefaultHeuristics())
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			resp := eng.Extract(in)
			require.NoError(t, response.ValidateResponse(resp))
			if resp.IsSuccess {
				assert.False(t, math.IsNaN(resp.Data.ReconciledAmount))
				assert.Len(t, allItems(resp), resp.Data.TotalItemCount)
			}
		})
	}
}

func TestExtract_AmountAboveCeilingDropped(t *testing.T) {
	resp := newEngine(extraction.DefaultHeuristics()).Extract(
		"Surgery Package 50000.01\nDressing 2 x 150.00 = 300.00")

	items := allItems(resp)
	require.Len(t, items, 1)
	assert.Equal(t, "Dressing", items[0].Name)
	for _, it := range items {
		assert.NotEqual(t, 50000.0, it.Amount)
	}
	assert.Equal(t, 300.0, resp.Data.ReconciledAmount)
}

func TestExtract_ItemsSatisfyArithmeticAndRanges(t *testing.T) {
	bill := strings.Join([]string{
		hospitalBill,
		"Crocin 2 x 10.00 = 50.00",
		"Bandage 1500 x 1.00 = 1500.00",
		"Gauze 12.5 2 25.00",
		"Syringe 0 5.00 0.00",
	}, "\n")
	resp := newEngine(extraction.DefaultHeuristics()).Extract(bill)

	items := allItems(resp)
	require.NotEmpty(t, items)
	for _, it := range items {
		tol := math.Max(1.0, 0.05*it.Amount)
		assert.LessOrEqual(t, math.Abs(it.Rate*it.Quantity-it.Amount), tol, it.Name)
		assert.GreaterOrEqual(t, it.Quantity, 1.0, it.Name)
		assert.LessOrEqual(t, it.Quantity, 1000.0, it.Name)
		assert.GreaterOrEqual(t, it.Rate, 0.01, it.Name)
		assert.LessOrEqual(t, it.Rate, 10000.0, it.Name)
		assert.GreaterOrEqual(t, it.Amount, 0.01, it.Name)
		assert.LessOrEqual(t, it.Amount, 50000.0, it.Name)
		assert.GreaterOrEqual(t, len([]rune(it.Name)), 2)
	}

	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Contains(t, names, "Gauze")
	assert.NotContains(t, names, "Crocin")
	assert.NotContains(t, names, "Bandage")
	assert.NotContains(t, names, "Syringe")
}

func TestExtract_Idempotent(t *testing.T) {
	e := newEngine(extraction.DefaultHeuristics())
	assert.Equal(t, e.Extract(hospitalBill), e.Extract(hospitalBill))
}

func TestExtract_MultiPage(t *testing.T) {
	bill := "Page 1\nCrocin 2 x 10.00 = 20.00\nPage 2 of 2\nDolo 650 1 30.00 30.00"
	resp := newEngine(extraction.DefaultHeuristics()).Extract(bill)

	require.Len(t, resp.Data.PagewiseLineItems, 2)
	assert.Equal(t, "1", resp.Data.PagewiseLineItems[0].PageNo)
	assert.Equal(t, "2", resp.Data.PagewiseLineItems[1].PageNo)
	assert.Equal(t, 2, resp.Data.TotalItemCount)
	assert.Equal(t, 50.0, resp.Data.ReconciledAmount)
}

func TestRun_PreferSummedPolicy(t *testing.T) {
	h := extraction.DefaultHeuristics()
	h.Reconcile.Policy = domain.PolicyPreferSummed

	res, err := newEngine(h).Run(hospitalBill)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSummed, res.Source)
	assert.Equal(t, 1786.12, res.ReconciledAmount)
	require.NotNil(t, res.DetectedTotal)
	assert.Equal(t, 1560.95, *res.DetectedTotal)
	assert.Equal(t, 1, res.PageCount)
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 0.95)
}

func TestRun_AgreeingTotal(t *testing.T) {
	res, err := newEngine(extraction.DefaultHeuristics()).Run(
		"Crocin 2 x 10.00 = 20.00\nDolo 650 1 30.00 30.00\nGrand Total 50.40")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSummed, res.Source)
	assert.Equal(t, 50.0, res.ReconciledAmount)
}

func TestStagesCompose(t *testing.T) {
	e := newEngine(extraction.DefaultHeuristics())

	cleaned := e.Normalize(hospitalBill)
	items := e.ExtractLineItems(cleaned)
	require.Len(t, items, 3)

	total := e.DetectTotal(cleaned)
	require.NotNil(t, total)
	assert.Equal(t, 1560.95, *total)

	res := e.Reconcile(items, total)
	assert.Equal(t, e.Extract(hospitalBill), e.Format(res))
}

func TestAnalyze(t *testing.T) {
	bill := "Invoice No: 1\nCrocin 2 x 10.00 = 50.00\nPizat 4.5mg 2 419.06 838.12\nPizat 4.5mg 2 419.06 838.12\nTotal 838.12"
	trace := newEngine(extraction.DefaultHeuristics()).Analyze(bill)

	require.Len(t, trace.Lines, 5)
	assert.Equal(t, "excluded", trace.Lines[0].Class)

	crocin := trace.Lines[1]
	assert.Equal(t, "candidate", crocin.Class)
	assert.Equal(t, domain.PatternQtyTimesRate, crocin.Pattern)
	assert.False(t, crocin.Accepted)
	require.NotEmpty(t, crocin.Failures)
	assert.Equal(t, "math.line_item.amount", crocin.Failures[0].RuleKey)

	assert.True(t, trace.Lines[2].Accepted)
	assert.False(t, trace.Lines[2].Duplicate)
	assert.True(t, trace.Lines[3].Accepted)
	assert.True(t, trace.Lines[3].Duplicate)

	assert.Equal(t, "total", trace.Lines[4].Class)
	require.NotNil(t, trace.Detected)
	assert.Equal(t, 838.12, *trace.Detected)
	assert.Equal(t, domain.SourceSummed, trace.Source)
	assert.Equal(t, 1, trace.Response.Data.TotalItemCount)
}
