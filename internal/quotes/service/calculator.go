package service

import (
	"math"
	"sort"

	"github.com/aumugisha-umu/seido-sub017/internal/quotes/transport"
)

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// CalculateQuote computes devis totals for a set of line items. VAT is
// calculated per line then summed per rate. Amounts submitted by the client
// are never trusted; every total comes from here.
func CalculateQuote(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	var subtotalFloat float64
	vatMap := make(map[int]float64)
	lines := make([]transport.CalculatedLineItem, 0, len(req.Items))

	for _, item := range req.Items {
		lineSubtotal := item.Quantity * float64(item.UnitPriceCents)
		lineVat := lineSubtotal * (float64(item.TaxRateBps) / 10000.0)

		lines = append(lines, transport.CalculatedLineItem{
			Description:         item.Description,
			Quantity:            item.Quantity,
			UnitPriceCents:      item.UnitPriceCents,
			TaxRateBps:          item.TaxRateBps,
			TotalBeforeTaxCents: roundCents(lineSubtotal),
			TotalTaxCents:       roundCents(lineVat),
			LineTotalCents:      roundCents(lineSubtotal + lineVat),
		})

		subtotalFloat += lineSubtotal
		vatMap[item.TaxRateBps] += lineVat
	}

	var vatTotal int64
	breakdown := make([]transport.VatBreakdown, 0, len(vatMap))
	for rate, amount := range vatMap {
		if rate == 0 {
			continue
		}
		cents := roundCents(amount)
		vatTotal += cents
		breakdown = append(breakdown, transport.VatBreakdown{RateBps: rate, AmountCents: cents})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].RateBps < breakdown[j].RateBps })

	subtotalCents := roundCents(subtotalFloat)
	return transport.QuoteCalculationResponse{
		Lines:         lines,
		SubtotalCents: subtotalCents,
		VatTotalCents: vatTotal,
		VatBreakdown:  breakdown,
		TotalCents:    subtotalCents + vatTotal,
	}
}
