package service

import (
	"testing"

	"github.com/aumugisha-umu/seido-sub017/internal/quotes/transport"
)

func TestCalculateQuote_SumsLineItems(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "main d'oeuvre", Quantity: 2, UnitPriceCents: 50},
			{Description: "fournitures", Quantity: 1, UnitPriceCents: 30},
		},
	}

	result := CalculateQuote(req)

	if result.SubtotalCents != 130 {
		t.Fatalf("expected subtotal 130, got %d", result.SubtotalCents)
	}
	if result.VatTotalCents != 0 {
		t.Fatalf("expected no VAT, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 130 {
		t.Fatalf("expected total 130, got %d", result.TotalCents)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if result.Lines[0].LineTotalCents != 100 || result.Lines[1].LineTotalCents != 30 {
		t.Fatalf("unexpected line totals: %d, %d", result.Lines[0].LineTotalCents, result.Lines[1].LineTotalCents)
	}
}

func TestCalculateQuote_VatPerLine(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "plomberie", Quantity: 1, UnitPriceCents: 10000, TaxRateBps: 2000},
			{Description: "déplacement", Quantity: 1, UnitPriceCents: 5000, TaxRateBps: 1000},
		},
	}

	result := CalculateQuote(req)

	if result.SubtotalCents != 15000 {
		t.Fatalf("expected subtotal 15000, got %d", result.SubtotalCents)
	}
	if result.VatTotalCents != 2500 {
		t.Fatalf("expected VAT 2500, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 17500 {
		t.Fatalf("expected total 17500, got %d", result.TotalCents)
	}
	if len(result.VatBreakdown) != 2 {
		t.Fatalf("expected 2 VAT breakdown lines, got %d", len(result.VatBreakdown))
	}
	if result.VatBreakdown[0].RateBps != 1000 || result.VatBreakdown[0].AmountCents != 500 {
		t.Fatalf("expected 1000=>500, got %d=>%d", result.VatBreakdown[0].RateBps, result.VatBreakdown[0].AmountCents)
	}
	if result.VatBreakdown[1].RateBps != 2000 || result.VatBreakdown[1].AmountCents != 2000 {
		t.Fatalf("expected 2000=>2000, got %d=>%d", result.VatBreakdown[1].RateBps, result.VatBreakdown[1].AmountCents)
	}
}

func TestCalculateQuote_FractionalQuantityRounds(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "heures", Quantity: 1.5, UnitPriceCents: 3333},
		},
	}

	result := CalculateQuote(req)

	if result.SubtotalCents != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", result.SubtotalCents)
	}
	if result.TotalCents != 5000 {
		t.Fatalf("expected total 5000, got %d", result.TotalCents)
	}
}
