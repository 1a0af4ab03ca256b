// Package transport defines request and response DTOs for the quotes (devis) module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus is the devis status enumeration.
type QuoteStatus string

const (
	QuoteStatusEnAttente QuoteStatus = "en_attente"
	QuoteStatusAcceptee  QuoteStatus = "acceptee"
	QuoteStatusRejetee   QuoteStatus = "rejetee"
)

// QuoteItemRequest is one line of a devis. Amounts are integer cents; the
// server derives every total.
type QuoteItemRequest struct {
	Description    string  `json:"description" validate:"required,min=2,max=500"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" validate:"required,gt=0"`
	TaxRateBps     int     `json:"taxRateBps" validate:"gte=0,lte=3000"`
}

// SubmitQuoteRequest is the payload for a prestataire submitting a devis.
type SubmitQuoteRequest struct {
	InterventionID uuid.UUID          `json:"interventionId" validate:"required"`
	ValidUntil     *time.Time         `json:"validUntil,omitempty"`
	Notes          string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items          []QuoteItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// RejectQuoteRequest carries the rejection reason.
type RejectQuoteRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// QuoteCalculationRequest asks for a server-side totals preview.
type QuoteCalculationRequest struct {
	Items []QuoteItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// CalculatedLineItem is one computed devis line.
type CalculatedLineItem struct {
	Description         string  `json:"description"`
	Quantity            float64 `json:"quantity"`
	UnitPriceCents      int64   `json:"unitPriceCents"`
	TaxRateBps          int     `json:"taxRateBps"`
	TotalBeforeTaxCents int64   `json:"totalBeforeTaxCents"`
	TotalTaxCents       int64   `json:"totalTaxCents"`
	LineTotalCents      int64   `json:"lineTotalCents"`
}

// VatBreakdown groups VAT amounts by rate.
type VatBreakdown struct {
	RateBps     int   `json:"rateBps"`
	AmountCents int64 `json:"amountCents"`
}

// QuoteCalculationResponse is the computed totals payload.
type QuoteCalculationResponse struct {
	Lines         []CalculatedLineItem `json:"lines"`
	SubtotalCents int64                `json:"subtotalCents"`
	VatTotalCents int64                `json:"vatTotalCents"`
	VatBreakdown  []VatBreakdown       `json:"vatBreakdown"`
	TotalCents    int64                `json:"totalCents"`
}

// QuoteItemResponse is the API representation of a devis line.
type QuoteItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       float64   `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TaxRateBps     int       `json:"taxRateBps"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

// QuoteResponse is the API representation of a devis.
type QuoteResponse struct {
	ID              uuid.UUID           `json:"id"`
	QuoteNumber     string              `json:"quoteNumber"`
	InterventionID  uuid.UUID           `json:"interventionId"`
	ProviderID      uuid.UUID           `json:"providerId"`
	Status          QuoteStatus         `json:"status"`
	SubtotalCents   int64               `json:"subtotalCents"`
	VatTotalCents   int64               `json:"vatTotalCents"`
	TotalCents      int64               `json:"totalCents"`
	ValidUntil      *time.Time          `json:"validUntil,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
	Items           []QuoteItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}
