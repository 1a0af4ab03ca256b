package adapters

import (
	"context"

	intservice "github.com/aumugisha-umu/seido-sub017/internal/interventions/service"
	planservice "github.com/aumugisha-umu/seido-sub017/internal/planning/service"
	quoteservice "github.com/aumugisha-umu/seido-sub017/internal/quotes/service"

	"github.com/google/uuid"
)

// PlanningSlotChecker lets the interventions lifecycle ask the planning
// module whether a mutually accepted slot exists.
type PlanningSlotChecker struct {
	svc *planservice.Service
}

func NewPlanningSlotChecker(svc *planservice.Service) *PlanningSlotChecker {
	return &PlanningSlotChecker{svc: svc}
}

func (a *PlanningSlotChecker) HasMutuallyAcceptedSlot(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error) {
	return a.svc.HasMutuallyAcceptedSlot(ctx, teamID, interventionID)
}

var _ intservice.SlotChecker = (*PlanningSlotChecker)(nil)

// QuoteAcceptanceChecker lets the interventions lifecycle ask the quotes
// module whether an accepted devis exists.
type QuoteAcceptanceChecker struct {
	svc *quoteservice.Service
}

func NewQuoteAcceptanceChecker(svc *quoteservice.Service) *QuoteAcceptanceChecker {
	return &QuoteAcceptanceChecker{svc: svc}
}

func (a *QuoteAcceptanceChecker) HasAcceptedQuote(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error) {
	return a.svc.HasAcceptedQuote(ctx, teamID, interventionID)
}

var _ intservice.QuoteChecker = (*QuoteAcceptanceChecker)(nil)
