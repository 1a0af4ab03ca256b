// Package service implements business logic for the quotes (devis) module.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/quotes/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/quotes/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
)

// InterventionReader is the narrow view of the interventions module this
// service needs: fetch status and assignment for a devis target.
type InterventionReader interface {
	GetInterventionState(ctx context.Context, teamID, interventionID uuid.UUID) (status string, assignedProviderID *uuid.UUID, err error)
}

// Service provides business logic for quotes.
type Service struct {
	repo          *repository.Repository
	interventions InterventionReader
	eventBus      events.Bus
}

// New creates a new quotes service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// SetEventBus injects the event bus for publishing domain events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetInterventionReader injects the interventions adapter (set after construction to break circular deps).
func (s *Service) SetInterventionReader(ir InterventionReader) {
	s.interventions = ir
}

// Submit creates a devis for an intervention. Only the assigned prestataire
// may submit, and only while the intervention awaits a devis.
func (s *Service) Submit(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, req transport.SubmitQuoteRequest) (*transport.QuoteResponse, error) {
	if actorRole != string(domain.RolePrestataire) {
		return nil, apperr.Forbidden("seul un prestataire peut soumettre un devis")
	}

	if s.interventions != nil {
		status, providerID, err := s.interventions.GetInterventionState(ctx, teamID, req.InterventionID)
		if err != nil {
			return nil, err
		}
		if status != string(domain.StatusDemandeDeDevis) {
			return nil, apperr.Unprocessable("l'intervention n'attend pas de devis")
		}
		if providerID == nil || *providerID != actorID {
			return nil, apperr.Forbidden("vous n'êtes pas assigné à cette intervention")
		}
	}

	quoteNumber, err := s.repo.NextQuoteNumber(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("generate quote number: %w", err)
	}

	// Server-side calculation: client amounts are never trusted
	calc := CalculateQuote(transport.QuoteCalculationRequest{Items: req.Items})

	now := time.Now()
	quote := repository.Quote{
		ID:             uuid.New(),
		TeamID:         teamID,
		InterventionID: req.InterventionID,
		ProviderID:     actorID,
		QuoteNumber:    quoteNumber,
		Status:         string(transport.QuoteStatusEnAttente),
		SubtotalCents:  calc.SubtotalCents,
		VatTotalCents:  calc.VatTotalCents,
		TotalCents:     calc.TotalCents,
		ValidUntil:     req.ValidUntil,
		Notes:          nilIfEmpty(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]repository.QuoteItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = repository.QuoteItem{
			ID:             uuid.New(),
			QuoteID:        quote.ID,
			TeamID:         teamID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TaxRateBps:     it.TaxRateBps,
			LineTotalCents: calc.Lines[i].LineTotalCents,
			SortOrder:      i,
			CreatedAt:      now,
		}
	}

	if err := s.repo.CreateWithItems(ctx, &quote, items); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.QuoteSubmitted{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        quote.ID,
			TeamID:         teamID,
			InterventionID: quote.InterventionID,
			QuoteNumber:    quote.QuoteNumber,
			ProviderID:     actorID,
			TotalCents:     quote.TotalCents,
		})
	}

	return s.toResponse(ctx, &quote)
}

// ListByIntervention returns the devis of an intervention. Prestataires only
// see their own submissions.
func (s *Service) ListByIntervention(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, interventionID uuid.UUID) ([]transport.QuoteResponse, error) {
	quotes, err := s.repo.ListByIntervention(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}

	result := make([]transport.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		if actorRole == string(domain.RolePrestataire) && quotes[i].ProviderID != actorID {
			continue
		}
		resp, err := s.toResponse(ctx, &quotes[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// Get fetches a single devis with its line items.
func (s *Service) Get(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if actorRole == string(domain.RolePrestataire) && quote.ProviderID != actorID {
		return nil, apperr.NotFound("devis introuvable")
	}
	return s.toResponse(ctx, quote)
}

// Accept marks a devis accepted and auto-rejects its pending siblings.
// Gestionnaire only.
func (s *Service) Accept(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID) (*transport.QuoteResponse, error) {
	if actorRole != string(domain.RoleGestionnaire) {
		return nil, apperr.Forbidden("seul un gestionnaire peut accepter un devis")
	}

	quote, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Accept(ctx, teamID, id, quote.InterventionID); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.QuoteAccepted{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        quote.ID,
			TeamID:         teamID,
			InterventionID: quote.InterventionID,
			QuoteNumber:    quote.QuoteNumber,
			ProviderID:     quote.ProviderID,
			TotalCents:     quote.TotalCents,
			ActorID:        actorID,
		})
	}

	quote, err = s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, quote)
}

// Reject marks a devis rejected with a reason. Gestionnaire only.
func (s *Service) Reject(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID, req transport.RejectQuoteRequest) (*transport.QuoteResponse, error) {
	if actorRole != string(domain.RoleGestionnaire) {
		return nil, apperr.Forbidden("seul un gestionnaire peut rejeter un devis")
	}

	quote, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reject(ctx, teamID, id, strings.TrimSpace(req.Reason)); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.QuoteRejected{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        quote.ID,
			TeamID:         teamID,
			InterventionID: quote.InterventionID,
			QuoteNumber:    quote.QuoteNumber,
			ProviderID:     quote.ProviderID,
			Reason:         strings.TrimSpace(req.Reason),
			ActorID:        actorID,
		})
	}

	quote, err = s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, quote)
}

// HasAcceptedQuote reports whether an intervention has an accepted devis.
// Exposed for the interventions adapter.
func (s *Service) HasAcceptedQuote(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error) {
	return s.repo.HasAcceptedQuote(ctx, teamID, interventionID)
}

// PreviewCalculation computes totals without persisting anything.
func (s *Service) PreviewCalculation(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	return CalculateQuote(req)
}

func (s *Service) toResponse(ctx context.Context, q *repository.Quote) (*transport.QuoteResponse, error) {
	items, err := s.repo.GetItems(ctx, q.TeamID, q.ID)
	if err != nil {
		return nil, err
	}

	itemResponses := make([]transport.QuoteItemResponse, len(items))
	for i, it := range items {
		itemResponses[i] = transport.QuoteItemResponse{
			ID:             it.ID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TaxRateBps:     it.TaxRateBps,
			LineTotalCents: it.LineTotalCents,
		}
	}

	return &transport.QuoteResponse{
		ID:              q.ID,
		QuoteNumber:     q.QuoteNumber,
		InterventionID:  q.InterventionID,
		ProviderID:      q.ProviderID,
		Status:          transport.QuoteStatus(q.Status),
		SubtotalCents:   q.SubtotalCents,
		VatTotalCents:   q.VatTotalCents,
		TotalCents:      q.TotalCents,
		ValidUntil:      q.ValidUntil,
		Notes:           q.Notes,
		RejectionReason: q.RejectionReason,
		Items:           itemResponses,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}, nil
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
