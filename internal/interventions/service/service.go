// Package service implements business logic for the interventions module.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

// SlotChecker reports whether an intervention has a slot accepted by at
// least one locataire and one prestataire. Implemented by an adapter
// wrapping the planning repository.
type SlotChecker interface {
	HasMutuallyAcceptedSlot(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error)
}

// QuoteChecker reports whether an intervention has an accepted devis.
// Implemented by an adapter wrapping the quotes repository.
type QuoteChecker interface {
	HasAcceptedQuote(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error)
}

// OccupancyChecker reports whether a user occupies a lot. Implemented by an
// adapter wrapping the contracts repository.
type OccupancyChecker interface {
	OccupiesLot(ctx context.Context, teamID, userID, lotID uuid.UUID) (bool, error)
}

// Service provides business logic for interventions.
type Service struct {
	repo      *repository.Repository
	log       *logger.Logger
	eventBus  events.Bus
	slots     SlotChecker
	quotes    QuoteChecker
	occupancy OccupancyChecker

	storage        storage.StorageService
	documentBucket string
}

// New creates a new interventions service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetEventBus injects the event bus for publishing domain events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetSlotChecker injects the planning adapter (set after construction to break circular deps).
func (s *Service) SetSlotChecker(sc SlotChecker) {
	s.slots = sc
}

// SetQuoteChecker injects the quotes adapter.
func (s *Service) SetQuoteChecker(qc QuoteChecker) {
	s.quotes = qc
}

// SetOccupancyChecker injects the contracts adapter.
func (s *Service) SetOccupancyChecker(oc OccupancyChecker) {
	s.occupancy = oc
}

// Create opens a new intervention in status demande.
func (s *Service) Create(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, req transport.CreateInterventionRequest) (*transport.InterventionResponse, error) {
	role := domain.Role(actorRole)
	if role != domain.RoleLocataire && role != domain.RoleGestionnaire {
		return nil, apperr.Forbidden("seuls les locataires et gestionnaires peuvent créer une intervention")
	}
	if req.LotID == nil && req.BuildingID == nil {
		return nil, apperr.Validation("un lot ou un immeuble doit être renseigné")
	}

	if role == domain.RoleLocataire {
		if req.LotID == nil {
			return nil, apperr.Validation("un locataire doit renseigner son lot")
		}
		if s.occupancy != nil {
			occupies, err := s.occupancy.OccupiesLot(ctx, teamID, actorID, *req.LotID)
			if err != nil {
				return nil, fmt.Errorf("check lot occupancy: %w", err)
			}
			if !occupies {
				return nil, apperr.Forbidden("vous n'occupez pas ce lot")
			}
		}
	}

	reference, err := s.repo.NextReference(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}

	now := time.Now()
	iv := repository.Intervention{
		ID:            uuid.New(),
		TeamID:        teamID,
		Reference:     reference,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Urgency:       req.Urgency,
		Status:        string(domain.StatusDemande),
		LotID:         req.LotID,
		BuildingID:    req.BuildingID,
		RequesterID:   actorID,
		RequesterRole: actorRole,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, &iv); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InterventionCreated{
			BaseEvent:      events.NewBaseEvent(),
			InterventionID: iv.ID,
			TeamID:         teamID,
			LotID:          iv.LotID,
			Reference:      iv.Reference,
			Title:          iv.Title,
			Urgency:        iv.Urgency,
			CreatedByID:    actorID,
			CreatedByRole:  actorRole,
		})
	}

	return s.toResponse(ctx, &iv, role), nil
}

// Get fetches an intervention, enforcing participant visibility.
func (s *Service) Get(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID) (*transport.InterventionResponse, error) {
	iv, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	role := domain.Role(actorRole)
	if err := s.checkVisibility(iv, actorID, role); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, iv, role), nil
}

// List returns the interventions visible to the actor, scoped by role:
// gestionnaires see the whole team, prestataires their assignments,
// locataires their own requests.
func (s *Service) List(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, q transport.ListInterventionsQuery) (*transport.ListInterventionsResponse, error) {
	params := repository.ListParams{
		TeamID:   teamID,
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Status != "" {
		if !domain.IsKnownStatus(domain.Status(q.Status)) {
			return nil, apperr.Validation("statut inconnu: " + q.Status)
		}
		params.Status = &q.Status
	}
	if q.Urgency != "" {
		if !domain.IsKnownUrgency(domain.Urgency(q.Urgency)) {
			return nil, apperr.Validation("urgence inconnue: " + q.Urgency)
		}
		params.Urgency = &q.Urgency
	}
	if q.LotID != "" {
		lotID, err := uuid.Parse(q.LotID)
		if err != nil {
			return nil, apperr.Validation("lotId invalide")
		}
		params.LotID = &lotID
	}

	role := domain.Role(actorRole)
	switch role {
	case domain.RoleGestionnaire:
		// full team scope
	case domain.RolePrestataire:
		params.ProviderID = &actorID
	case domain.RoleLocataire:
		params.RequesterID = &actorID
	case domain.RoleProprietaire:
		// read-only, scoped to owned lots via the contracts adapter
		if s.occupancy == nil {
			params.RequesterID = &actorID
		}
	default:
		return nil, apperr.Forbidden("rôle inconnu")
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := transport.ListInterventionsResponse{
		Items:      make([]transport.InterventionResponse, 0, len(result.Items)),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
	for i := range result.Items {
		resp.Items = append(resp.Items, *s.toResponse(ctx, &result.Items[i], role))
	}
	return &resp, nil
}

// Update edits the mutable metadata of an intervention. Only the requester
// or a gestionnaire may edit, and only before the work starts.
func (s *Service) Update(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID, req transport.UpdateInterventionRequest) (*transport.InterventionResponse, error) {
	iv, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	role := domain.Role(actorRole)
	if role != domain.RoleGestionnaire && iv.RequesterID != actorID {
		return nil, apperr.Forbidden("seul le demandeur ou un gestionnaire peut modifier l'intervention")
	}
	switch domain.Status(iv.Status) {
	case domain.StatusDemande, domain.StatusApprouvee, domain.StatusDemandeDeDevis, domain.StatusPlanification:
	default:
		return nil, apperr.Unprocessable("l'intervention ne peut plus être modifiée à ce stade")
	}

	if err := s.repo.UpdateDetails(ctx, teamID, id, req.Title, req.Description, req.Urgency); err != nil {
		return nil, err
	}
	iv, err = s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, iv, role), nil
}

// AssignProvider attaches a prestataire to the intervention.
func (s *Service) AssignProvider(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID, req transport.AssignRequest) error {
	if domain.Role(actorRole) != domain.RoleGestionnaire {
		return apperr.Forbidden("seul un gestionnaire peut assigner un prestataire")
	}
	if req.Role != string(domain.RolePrestataire) {
		return apperr.Validation("seul un prestataire peut être assigné")
	}

	iv, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return err
	}
	if domain.IsTerminal(domain.Status(iv.Status)) {
		return apperr.Unprocessable("l'intervention est clôturée")
	}

	if err := s.repo.AssignProvider(ctx, teamID, id, req.UserID); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InterventionAssigned{
			BaseEvent:      events.NewBaseEvent(),
			InterventionID: iv.ID,
			TeamID:         teamID,
			Reference:      iv.Reference,
			UserID:         req.UserID,
			Role:           req.Role,
			AssignedByID:   actorID,
		})
	}
	return nil
}

// checkVisibility enforces participant scoping on a single intervention.
func (s *Service) checkVisibility(iv *repository.Intervention, actorID uuid.UUID, role domain.Role) error {
	switch role {
	case domain.RoleGestionnaire, domain.RoleProprietaire:
		return nil
	case domain.RolePrestataire:
		if iv.AssignedProviderID != nil && *iv.AssignedProviderID == actorID {
			return nil
		}
	case domain.RoleLocataire:
		if iv.RequesterID == actorID {
			return nil
		}
	}
	return apperr.NotFound("intervention introuvable")
}

// toResponse maps the database model to the API shape, deriving
// requiresQuote and the actions available to the viewing role.
func (s *Service) toResponse(ctx context.Context, iv *repository.Intervention, viewer domain.Role) *transport.InterventionResponse {
	status := domain.Status(iv.Status)

	requiresQuote := false
	if status == domain.StatusDemandeDeDevis && s.quotes != nil {
		accepted, err := s.quotes.HasAcceptedQuote(ctx, iv.TeamID, iv.ID)
		if err == nil {
			requiresQuote = domain.RequiresQuote(status, accepted)
		}
	} else {
		requiresQuote = domain.RequiresQuote(status, false)
	}

	next := domain.Next(status, viewer)
	actions := make([]string, 0, len(next))
	for _, tr := range next {
		actions = append(actions, string(tr.To))
	}

	return &transport.InterventionResponse{
		ID:                 iv.ID,
		Reference:          iv.Reference,
		Title:              iv.Title,
		Description:        iv.Description,
		Urgency:            iv.Urgency,
		Status:             iv.Status,
		RequiresQuote:      requiresQuote,
		LotID:              iv.LotID,
		BuildingID:         iv.BuildingID,
		RequesterID:        iv.RequesterID,
		AssignedProviderID: iv.AssignedProviderID,
		CompletionNote:     iv.CompletionNote,
		Satisfaction:       iv.Satisfaction,
		StatusReason:       iv.StatusReason,
		AvailableActions:   actions,
		CreatedAt:          iv.CreatedAt,
		UpdatedAt:          iv.UpdatedAt,
	}
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
