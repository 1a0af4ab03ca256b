package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
)

// Transition applies a lifecycle transition to an intervention. The move is
// resolved against the transition table, its precondition checked, then
// persisted with a compare-and-swap on the current status so concurrent
// actors cannot both win.
func (s *Service) Transition(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID, req transport.TransitionRequest) (*transport.InterventionResponse, error) {
	role := domain.Role(actorRole)
	if !domain.IsKnownRole(role) {
		return nil, apperr.Forbidden("rôle inconnu")
	}
	to := domain.Status(req.To)
	if !domain.IsKnownStatus(to) {
		return nil, apperr.Validation("statut cible inconnu: " + req.To)
	}

	iv, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(iv, actorID, role); err != nil {
		return nil, err
	}
	if err := s.checkActorBinding(iv, actorID, role); err != nil {
		return nil, err
	}

	from := domain.Status(iv.Status)
	tr, err := domain.Resolve(from, to, role)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			return nil, apperr.Unprocessable(fmt.Sprintf("transition %s → %s non autorisée pour le rôle %s", from, to, role))
		}
		return nil, err
	}

	upd := repository.StatusUpdate{From: string(from), To: string(to)}
	if err := s.checkRequirement(ctx, iv, tr, req, &upd); err != nil {
		return nil, err
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		upd.StatusReason = &reason
	} else if to == domain.StatusAnnulee || to == domain.StatusRejetee {
		return nil, apperr.Validation("un motif est requis pour annuler ou rejeter")
	}

	if err := s.repo.UpdateStatus(ctx, teamID, id, upd); err != nil {
		return nil, err
	}

	s.log.StatusTransition(iv.ID.String(), string(from), string(to), actorRole)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InterventionStatusChanged{
			BaseEvent:      events.NewBaseEvent(),
			InterventionID: iv.ID,
			TeamID:         teamID,
			Reference:      iv.Reference,
			Title:          iv.Title,
			OldStatus:      string(from),
			NewStatus:      string(to),
			ActorID:        actorID,
			ActorRole:      actorRole,
			Effect:         string(tr.Effect),
			Reason:         strings.TrimSpace(req.Reason),
		})
	}

	iv, err = s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, iv, role), nil
}

// checkActorBinding verifies that prestataires act only on interventions
// assigned to them and locataires only on their own requests. Visibility
// already covers reads; this is the write-side counterpart.
func (s *Service) checkActorBinding(iv *repository.Intervention, actorID uuid.UUID, role domain.Role) error {
	switch role {
	case domain.RolePrestataire:
		if iv.AssignedProviderID == nil || *iv.AssignedProviderID != actorID {
			return apperr.Forbidden("vous n'êtes pas assigné à cette intervention")
		}
	case domain.RoleLocataire:
		if iv.RequesterID != actorID {
			return apperr.Forbidden("vous n'êtes pas le demandeur de cette intervention")
		}
	}
	return nil
}

// checkRequirement enforces the precondition named by the transition and
// folds the transition payload into the status update.
func (s *Service) checkRequirement(ctx context.Context, iv *repository.Intervention, tr domain.Transition, req transport.TransitionRequest, upd *repository.StatusUpdate) error {
	switch tr.Requires {
	case domain.RequireNothing:
		return nil

	case domain.RequireAcceptedQuote:
		if s.quotes == nil {
			return apperr.Internal("vérification des devis indisponible")
		}
		accepted, err := s.quotes.HasAcceptedQuote(ctx, iv.TeamID, iv.ID)
		if err != nil {
			return fmt.Errorf("check accepted quote: %w", err)
		}
		if !accepted {
			return apperr.Unprocessable("un devis accepté est requis avant la planification")
		}
		return nil

	case domain.RequireAcceptedSlot:
		if s.slots == nil {
			return apperr.Internal("vérification des créneaux indisponible")
		}
		accepted, err := s.slots.HasMutuallyAcceptedSlot(ctx, iv.TeamID, iv.ID)
		if err != nil {
			return fmt.Errorf("check accepted slot: %w", err)
		}
		if !accepted {
			return apperr.Unprocessable("un créneau accepté par le locataire et le prestataire est requis")
		}
		return nil

	case domain.RequireCompletionNote:
		note := strings.TrimSpace(req.CompletionNote)
		if note == "" {
			return apperr.Validation("un compte rendu de fin d'intervention est requis")
		}
		upd.CompletionNote = &note
		return nil

	case domain.RequireSatisfaction:
		if req.Satisfaction == nil {
			return apperr.Validation("une note de satisfaction est requise")
		}
		if *req.Satisfaction < 1 || *req.Satisfaction > 5 {
			return apperr.Validation("la note de satisfaction doit être comprise entre 1 et 5")
		}
		upd.Satisfaction = req.Satisfaction
		return nil
	}

	return apperr.Internal("précondition inconnue: " + string(tr.Requires))
}
