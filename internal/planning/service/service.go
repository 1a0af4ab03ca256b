// Package service implements business logic for the planning module.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
)

const reminderLead = 24 * time.Hour

// ReminderScheduler schedules the pre-visit reminder task. Implemented by
// the asynq scheduler client.
type ReminderScheduler interface {
	ScheduleSlotReminder(ctx context.Context, teamID, interventionID, slotID uuid.UUID, runAt time.Time) error
}

// Service provides business logic for planning.
type Service struct {
	repo      *repository.Repository
	eventBus  events.Bus
	reminders ReminderScheduler
}

// New creates a new planning service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// SetEventBus injects the event bus for publishing domain events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetReminderScheduler injects the asynq client (nil disables reminders).
func (s *Service) SetReminderScheduler(rs ReminderScheduler) {
	s.reminders = rs
}

// Propose creates a new time slot proposal for an intervention.
func (s *Service) Propose(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, req transport.ProposeSlotRequest) (*transport.SlotResponse, error) {
	role := domain.Role(actorRole)
	switch role {
	case domain.RoleGestionnaire, domain.RolePrestataire, domain.RoleLocataire:
	default:
		return nil, apperr.Forbidden("ce rôle ne peut pas proposer de créneau")
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperr.Validation("la fin du créneau doit être après son début")
	}
	if req.StartsAt.Before(time.Now()) {
		return nil, apperr.Validation("le créneau doit être dans le futur")
	}

	slot := repository.TimeSlot{
		ID:             uuid.New(),
		TeamID:         teamID,
		InterventionID: req.InterventionID,
		ProposedByID:   actorID,
		ProposedByRole: actorRole,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Status:         string(transport.SlotStatusProposee),
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateSlot(ctx, &slot); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TimeSlotProposed{
			BaseEvent:      events.NewBaseEvent(),
			SlotID:         slot.ID,
			TeamID:         teamID,
			InterventionID: slot.InterventionID,
			ProposedByID:   actorID,
			ProposedByRole: actorRole,
			StartsAt:       slot.StartsAt,
			EndsAt:         slot.EndsAt,
		})
	}

	return s.toResponse(ctx, &slot)
}

// Respond records a participant answer to a proposed slot. The proposer's
// own acceptance is implicit and does not need to be recorded, but recording
// it is harmless.
func (s *Service) Respond(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, slotID uuid.UUID, req transport.RespondSlotRequest) (*transport.SlotResponse, error) {
	role := domain.Role(actorRole)
	if role != domain.RoleLocataire && role != domain.RolePrestataire && role != domain.RoleGestionnaire {
		return nil, apperr.Forbidden("ce rôle ne peut pas répondre à un créneau")
	}

	slot, err := s.repo.GetSlot(ctx, teamID, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != string(transport.SlotStatusProposee) {
		return nil, apperr.Unprocessable("le créneau n'est plus ouvert aux réponses")
	}

	resp := repository.SlotResponse{
		ID:        uuid.New(),
		SlotID:    slot.ID,
		TeamID:    teamID,
		UserID:    actorID,
		Role:      actorRole,
		Response:  string(req.Response),
		CreatedAt: time.Now(),
	}
	if err := s.repo.UpsertResponse(ctx, &resp); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, slot)
}

// ListByIntervention returns the slots of an intervention with their answers.
func (s *Service) ListByIntervention(ctx context.Context, teamID, interventionID uuid.UUID) ([]transport.SlotResponse, error) {
	slots, err := s.repo.ListSlots(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}

	result := make([]transport.SlotResponse, 0, len(slots))
	for i := range slots {
		resp, err := s.toResponse(ctx, &slots[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// Select marks a mutually accepted slot as the execution slot, rejects the
// other proposals and schedules the pre-visit reminder.
func (s *Service) Select(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, slotID uuid.UUID) (*transport.SlotResponse, error) {
	role := domain.Role(actorRole)
	switch role {
	case domain.RoleGestionnaire, domain.RolePrestataire, domain.RoleLocataire:
	default:
		return nil, apperr.Forbidden("ce rôle ne peut pas sélectionner de créneau")
	}

	slot, err := s.repo.GetSlot(ctx, teamID, slotID)
	if err != nil {
		return nil, err
	}

	responses, err := s.repo.ListResponses(ctx, teamID, slot.ID)
	if err != nil {
		return nil, err
	}
	if !IsMutuallyAccepted(responses) {
		return nil, apperr.Unprocessable("le créneau doit être accepté par le locataire et le prestataire")
	}

	if err := s.repo.SelectSlot(ctx, teamID, slot.ID, slot.InterventionID); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TimeSlotSelected{
			BaseEvent:      events.NewBaseEvent(),
			SlotID:         slot.ID,
			TeamID:         teamID,
			InterventionID: slot.InterventionID,
			StartsAt:       slot.StartsAt,
			EndsAt:         slot.EndsAt,
		})
	}

	if s.reminders != nil {
		runAt := slot.StartsAt.Add(-reminderLead)
		if runAt.After(time.Now()) {
			if err := s.reminders.ScheduleSlotReminder(ctx, teamID, slot.InterventionID, slot.ID, runAt); err != nil {
				return nil, fmt.Errorf("schedule slot reminder: %w", err)
			}
		}
	}

	slot, err = s.repo.GetSlot(ctx, teamID, slot.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, slot)
}

// HasMutuallyAcceptedSlot reports whether the intervention has at least one
// slot accepted by a locataire and a prestataire. Exposed for the
// interventions adapter.
func (s *Service) HasMutuallyAcceptedSlot(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error) {
	slots, err := s.repo.ListSlots(ctx, teamID, interventionID)
	if err != nil {
		return false, err
	}
	for i := range slots {
		if slots[i].Status == string(transport.SlotStatusRejetee) {
			continue
		}
		responses, err := s.repo.ListResponses(ctx, teamID, slots[i].ID)
		if err != nil {
			return false, err
		}
		if IsMutuallyAccepted(responses) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) toResponse(ctx context.Context, slot *repository.TimeSlot) (*transport.SlotResponse, error) {
	responses, err := s.repo.ListResponses(ctx, slot.TeamID, slot.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]transport.SlotResponseEntry, len(responses))
	for i, r := range responses {
		entries[i] = transport.SlotResponseEntry{
			UserID:    r.UserID,
			Role:      r.Role,
			Response:  transport.SlotResponseValue(r.Response),
			CreatedAt: r.CreatedAt,
		}
	}

	return &transport.SlotResponse{
		ID:               slot.ID,
		InterventionID:   slot.InterventionID,
		ProposedByID:     slot.ProposedByID,
		ProposedByRole:   slot.ProposedByRole,
		StartsAt:         slot.StartsAt,
		EndsAt:           slot.EndsAt,
		Status:           transport.SlotStatus(slot.Status),
		MutuallyAccepted: IsMutuallyAccepted(responses),
		Responses:        entries,
		CreatedAt:        slot.CreatedAt,
	}, nil
}
