// Package transport defines request and response DTOs for the planning module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the time slot status enumeration.
type SlotStatus string

const (
	SlotStatusProposee     SlotStatus = "proposee"
	SlotStatusSelectionnee SlotStatus = "selectionnee"
	SlotStatusRejetee      SlotStatus = "rejetee"
)

// SlotResponseValue is a participant's answer to a proposed slot.
type SlotResponseValue string

const (
	SlotResponseAcceptee SlotResponseValue = "acceptee"
	SlotResponseRefusee  SlotResponseValue = "refusee"
)

// ProposeSlotRequest proposes a time slot for an intervention.
type ProposeSlotRequest struct {
	InterventionID uuid.UUID `json:"interventionId" validate:"required"`
	StartsAt       time.Time `json:"startsAt" validate:"required"`
	EndsAt         time.Time `json:"endsAt" validate:"required"`
}

// RespondSlotRequest records a participant's answer to a slot.
type RespondSlotRequest struct {
	Response SlotResponseValue `json:"response" validate:"required,oneof=acceptee refusee"`
}

// SlotResponseEntry is one participant answer in the API shape.
type SlotResponseEntry struct {
	UserID    uuid.UUID         `json:"userId"`
	Role      string            `json:"role"`
	Response  SlotResponseValue `json:"response"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SlotResponse is the API representation of a time slot.
type SlotResponse struct {
	ID               uuid.UUID           `json:"id"`
	InterventionID   uuid.UUID           `json:"interventionId"`
	ProposedByID     uuid.UUID           `json:"proposedById"`
	ProposedByRole   string              `json:"proposedByRole"`
	StartsAt         time.Time           `json:"startsAt"`
	EndsAt           time.Time           `json:"endsAt"`
	Status           SlotStatus          `json:"status"`
	MutuallyAccepted bool                `json:"mutuallyAccepted"`
	Responses        []SlotResponseEntry `json:"responses"`
	CreatedAt        time.Time           `json:"createdAt"`
}
