// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	TeamID      uuid.UUID `json:"teamId"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	VerifyToken string    `json:"verifyToken"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// PasswordResetRequested is published when a user requests a password reset.
type PasswordResetRequested struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	ResetToken string    `json:"resetToken"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Identity Domain Events
// =============================================================================

// TeamInviteCreated is published when a team member invitation is created.
type TeamInviteCreated struct {
	BaseEvent
	TeamID      uuid.UUID `json:"teamId"`
	TeamName    string    `json:"teamName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	InviteToken string    `json:"inviteToken"`
}

func (e TeamInviteCreated) EventName() string { return "identity.invite.created" }

// =============================================================================
// Intervention Domain Events
// =============================================================================

// InterventionCreated is published when a locataire or gestionnaire opens a
// new intervention request.
type InterventionCreated struct {
	BaseEvent
	InterventionID uuid.UUID  `json:"interventionId"`
	TeamID         uuid.UUID  `json:"teamId"`
	LotID          *uuid.UUID `json:"lotId,omitempty"`
	Reference      string     `json:"reference"`
	Title          string     `json:"title"`
	Urgency        string     `json:"urgency"`
	CreatedByID    uuid.UUID  `json:"createdById"`
	CreatedByRole  string     `json:"createdByRole"`
}

func (e InterventionCreated) EventName() string { return "interventions.created" }

// InterventionStatusChanged is published after a lifecycle transition has been
// persisted. Effect carries the declarative side-effect tag from the
// transition table; the notification module is the only dispatcher.
type InterventionStatusChanged struct {
	BaseEvent
	InterventionID uuid.UUID `json:"interventionId"`
	TeamID         uuid.UUID `json:"teamId"`
	Reference      string    `json:"reference"`
	Title          string    `json:"title"`
	OldStatus      string    `json:"oldStatus"`
	NewStatus      string    `json:"newStatus"`
	ActorID        uuid.UUID `json:"actorId"`
	ActorRole      string    `json:"actorRole"`
	Effect         string    `json:"effect"`
	Reason         string    `json:"reason,omitempty"`
}

func (e InterventionStatusChanged) EventName() string { return "interventions.status.changed" }

// InterventionAssigned is published when a participant is attached to an
// intervention (gestionnaire, prestataire or locataire).
type InterventionAssigned struct {
	BaseEvent
	InterventionID uuid.UUID `json:"interventionId"`
	TeamID         uuid.UUID `json:"teamId"`
	Reference      string    `json:"reference"`
	UserID         uuid.UUID `json:"userId"`
	Role           string    `json:"role"`
	AssignedByID   uuid.UUID `json:"assignedById"`
}

func (e InterventionAssigned) EventName() string { return "interventions.assigned" }

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteSubmitted is published when a prestataire submits a devis.
type QuoteSubmitted struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProviderID     uuid.UUID `json:"providerId"`
	TotalCents     int64     `json:"totalCents"`
}

func (e QuoteSubmitted) EventName() string { return "quotes.submitted" }

// QuoteAccepted is published when a gestionnaire accepts a devis.
type QuoteAccepted struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProviderID     uuid.UUID `json:"providerId"`
	TotalCents     int64     `json:"totalCents"`
	ActorID        uuid.UUID `json:"actorId"`
}

func (e QuoteAccepted) EventName() string { return "quotes.accepted" }

// QuoteRejected is published when a gestionnaire rejects a devis.
type QuoteRejected struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProviderID     uuid.UUID `json:"providerId"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        uuid.UUID `json:"actorId"`
}

func (e QuoteRejected) EventName() string { return "quotes.rejected" }

// =============================================================================
// Planning Domain Events
// =============================================================================

// TimeSlotProposed is published when a participant proposes a time slot.
type TimeSlotProposed struct {
	BaseEvent
	SlotID         uuid.UUID `json:"slotId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	ProposedByID   uuid.UUID `json:"proposedById"`
	ProposedByRole string    `json:"proposedByRole"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
}

func (e TimeSlotProposed) EventName() string { return "planning.slot.proposed" }

// TimeSlotSelected is published when a slot reaches mutual acceptance and is
// selected for execution.
type TimeSlotSelected struct {
	BaseEvent
	SlotID         uuid.UUID `json:"slotId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
}

func (e TimeSlotSelected) EventName() string { return "planning.slot.selected" }

// TimeSlotReminderDue is published by the worker when an intervention is
// scheduled to start soon.
type TimeSlotReminderDue struct {
	BaseEvent
	SlotID         uuid.UUID `json:"slotId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
}

func (e TimeSlotReminderDue) EventName() string { return "planning.slot.reminder_due" }

// =============================================================================
// Conversation Domain Events
// =============================================================================

// MessageReceived is published when an inbound email is attached to a
// conversation by the webhook module.
type MessageReceived struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	MessageID      uuid.UUID `json:"messageId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	FromEmail      string    `json:"fromEmail"`
	Subject        string    `json:"subject"`
}

func (e MessageReceived) EventName() string { return "conversations.message.received" }

// MessagePosted is published when a participant posts a message in-app. The
// notification module relays it by email to the other thread participants.
type MessagePosted struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	MessageID      uuid.UUID `json:"messageId"`
	TeamID         uuid.UUID `json:"teamId"`
	InterventionID uuid.UUID `json:"interventionId"`
	SenderID       uuid.UUID `json:"senderId"`
	Body           string    `json:"body"`
}

func (e MessagePosted) EventName() string { return "conversations.message.posted" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue is published by the worker when a notification outbox
// record should be processed.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
	TeamID   uuid.UUID `json:"teamId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
