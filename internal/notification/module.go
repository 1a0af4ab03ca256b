// Package notification subscribes to domain events and fans them out as
// emails and in-app notifications. Domain modules publish events and never
// talk to the mailer directly; lifecycle side-effect tags are dispatched
// here and nowhere else.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/email"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	notifhandler "github.com/aumugisha-umu/seido-sub017/internal/notification/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/notification/inapp"
	notificationoutbox "github.com/aumugisha-umu/seido-sub017/internal/notification/outbox"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Member is the slice of a team member the notification module needs.
type Member struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// MemberDirectory resolves team members for notification fan-out.
type MemberDirectory interface {
	GetMember(ctx context.Context, teamID, userID uuid.UUID) (Member, error)
	ListByRole(ctx context.Context, teamID uuid.UUID, role string) ([]Member, error)
}

// Participants identifies the users attached to an intervention, plus the
// display fields events do not carry.
type Participants struct {
	RequesterID        uuid.UUID
	AssignedProviderID *uuid.UUID
	Reference          string
	Title              string
}

// InterventionParticipantsReader resolves intervention participants.
type InterventionParticipantsReader interface {
	GetParticipants(ctx context.Context, teamID, interventionID uuid.UUID) (Participants, error)
}

const (
	outboxRetryBaseDelay = 30 * time.Second
	outboxRetryMaxDelay  = 10 * time.Minute
)

// Module handles all notification-related event subscriptions.
type Module struct {
	pool         *pgxpool.Pool
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	outbox       *notificationoutbox.Repository
	participants InterventionParticipantsReader
	members      MemberDirectory
}

// New creates a new notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	inAppRepo := inapp.NewRepository(pool)
	inAppSvc := inapp.NewService(inAppRepo, log)

	return &Module{
		pool:         pool,
		sender:       sender,
		cfg:          cfg,
		log:          log,
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
		outbox:       notificationoutbox.New(pool),
	}
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the in-app notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

var _ apphttp.Module = (*Module)(nil)

// InAppService exposes the in-app service to other composition points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// Outbox exposes the outbox repository to the worker dispatcher.
func (m *Module) Outbox() *notificationoutbox.Repository { return m.outbox }

// SetParticipantsReader injects the intervention participant resolver.
func (m *Module) SetParticipantsReader(r InterventionParticipantsReader) { m.participants = r }

// SetMemberDirectory injects the team member resolver.
func (m *Module) SetMemberDirectory(d MemberDirectory) { m.members = d }

// RegisterHandlers subscribes the module to every domain event it reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.PasswordResetRequested{}.EventName(), m)
	bus.Subscribe(events.TeamInviteCreated{}.EventName(), m)

	bus.Subscribe(events.InterventionCreated{}.EventName(), m)
	bus.Subscribe(events.InterventionStatusChanged{}.EventName(), m)
	bus.Subscribe(events.InterventionAssigned{}.EventName(), m)

	bus.Subscribe(events.QuoteSubmitted{}.EventName(), m)
	bus.Subscribe(events.QuoteAccepted{}.EventName(), m)
	bus.Subscribe(events.QuoteRejected{}.EventName(), m)

	bus.Subscribe(events.TimeSlotProposed{}.EventName(), m)
	bus.Subscribe(events.TimeSlotSelected{}.EventName(), m)
	bus.Subscribe(events.TimeSlotReminderDue{}.EventName(), m)

	bus.Subscribe(events.MessageReceived{}.EventName(), m)
	bus.Subscribe(events.MessagePosted{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.handleUserSignedUp(ctx, e)
	case events.PasswordResetRequested:
		return m.handlePasswordResetRequested(ctx, e)
	case events.TeamInviteCreated:
		return m.handleTeamInviteCreated(ctx, e)
	case events.InterventionCreated:
		return m.handleInterventionCreated(ctx, e)
	case events.InterventionStatusChanged:
		return m.handleInterventionStatusChanged(ctx, e)
	case events.InterventionAssigned:
		return m.handleInterventionAssigned(ctx, e)
	case events.QuoteSubmitted:
		return m.handleQuoteSubmitted(ctx, e)
	case events.QuoteAccepted:
		return m.handleQuoteAccepted(ctx, e)
	case events.QuoteRejected:
		return m.handleQuoteRejected(ctx, e)
	case events.TimeSlotProposed:
		return m.handleTimeSlotProposed(ctx, e)
	case events.TimeSlotSelected:
		return m.handleTimeSlotSelected(ctx, e)
	case events.TimeSlotReminderDue:
		return m.handleTimeSlotReminderDue(ctx, e)
	case events.MessageReceived:
		return m.handleMessageReceived(ctx, e)
	case events.MessagePosted:
		return m.handleMessagePosted(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

// ── Auth and identity events ─────────────────────────────────────────────────

func (m *Module) handleUserSignedUp(ctx context.Context, e events.UserSignedUp) error {
	verifyURL := m.buildURL("/verify-email", e.VerifyToken)
	if err := m.sender.SendVerificationEmail(ctx, e.Email, verifyURL); err != nil {
		m.log.Error("failed to send verification email", "userId", e.UserID, "email", e.Email, "error", err)
		return err
	}
	m.log.Info("verification email sent", "userId", e.UserID, "email", e.Email)
	return nil
}

func (m *Module) handlePasswordResetRequested(ctx context.Context, e events.PasswordResetRequested) error {
	resetURL := m.buildURL("/reset-password", e.ResetToken)
	if err := m.sender.SendPasswordResetEmail(ctx, e.Email, resetURL); err != nil {
		m.log.Error("failed to send password reset email", "userId", e.UserID, "email", e.Email, "error", err)
		return err
	}
	m.log.Info("password reset email sent", "userId", e.UserID, "email", e.Email)
	return nil
}

func (m *Module) handleTeamInviteCreated(ctx context.Context, e events.TeamInviteCreated) error {
	inviteURL := m.buildURL("/accept-invite", e.InviteToken)
	if err := m.sender.SendTeamInviteEmail(ctx, e.Email, e.TeamName, e.Role, inviteURL); err != nil {
		m.log.Error("failed to send team invite email", "teamId", e.TeamID, "email", e.Email, "error", err)
		return err
	}
	m.log.Info("team invite email sent", "teamId", e.TeamID, "email", e.Email)
	return nil
}

// ── Intervention events ──────────────────────────────────────────────────────

func (m *Module) handleInterventionCreated(ctx context.Context, e events.InterventionCreated) error {
	if m.members == nil {
		return nil
	}
	managers, err := m.members.ListByRole(ctx, e.TeamID, string(domain.RoleGestionnaire))
	if err != nil {
		m.log.Error("failed to list gestionnaires", "teamId", e.TeamID, "error", err)
		return err
	}

	title := fmt.Sprintf("Nouvelle demande %s", e.Reference)
	content := e.Title
	if e.Urgency == string(domain.UrgencyUrgente) {
		content = "[urgent] " + e.Title
	}

	for _, manager := range managers {
		if manager.ID == e.CreatedByID {
			continue
		}
		m.sendInApp(ctx, e.TeamID, manager.ID, title, content, e.InterventionID, "intervention")
	}
	return nil
}

func (m *Module) handleInterventionStatusChanged(ctx context.Context, e events.InterventionStatusChanged) error {
	recipients, err := m.resolveEffectRecipients(ctx, e)
	if err != nil {
		return err
	}

	statusLabel := domain.StatusLabel(e.NewStatus)
	title := fmt.Sprintf("Intervention %s", e.Reference)
	content := statusLabel
	if e.Reason != "" {
		content = fmt.Sprintf("%s : %s", statusLabel, e.Reason)
	}

	detailURL := m.interventionURL(e.InterventionID)
	for _, rec := range recipients {
		m.sendInApp(ctx, e.TeamID, rec.ID, title, content, e.InterventionID, "intervention")
		m.queueEmail(ctx, e.TeamID, templateInterventionStatus, interventionStatusPayload{
			ToEmail:   rec.Email,
			Reference: e.Reference,
			Title:     e.Title,
			Status:    e.NewStatus,
			DetailURL: detailURL,
		})
	}
	return nil
}

// resolveEffectRecipients translates a transition's side-effect tag into the
// concrete users to notify. The actor never gets notified about their own
// action.
func (m *Module) resolveEffectRecipients(ctx context.Context, e events.InterventionStatusChanged) ([]Member, error) {
	if m.members == nil || m.participants == nil {
		return nil, nil
	}

	effect := domain.Effect(e.Effect)
	if effect == domain.EffectNone {
		return nil, nil
	}

	parts, err := m.participants.GetParticipants(ctx, e.TeamID, e.InterventionID)
	if err != nil {
		m.log.Error("failed to resolve intervention participants",
			"interventionId", e.InterventionID, "error", err)
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	var recipients []Member
	add := func(member Member) {
		if member.ID == e.ActorID {
			return
		}
		if _, ok := seen[member.ID]; ok {
			return
		}
		seen[member.ID] = struct{}{}
		recipients = append(recipients, member)
	}
	addByID := func(userID uuid.UUID) {
		member, err := m.members.GetMember(ctx, e.TeamID, userID)
		if err != nil {
			m.log.Warn("notification recipient not found", "userId", userID, "teamId", e.TeamID)
			return
		}
		add(member)
	}
	addManagers := func() {
		managers, err := m.members.ListByRole(ctx, e.TeamID, string(domain.RoleGestionnaire))
		if err != nil {
			m.log.Error("failed to list gestionnaires", "teamId", e.TeamID, "error", err)
			return
		}
		for _, manager := range managers {
			add(manager)
		}
	}

	switch effect {
	case domain.EffectNotifyRequester:
		addByID(parts.RequesterID)
	case domain.EffectNotifyProvider:
		if parts.AssignedProviderID != nil {
			addByID(*parts.AssignedProviderID)
		}
	case domain.EffectNotifyManager:
		addManagers()
	case domain.EffectNotifyAll:
		addByID(parts.RequesterID)
		if parts.AssignedProviderID != nil {
			addByID(*parts.AssignedProviderID)
		}
		addManagers()
	}
	return recipients, nil
}

func (m *Module) handleInterventionAssigned(ctx context.Context, e events.InterventionAssigned) error {
	if e.UserID == e.AssignedByID {
		return nil
	}
	title := fmt.Sprintf("Intervention %s", e.Reference)
	m.sendInApp(ctx, e.TeamID, e.UserID, title, "Vous avez été assigné à cette intervention", e.InterventionID, "intervention")
	return nil
}

// ── Quote events ─────────────────────────────────────────────────────────────

func (m *Module) handleQuoteSubmitted(ctx context.Context, e events.QuoteSubmitted) error {
	if m.members == nil {
		return nil
	}
	managers, err := m.members.ListByRole(ctx, e.TeamID, string(domain.RoleGestionnaire))
	if err != nil {
		m.log.Error("failed to list gestionnaires", "teamId", e.TeamID, "error", err)
		return err
	}

	title := fmt.Sprintf("Devis %s reçu", e.QuoteNumber)
	content := fmt.Sprintf("Un devis de %.2f € attend votre décision", float64(e.TotalCents)/100)
	detailURL := m.interventionURL(e.InterventionID)

	// The event only carries IDs; the reference lives on the intervention.
	var reference string
	if m.participants != nil {
		if parts, err := m.participants.GetParticipants(ctx, e.TeamID, e.InterventionID); err == nil {
			reference = parts.Reference
		}
	}

	for _, manager := range managers {
		m.sendInApp(ctx, e.TeamID, manager.ID, title, content, e.QuoteID, "devis")
		m.queueEmail(ctx, e.TeamID, templateQuoteReceived, quoteReceivedPayload{
			ToEmail:     manager.Email,
			Reference:   reference,
			QuoteNumber: e.QuoteNumber,
			TotalCents:  e.TotalCents,
			DetailURL:   detailURL,
		})
	}
	return nil
}

func (m *Module) handleQuoteAccepted(ctx context.Context, e events.QuoteAccepted) error {
	return m.notifyQuoteDecision(ctx, quoteDecisionParams{
		TeamID:      e.TeamID,
		QuoteID:     e.QuoteID,
		QuoteNumber: e.QuoteNumber,
		ProviderID:  e.ProviderID,
		Accepted:    true,
		DetailURL:   m.interventionURL(e.InterventionID),
	})
}

func (m *Module) handleQuoteRejected(ctx context.Context, e events.QuoteRejected) error {
	return m.notifyQuoteDecision(ctx, quoteDecisionParams{
		TeamID:      e.TeamID,
		QuoteID:     e.QuoteID,
		QuoteNumber: e.QuoteNumber,
		ProviderID:  e.ProviderID,
		Accepted:    false,
		Reason:      e.Reason,
		DetailURL:   m.interventionURL(e.InterventionID),
	})
}

type quoteDecisionParams struct {
	TeamID      uuid.UUID
	QuoteID     uuid.UUID
	QuoteNumber string
	ProviderID  uuid.UUID
	Accepted    bool
	Reason      string
	DetailURL   string
}

func (m *Module) notifyQuoteDecision(ctx context.Context, p quoteDecisionParams) error {
	if m.members == nil {
		return nil
	}
	provider, err := m.members.GetMember(ctx, p.TeamID, p.ProviderID)
	if err != nil {
		m.log.Warn("quote provider not found", "providerId", p.ProviderID, "teamId", p.TeamID)
		return nil
	}

	title := fmt.Sprintf("Devis %s refusé", p.QuoteNumber)
	content := "Votre devis a été refusé"
	if p.Accepted {
		title = fmt.Sprintf("Devis %s accepté", p.QuoteNumber)
		content = "Votre devis a été accepté"
	} else if p.Reason != "" {
		content = fmt.Sprintf("Votre devis a été refusé : %s", p.Reason)
	}

	m.sendInApp(ctx, p.TeamID, provider.ID, title, content, p.QuoteID, "devis")
	m.queueEmail(ctx, p.TeamID, templateQuoteDecision, quoteDecisionPayload{
		ToEmail:     provider.Email,
		QuoteNumber: p.QuoteNumber,
		Accepted:    p.Accepted,
		Reason:      p.Reason,
		DetailURL:   p.DetailURL,
	})
	return nil
}

// ── Planning events ──────────────────────────────────────────────────────────

func (m *Module) handleTimeSlotProposed(ctx context.Context, e events.TimeSlotProposed) error {
	recipients, parts, err := m.resolveInterventionAudience(ctx, e.TeamID, e.InterventionID, e.ProposedByID)
	if err != nil || len(recipients) == 0 {
		return err
	}

	slotDate := formatSlotDate(e.StartsAt)
	title := "Nouveau créneau proposé"
	content := fmt.Sprintf("Un créneau a été proposé le %s", slotDate)
	detailURL := m.interventionURL(e.InterventionID)

	for _, rec := range recipients {
		m.sendInApp(ctx, e.TeamID, rec.ID, title, content, e.InterventionID, "planning")
		m.queueEmail(ctx, e.TeamID, templateSlotProposed, slotEmailPayload{
			ToEmail:   rec.Email,
			Reference: parts.Reference,
			SlotDate:  slotDate,
			DetailURL: detailURL,
		})
	}
	return nil
}

func (m *Module) handleTimeSlotSelected(ctx context.Context, e events.TimeSlotSelected) error {
	recipients, parts, err := m.resolveInterventionAudience(ctx, e.TeamID, e.InterventionID, uuid.Nil)
	if err != nil || len(recipients) == 0 {
		return err
	}

	slotDate := formatSlotDate(e.StartsAt)
	title := "Intervention planifiée"
	content := fmt.Sprintf("Le rendez-vous est confirmé le %s", slotDate)
	detailURL := m.interventionURL(e.InterventionID)

	for _, rec := range recipients {
		m.sendInApp(ctx, e.TeamID, rec.ID, title, content, e.InterventionID, "planning")
		m.queueEmail(ctx, e.TeamID, templateSlotConfirmed, slotEmailPayload{
			ToEmail:   rec.Email,
			Reference: parts.Reference,
			SlotDate:  slotDate,
			DetailURL: detailURL,
		})
	}
	return nil
}

func (m *Module) handleTimeSlotReminderDue(ctx context.Context, e events.TimeSlotReminderDue) error {
	recipients, parts, err := m.resolveInterventionAudience(ctx, e.TeamID, e.InterventionID, uuid.Nil)
	if err != nil || len(recipients) == 0 {
		return err
	}

	slotDate := formatSlotDate(e.StartsAt)
	for _, rec := range recipients {
		if rec.Role == string(domain.RoleGestionnaire) {
			continue
		}
		m.queueEmail(ctx, e.TeamID, templateSlotReminder, slotReminderPayload{
			ToEmail:   rec.Email,
			Reference: parts.Reference,
			Title:     parts.Title,
			SlotDate:  slotDate,
		})
	}
	return nil
}

// resolveInterventionAudience returns the requester, the assigned prestataire
// and the team's gestionnaires, without duplicates, excluding excludeID.
func (m *Module) resolveInterventionAudience(ctx context.Context, teamID, interventionID, excludeID uuid.UUID) ([]Member, Participants, error) {
	if m.members == nil || m.participants == nil {
		return nil, Participants{}, nil
	}
	parts, err := m.participants.GetParticipants(ctx, teamID, interventionID)
	if err != nil {
		m.log.Error("failed to resolve intervention participants", "interventionId", interventionID, "error", err)
		return nil, Participants{}, err
	}

	seen := make(map[uuid.UUID]struct{})
	var recipients []Member
	add := func(member Member) {
		if member.ID == excludeID {
			return
		}
		if _, ok := seen[member.ID]; ok {
			return
		}
		seen[member.ID] = struct{}{}
		recipients = append(recipients, member)
	}

	if member, err := m.members.GetMember(ctx, teamID, parts.RequesterID); err == nil {
		add(member)
	}
	if parts.AssignedProviderID != nil {
		if member, err := m.members.GetMember(ctx, teamID, *parts.AssignedProviderID); err == nil {
			add(member)
		}
	}
	managers, err := m.members.ListByRole(ctx, teamID, string(domain.RoleGestionnaire))
	if err != nil {
		m.log.Error("failed to list gestionnaires", "teamId", teamID, "error", err)
	} else {
		for _, manager := range managers {
			add(manager)
		}
	}
	return recipients, parts, nil
}

// ── Conversation events ──────────────────────────────────────────────────────

func (m *Module) handleMessageReceived(ctx context.Context, e events.MessageReceived) error {
	if m.members == nil {
		return nil
	}
	managers, err := m.members.ListByRole(ctx, e.TeamID, string(domain.RoleGestionnaire))
	if err != nil {
		m.log.Error("failed to list gestionnaires", "teamId", e.TeamID, "error", err)
		return err
	}

	title := "Nouveau message reçu"
	content := fmt.Sprintf("De %s : %s", e.FromEmail, e.Subject)
	for _, manager := range managers {
		m.sendInApp(ctx, e.TeamID, manager.ID, title, content, e.ConversationID, "message")
	}
	return nil
}

func (m *Module) handleMessagePosted(ctx context.Context, e events.MessagePosted) error {
	recipients, parts, err := m.resolveInterventionAudience(ctx, e.TeamID, e.InterventionID, e.SenderID)
	if err != nil {
		return err
	}

	title := "Nouveau message"
	content := fmt.Sprintf("Nouveau message sur l'intervention %s", parts.Reference)
	subject := fmt.Sprintf("[%s] Nouveau message", parts.Reference)
	bodyHTML := "<p>" + strings.ReplaceAll(html.EscapeString(e.Body), "\n", "<br>") + "</p>"

	for _, rec := range recipients {
		m.sendInApp(ctx, e.TeamID, rec.ID, title, content, e.ConversationID, "message")
		m.queueEmail(ctx, e.TeamID, templateCustomEmail, customEmailPayload{
			ToEmail:  rec.Email,
			Subject:  subject,
			BodyHTML: bodyHTML,
		})
	}
	return nil
}

// ── Outbox processing ────────────────────────────────────────────────────────

func (m *Module) handleNotificationOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	rec, err := m.outbox.GetByID(ctx, e.OutboxID)
	if err != nil {
		m.log.Error("failed to load outbox record", "outboxId", e.OutboxID, "error", err)
		return err
	}
	if rec.Status == notificationoutbox.StatusSucceeded || rec.Status == notificationoutbox.StatusFailed {
		return nil
	}

	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if sendErr := m.deliverOutboxRecord(ctx, rec); sendErr != nil {
		if errors.Is(sendErr, errUnsupportedTemplate) {
			_ = m.outbox.MarkFailed(ctx, rec.ID, sendErr.Error())
			m.log.Warn("unsupported outbox template", "outboxId", rec.ID, "template", rec.Template)
			return nil
		}
		m.handleOutboxDeliveryError(ctx, rec, sendErr)
		return sendErr
	}

	if err := m.outbox.MarkSucceeded(ctx, rec.ID); err != nil {
		m.log.Error("failed to mark outbox record succeeded", "outboxId", rec.ID, "error", err)
	}
	m.log.Info("outbox record delivered", "outboxId", rec.ID, "template", rec.Template)
	return nil
}

func (m *Module) deliverOutboxRecord(ctx context.Context, rec notificationoutbox.Record) error {
	switch rec.Template {
	case templateInterventionStatus:
		var p interventionStatusPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendInterventionStatusEmail(ctx, p.ToEmail, p.Reference, p.Title, p.Status, p.DetailURL)
	case templateQuoteReceived:
		var p quoteReceivedPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendQuoteReceivedEmail(ctx, p.ToEmail, p.Reference, p.QuoteNumber, p.TotalCents, p.DetailURL)
	case templateQuoteDecision:
		var p quoteDecisionPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendQuoteDecisionEmail(ctx, p.ToEmail, p.QuoteNumber, p.Accepted, p.Reason, p.DetailURL)
	case templateSlotProposed:
		var p slotEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendSlotProposedEmail(ctx, p.ToEmail, p.Reference, p.SlotDate, p.DetailURL)
	case templateSlotConfirmed:
		var p slotEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendSlotConfirmedEmail(ctx, p.ToEmail, p.Reference, p.SlotDate, p.DetailURL)
	case templateSlotReminder:
		var p slotReminderPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendSlotReminderEmail(ctx, p.ToEmail, p.Reference, p.Title, p.SlotDate)
	case templateCustomEmail:
		var p customEmailPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return m.sender.SendCustomEmail(ctx, p.ToEmail, p.Subject, p.BodyHTML)
	default:
		return fmt.Errorf("%w: %s", errUnsupportedTemplate, rec.Template)
	}
}

// errUnsupportedTemplate parks the record instead of retrying it.
var errUnsupportedTemplate = errors.New("unsupported outbox template")

func (m *Module) handleOutboxDeliveryError(ctx context.Context, rec notificationoutbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= notificationoutbox.MaxAttempts {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Warn("notification outbox exhausted retries",
			"outboxId", rec.ID,
			"template", rec.Template,
			"attempt", attempt,
			"error", deliveryErr,
		)
		return
	}

	delay := computeOutboxRetryDelay(attempt)
	if err := m.outbox.MarkRetry(ctx, rec.ID, deliveryErr.Error(), delay); err != nil {
		_ = m.outbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification outbox retry scheduling failed; marked failed",
			"outboxId", rec.ID, "attempt", attempt, "error", err)
		return
	}
	m.log.Warn("notification outbox scheduled retry",
		"outboxId", rec.ID,
		"template", rec.Template,
		"attempt", attempt,
		"delay", delay,
		"error", deliveryErr,
	)
}

func computeOutboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (m *Module) sendInApp(ctx context.Context, teamID, userID uuid.UUID, title, content string, resourceID uuid.UUID, category string) {
	resourceType := category
	err := m.inAppService.Send(ctx, inapp.SendParams{
		TeamID:       teamID,
		UserID:       userID,
		Title:        title,
		Content:      content,
		ResourceID:   &resourceID,
		ResourceType: resourceType,
		Category:     category,
	})
	if err != nil {
		m.log.Error("failed to create in-app notification", "userId", userID, "error", err)
	}
}

func (m *Module) queueEmail(ctx context.Context, teamID uuid.UUID, template string, payload any) {
	id, err := m.outbox.Insert(ctx, notificationoutbox.InsertParams{
		TeamID:   teamID,
		Template: template,
		Payload:  payload,
		RunAt:    time.Now().UTC(),
	})
	if err != nil {
		m.log.Error("failed to queue notification email", "template", template, "error", err)
		return
	}
	m.log.Debug("notification email queued", "outboxId", id, "template", template)
}

func (m *Module) buildURL(path, tokenValue string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + path + "?token=" + tokenValue
}

func (m *Module) interventionURL(interventionID uuid.UUID) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + "/interventions/" + interventionID.String()
}

func formatSlotDate(t time.Time) string {
	return t.Format("02/01/2006 à 15h04")
}

// ── Outbox payloads ──────────────────────────────────────────────────────────

const (
	templateInterventionStatus = "intervention_status"
	templateQuoteReceived      = "quote_received"
	templateQuoteDecision      = "quote_decision"
	templateSlotProposed       = "slot_proposed"
	templateSlotConfirmed      = "slot_confirmed"
	templateSlotReminder       = "slot_reminder"
	templateCustomEmail        = "email_send"
)

type interventionStatusPayload struct {
	ToEmail   string `json:"toEmail"`
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	DetailURL string `json:"detailUrl"`
}

type quoteReceivedPayload struct {
	ToEmail     string `json:"toEmail"`
	Reference   string `json:"reference"`
	QuoteNumber string `json:"quoteNumber"`
	TotalCents  int64  `json:"totalCents"`
	DetailURL   string `json:"detailUrl"`
}

type quoteDecisionPayload struct {
	ToEmail     string `json:"toEmail"`
	QuoteNumber string `json:"quoteNumber"`
	Accepted    bool   `json:"accepted"`
	Reason      string `json:"reason,omitempty"`
	DetailURL   string `json:"detailUrl"`
}

type slotEmailPayload struct {
	ToEmail   string `json:"toEmail"`
	Reference string `json:"reference,omitempty"`
	SlotDate  string `json:"slotDate"`
	DetailURL string `json:"detailUrl"`
}

type slotReminderPayload struct {
	ToEmail   string `json:"toEmail"`
	Reference string `json:"reference,omitempty"`
	Title     string `json:"title,omitempty"`
	SlotDate  string `json:"slotDate"`
}

type customEmailPayload struct {
	ToEmail  string `json:"toEmail"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"bodyHtml"`
}
