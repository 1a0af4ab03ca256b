package notification

import (
	"context"
	"testing"

	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.seido.fr" }

type testSender struct {
	verificationCalls int
	resetCalls        int
	inviteCalls       int
	lastURL           string
	lastTeamName      string
	lastRole          string
}

func (s *testSender) SendVerificationEmail(_ context.Context, _, verifyURL string) error {
	s.verificationCalls++
	s.lastURL = verifyURL
	return nil
}

func (s *testSender) SendPasswordResetEmail(_ context.Context, _, resetURL string) error {
	s.resetCalls++
	s.lastURL = resetURL
	return nil
}

func (s *testSender) SendTeamInviteEmail(_ context.Context, _, teamName, role, inviteURL string) error {
	s.inviteCalls++
	s.lastTeamName = teamName
	s.lastRole = role
	s.lastURL = inviteURL
	return nil
}

func (s *testSender) SendInterventionStatusEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (s *testSender) SendQuoteReceivedEmail(context.Context, string, string, string, int64, string) error {
	return nil
}

func (s *testSender) SendQuoteDecisionEmail(context.Context, string, string, bool, string, string) error {
	return nil
}

func (s *testSender) SendSlotProposedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (s *testSender) SendSlotConfirmedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (s *testSender) SendSlotReminderEmail(context.Context, string, string, string, string) error {
	return nil
}

func (s *testSender) SendCustomEmail(context.Context, string, string, string) error { return nil }

type testMemberDirectory struct {
	members map[uuid.UUID]Member
}

func (d *testMemberDirectory) GetMember(_ context.Context, _, userID uuid.UUID) (Member, error) {
	member, ok := d.members[userID]
	if !ok {
		return Member{}, context.Canceled
	}
	return member, nil
}

func (d *testMemberDirectory) ListByRole(_ context.Context, _ uuid.UUID, role string) ([]Member, error) {
	var result []Member
	for _, member := range d.members {
		if member.Role == role {
			result = append(result, member)
		}
	}
	return result, nil
}

type testParticipantsReader struct {
	parts Participants
}

func (r *testParticipantsReader) GetParticipants(context.Context, uuid.UUID, uuid.UUID) (Participants, error) {
	return r.parts, nil
}

func TestHandleUserSignedUpSendsVerification(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	err := m.handleUserSignedUp(context.Background(), events.UserSignedUp{
		UserID:      uuid.New(),
		TeamID:      uuid.New(),
		Email:       "marie@example.fr",
		Role:        "gestionnaire",
		VerifyToken: "tok-123",
	})
	if err != nil {
		t.Fatalf("handleUserSignedUp returned error: %v", err)
	}
	if sender.verificationCalls != 1 {
		t.Fatalf("expected 1 verification email, got %d", sender.verificationCalls)
	}
	want := "https://app.seido.fr/verify-email?token=tok-123"
	if sender.lastURL != want {
		t.Fatalf("verify URL = %q, want %q", sender.lastURL, want)
	}
}

func TestHandleTeamInviteCreatedSendsInvite(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	err := m.handleTeamInviteCreated(context.Background(), events.TeamInviteCreated{
		TeamID:      uuid.New(),
		TeamName:    "Agence Dupont",
		Email:       "plombier@example.fr",
		Role:        "prestataire",
		InviteToken: "invite-456",
	})
	if err != nil {
		t.Fatalf("handleTeamInviteCreated returned error: %v", err)
	}
	if sender.inviteCalls != 1 {
		t.Fatalf("expected 1 invite email, got %d", sender.inviteCalls)
	}
	if sender.lastTeamName != "Agence Dupont" || sender.lastRole != "prestataire" {
		t.Fatalf("invite email carried %q/%q", sender.lastTeamName, sender.lastRole)
	}
	want := "https://app.seido.fr/accept-invite?token=invite-456"
	if sender.lastURL != want {
		t.Fatalf("invite URL = %q, want %q", sender.lastURL, want)
	}
}

func TestResolveEffectRecipients(t *testing.T) {
	teamID := uuid.New()
	interventionID := uuid.New()
	requesterID := uuid.New()
	providerID := uuid.New()
	managerID := uuid.New()
	otherManagerID := uuid.New()

	directory := &testMemberDirectory{members: map[uuid.UUID]Member{
		requesterID:    {ID: requesterID, Email: "locataire@example.fr", Role: "locataire"},
		providerID:     {ID: providerID, Email: "prestataire@example.fr", Role: "prestataire"},
		managerID:      {ID: managerID, Email: "gestionnaire@example.fr", Role: "gestionnaire"},
		otherManagerID: {ID: otherManagerID, Email: "gestionnaire2@example.fr", Role: "gestionnaire"},
	}}
	reader := &testParticipantsReader{parts: Participants{
		RequesterID:        requesterID,
		AssignedProviderID: &providerID,
		Reference:          "INT-2026-0001",
		Title:              "Fuite d'eau",
	}}

	m := New(nil, &testSender{}, testNotificationConfig{}, logger.New("development"))
	m.SetMemberDirectory(directory)
	m.SetParticipantsReader(reader)

	tests := []struct {
		name    string
		effect  domain.Effect
		actorID uuid.UUID
		wantIDs map[uuid.UUID]bool
	}{
		{
			name:    "notify requester",
			effect:  domain.EffectNotifyRequester,
			actorID: managerID,
			wantIDs: map[uuid.UUID]bool{requesterID: true},
		},
		{
			name:    "notify provider",
			effect:  domain.EffectNotifyProvider,
			actorID: managerID,
			wantIDs: map[uuid.UUID]bool{providerID: true},
		},
		{
			name:    "notify managers",
			effect:  domain.EffectNotifyManager,
			actorID: requesterID,
			wantIDs: map[uuid.UUID]bool{managerID: true, otherManagerID: true},
		},
		{
			name:    "notify all excludes actor",
			effect:  domain.EffectNotifyAll,
			actorID: managerID,
			wantIDs: map[uuid.UUID]bool{requesterID: true, providerID: true, otherManagerID: true},
		},
		{
			name:    "no effect",
			effect:  domain.EffectNone,
			actorID: managerID,
			wantIDs: map[uuid.UUID]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients, err := m.resolveEffectRecipients(context.Background(), events.InterventionStatusChanged{
				InterventionID: interventionID,
				TeamID:         teamID,
				ActorID:        tt.actorID,
				Effect:         string(tt.effect),
			})
			if err != nil {
				t.Fatalf("resolveEffectRecipients returned error: %v", err)
			}
			if len(recipients) != len(tt.wantIDs) {
				t.Fatalf("got %d recipients, want %d", len(recipients), len(tt.wantIDs))
			}
			for _, rec := range recipients {
				if !tt.wantIDs[rec.ID] {
					t.Fatalf("unexpected recipient %s (%s)", rec.ID, rec.Email)
				}
			}
		})
	}
}

func TestComputeOutboxRetryDelayCaps(t *testing.T) {
	if got := computeOutboxRetryDelay(1); got != outboxRetryBaseDelay {
		t.Fatalf("attempt 1 delay = %v, want %v", got, outboxRetryBaseDelay)
	}
	if got := computeOutboxRetryDelay(2); got != 2*outboxRetryBaseDelay {
		t.Fatalf("attempt 2 delay = %v, want %v", got, 2*outboxRetryBaseDelay)
	}
	if got := computeOutboxRetryDelay(20); got != outboxRetryMaxDelay {
		t.Fatalf("attempt 20 delay = %v, want %v", got, outboxRetryMaxDelay)
	}
	if got := computeOutboxRetryDelay(0); got != outboxRetryBaseDelay {
		t.Fatalf("attempt 0 delay = %v, want %v", got, outboxRetryBaseDelay)
	}
}
