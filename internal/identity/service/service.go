// Package service implements team and invitation use cases.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/auth/token"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

const inviteTokenBytes = 32

// Service implements identity use cases.
type Service struct {
	repo     *repository.Repository
	cfg      config.AuthServiceConfig
	log      *logger.Logger
	eventBus events.Bus
}

// New creates a new identity service.
func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// SetEventBus injects the event bus after construction.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// GetTeam returns the caller's team.
func (s *Service) GetTeam(ctx context.Context, teamID uuid.UUID) (repository.Team, error) {
	return s.repo.GetTeam(ctx, teamID)
}

// UpdateTeam renames the caller's team. Gestionnaires only.
func (s *Service) UpdateTeam(ctx context.Context, teamID uuid.UUID, actorRole, name string) (repository.Team, error) {
	if actorRole != string(domain.RoleGestionnaire) {
		return repository.Team{}, apperr.Forbidden("seul un gestionnaire peut modifier l'équipe")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return repository.Team{}, apperr.Validation("le nom de l'équipe est requis")
	}
	return s.repo.UpdateTeamName(ctx, teamID, trimmed)
}

// ListMembers returns the team roster, optionally filtered by role.
func (s *Service) ListMembers(ctx context.Context, teamID uuid.UUID, role string) ([]repository.Member, error) {
	if role != "" && !domain.IsKnownRole(domain.Role(role)) {
		return nil, apperr.Validation("rôle inconnu")
	}
	return s.repo.ListMembers(ctx, teamID, role)
}

// GetMember returns one member of the caller's team.
func (s *Service) GetMember(ctx context.Context, teamID, userID uuid.UUID) (repository.Member, error) {
	return s.repo.GetMember(ctx, teamID, userID)
}

// CreateInvite issues an invitation for the given email and role. Only a
// gestionnaire can invite, and the gestionnaire role itself can only be
// granted this way after sign-up.
func (s *Service) CreateInvite(ctx context.Context, teamID uuid.UUID, actorID uuid.UUID, actorRole, email, role string) (repository.Invitation, error) {
	if actorRole != string(domain.RoleGestionnaire) {
		return repository.Invitation{}, apperr.Forbidden("seul un gestionnaire peut inviter des membres")
	}
	if !domain.IsKnownRole(domain.Role(role)) {
		return repository.Invitation{}, apperr.Validation("rôle inconnu")
	}

	rawToken, err := token.GenerateRandomToken(inviteTokenBytes)
	if err != nil {
		return repository.Invitation{}, err
	}

	expiresAt := time.Now().Add(s.cfg.GetInviteTokenTTL())
	invite, err := s.repo.CreateInvitation(ctx, teamID, email, role, token.HashSHA256(rawToken), expiresAt, actorID)
	if err != nil {
		return repository.Invitation{}, err
	}

	team, err := s.repo.GetTeam(ctx, teamID)
	if err == nil && s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TeamInviteCreated{
			BaseEvent:   events.NewBaseEvent(),
			TeamID:      teamID,
			TeamName:    team.Name,
			Email:       email,
			Role:        role,
			InviteToken: rawToken,
		})
	}

	return invite, nil
}

// ListInvites returns all invitations of the team, newest first.
func (s *Service) ListInvites(ctx context.Context, teamID uuid.UUID, actorRole string) ([]repository.Invitation, error) {
	if actorRole != string(domain.RoleGestionnaire) {
		return nil, apperr.Forbidden("seul un gestionnaire peut consulter les invitations")
	}
	return s.repo.ListInvitations(ctx, teamID)
}

// RevokeInvite withdraws a pending invitation.
func (s *Service) RevokeInvite(ctx context.Context, teamID, inviteID uuid.UUID, actorRole string) error {
	if actorRole != string(domain.RoleGestionnaire) {
		return apperr.Forbidden("seul un gestionnaire peut révoquer une invitation")
	}
	return s.repo.RevokeInvitation(ctx, teamID, inviteID)
}
