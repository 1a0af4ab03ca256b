package adapters

import (
	"context"

	authservice "github.com/aumugisha-umu/seido-sub017/internal/auth/service"
	identityrepo "github.com/aumugisha-umu/seido-sub017/internal/identity/repository"

	"github.com/google/uuid"
)

// InviteStore lets the auth service redeem invitations owned by the
// identity module.
type InviteStore struct {
	repo *identityrepo.Repository
}

// NewInviteStore creates the adapter over the identity repository.
func NewInviteStore(repo *identityrepo.Repository) *InviteStore {
	return &InviteStore{repo: repo}
}

func (a *InviteStore) GetPendingByTokenHash(ctx context.Context, tokenHash string) (authservice.Invitation, error) {
	inv, err := a.repo.GetPendingByTokenHash(ctx, tokenHash)
	if err != nil {
		return authservice.Invitation{}, err
	}
	return authservice.Invitation{
		ID:     inv.ID,
		TeamID: inv.TeamID,
		Email:  inv.Email,
		Role:   inv.Role,
	}, nil
}

func (a *InviteStore) MarkAccepted(ctx context.Context, inviteID, userID uuid.UUID) error {
	return a.repo.MarkAccepted(ctx, inviteID, userID)
}

var _ authservice.InviteStore = (*InviteStore)(nil)
