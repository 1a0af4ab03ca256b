package adapters

import (
	"context"

	identityrepo "github.com/aumugisha-umu/seido-sub017/internal/identity/repository"
	intrepository "github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/notification"

	"github.com/google/uuid"
)

// InterventionParticipants resolves intervention participants for the
// notification module without importing the interventions service.
type InterventionParticipants struct {
	repo *intrepository.Repository
}

func NewInterventionParticipants(repo *intrepository.Repository) *InterventionParticipants {
	return &InterventionParticipants{repo: repo}
}

func (a *InterventionParticipants) GetParticipants(ctx context.Context, teamID, interventionID uuid.UUID) (notification.Participants, error) {
	iv, err := a.repo.GetByID(ctx, teamID, interventionID)
	if err != nil {
		return notification.Participants{}, err
	}
	return notification.Participants{
		RequesterID:        iv.RequesterID,
		AssignedProviderID: iv.AssignedProviderID,
		Reference:          iv.Reference,
		Title:              iv.Title,
	}, nil
}

var _ notification.InterventionParticipantsReader = (*InterventionParticipants)(nil)

// MemberDirectory resolves team members for notification fan-out, backed by
// the identity repository.
type MemberDirectory struct {
	repo *identityrepo.Repository
}

func NewMemberDirectory(repo *identityrepo.Repository) *MemberDirectory {
	return &MemberDirectory{repo: repo}
}

func (a *MemberDirectory) GetMember(ctx context.Context, teamID, userID uuid.UUID) (notification.Member, error) {
	member, err := a.repo.GetMember(ctx, teamID, userID)
	if err != nil {
		return notification.Member{}, err
	}
	return toNotificationMember(member), nil
}

func (a *MemberDirectory) ListByRole(ctx context.Context, teamID uuid.UUID, role string) ([]notification.Member, error) {
	members, err := a.repo.ListMembers(ctx, teamID, role)
	if err != nil {
		return nil, err
	}
	result := make([]notification.Member, 0, len(members))
	for _, member := range members {
		result = append(result, toNotificationMember(member))
	}
	return result, nil
}

func toNotificationMember(member identityrepo.Member) notification.Member {
	return notification.Member{
		ID:        member.ID,
		Email:     member.Email,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Role:      member.Role,
	}
}

var _ notification.MemberDirectory = (*MemberDirectory)(nil)
