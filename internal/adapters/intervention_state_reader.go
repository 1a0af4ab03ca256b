package adapters

import (
	"context"

	intrepository "github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	quoteservice "github.com/aumugisha-umu/seido-sub017/internal/quotes/service"

	"github.com/google/uuid"
)

// InterventionStateReader exposes intervention status and assignment to the
// quotes module without importing the interventions service.
type InterventionStateReader struct {
	repo *intrepository.Repository
}

func NewInterventionStateReader(repo *intrepository.Repository) *InterventionStateReader {
	return &InterventionStateReader{repo: repo}
}

func (a *InterventionStateReader) GetInterventionState(ctx context.Context, teamID, interventionID uuid.UUID) (string, *uuid.UUID, error) {
	iv, err := a.repo.GetByID(ctx, teamID, interventionID)
	if err != nil {
		return "", nil, err
	}
	return iv.Status, iv.AssignedProviderID, nil
}

var _ quoteservice.InterventionReader = (*InterventionStateReader)(nil)
