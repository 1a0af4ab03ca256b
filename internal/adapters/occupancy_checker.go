package adapters

import (
	"context"

	contractservice "github.com/aumugisha-umu/seido-sub017/internal/contracts/service"
	intservice "github.com/aumugisha-umu/seido-sub017/internal/interventions/service"

	"github.com/google/uuid"
)

// LeaseOccupancyChecker answers the interventions module's occupancy
// question from the contracts module's active leases.
type LeaseOccupancyChecker struct {
	contracts *contractservice.Service
}

// NewLeaseOccupancyChecker creates the adapter over the contracts service.
func NewLeaseOccupancyChecker(contracts *contractservice.Service) *LeaseOccupancyChecker {
	return &LeaseOccupancyChecker{contracts: contracts}
}

func (a *LeaseOccupancyChecker) OccupiesLot(ctx context.Context, teamID, userID, lotID uuid.UUID) (bool, error) {
	return a.contracts.OccupiesLot(ctx, teamID, userID, lotID)
}

var _ intservice.OccupancyChecker = (*LeaseOccupancyChecker)(nil)
