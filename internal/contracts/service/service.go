// Package service implements lease management.
package service

import (
	"context"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/contracts/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/contracts/transport"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

// expiringWindow is how far ahead the dashboard looks for ending leases.
const expiringWindow = 90 * 24 * time.Hour

const (
	StatusUpcoming = "a_venir"
	StatusActive   = "actif"
	StatusExpired  = "expire"
)

// Service provides business logic for leases.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new contracts service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func requireGestionnaire(role string) error {
	if role != string(domain.RoleGestionnaire) {
		return apperr.Forbidden("seul un gestionnaire peut gérer les baux")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, teamID uuid.UUID, actorRole string, req transport.CreateLeaseRequest) (*transport.LeaseResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, apperr.Validation("identifiant de lot invalide")
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return nil, apperr.Validation("identifiant de locataire invalide")
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, apperr.Validation("la date de fin doit être postérieure à la date de début")
	}

	lease, err := s.repo.Create(ctx, repository.Lease{
		TeamID:       teamID,
		LotID:        lotID,
		TenantID:     tenantID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		RentCents:    req.RentCents,
		ChargesCents: req.ChargesCents,
		DepositCents: req.DepositCents,
	})
	if err != nil {
		return nil, err
	}

	resp := toLeaseResponse(lease, time.Now())
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, teamID, leaseID uuid.UUID) (*transport.LeaseResponse, error) {
	lease, err := s.repo.GetByID(ctx, teamID, leaseID)
	if err != nil {
		return nil, err
	}
	resp := toLeaseResponse(lease, time.Now())
	return &resp, nil
}

// List returns leases visible to the actor. Locataires only see their own.
func (s *Service) List(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, q transport.ListLeasesQuery) ([]transport.LeaseResponse, error) {
	var lotID, tenantID *uuid.UUID
	if q.LotID != "" {
		id, err := uuid.Parse(q.LotID)
		if err != nil {
			return nil, apperr.Validation("identifiant de lot invalide")
		}
		lotID = &id
	}
	if q.TenantID != "" {
		id, err := uuid.Parse(q.TenantID)
		if err != nil {
			return nil, apperr.Validation("identifiant de locataire invalide")
		}
		tenantID = &id
	}
	if actorRole == string(domain.RoleLocataire) {
		tenantID = &actorID
	}

	leases, err := s.repo.List(ctx, teamID, lotID, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]transport.LeaseResponse, 0, len(leases))
	for _, lease := range leases {
		out = append(out, toLeaseResponse(lease, now))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, teamID uuid.UUID, actorRole string, leaseID uuid.UUID, req transport.UpdateLeaseRequest) (*transport.LeaseResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, apperr.Validation("la date de fin doit être postérieure à la date de début")
	}

	lease, err := s.repo.Update(ctx, repository.Lease{
		ID:           leaseID,
		TeamID:       teamID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		RentCents:    req.RentCents,
		ChargesCents: req.ChargesCents,
		DepositCents: req.DepositCents,
	})
	if err != nil {
		return nil, err
	}

	resp := toLeaseResponse(lease, time.Now())
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, teamID uuid.UUID, actorRole string, leaseID uuid.UUID) error {
	if err := requireGestionnaire(actorRole); err != nil {
		return err
	}
	return s.repo.Delete(ctx, teamID, leaseID)
}

// ListExpiringSoon returns leases ending within the dashboard window.
func (s *Service) ListExpiringSoon(ctx context.Context, teamID uuid.UUID, actorRole string) ([]transport.LeaseResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	leases, err := s.repo.ListExpiringSoon(ctx, teamID, expiringWindow)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]transport.LeaseResponse, 0, len(leases))
	for _, lease := range leases {
		out = append(out, toLeaseResponse(lease, now))
	}
	return out, nil
}

// OccupiesLot reports whether the user has an active lease on the lot.
func (s *Service) OccupiesLot(ctx context.Context, teamID, userID, lotID uuid.UUID) (bool, error) {
	return s.repo.HasActiveLease(ctx, teamID, userID, lotID)
}

// LeaseStatus derives the lifecycle position of a lease from its dates.
func LeaseStatus(lease repository.Lease, now time.Time) string {
	today := now.Truncate(24 * time.Hour)
	switch {
	case lease.StartDate.After(today):
		return StatusUpcoming
	case lease.EndDate != nil && lease.EndDate.Before(today):
		return StatusExpired
	default:
		return StatusActive
	}
}

func toLeaseResponse(lease repository.Lease, now time.Time) transport.LeaseResponse {
	return transport.LeaseResponse{
		ID:           lease.ID.String(),
		LotID:        lease.LotID.String(),
		TenantID:     lease.TenantID.String(),
		StartDate:    lease.StartDate,
		EndDate:      lease.EndDate,
		RentCents:    lease.RentCents,
		ChargesCents: lease.ChargesCents,
		DepositCents: lease.DepositCents,
		Status:       LeaseStatus(lease, now),
		CreatedAt:    lease.CreatedAt,
		UpdatedAt:    lease.UpdatedAt,
	}
}
