// Package service implements building and lot management.
package service

import (
	"context"
	"strings"

	"github.com/aumugisha-umu/seido-sub017/internal/buildings/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/buildings/transport"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service provides business logic for the patrimoine.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new buildings service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func requireGestionnaire(role string) error {
	if role != string(domain.RoleGestionnaire) {
		return apperr.Forbidden("seul un gestionnaire peut gérer le patrimoine")
	}
	return nil
}

func (s *Service) CreateBuilding(ctx context.Context, teamID uuid.UUID, actorRole string, req transport.CreateBuildingRequest) (*transport.BuildingResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	b, err := s.repo.CreateBuilding(ctx, repository.Building{
		TeamID:       teamID,
		Name:         strings.TrimSpace(req.Name),
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Country:      strings.ToUpper(req.Country),
	})
	if err != nil {
		return nil, err
	}

	resp := toBuildingResponse(b)
	return &resp, nil
}

func (s *Service) GetBuilding(ctx context.Context, teamID uuid.UUID, buildingID uuid.UUID) (*transport.BuildingResponse, error) {
	b, err := s.repo.GetBuilding(ctx, teamID, buildingID)
	if err != nil {
		return nil, err
	}
	resp := toBuildingResponse(b)
	return &resp, nil
}

func (s *Service) ListBuildings(ctx context.Context, teamID uuid.UUID, q transport.ListBuildingsQuery) (*transport.ListBuildingsResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	buildings, total, err := s.repo.ListBuildings(ctx, teamID, strings.TrimSpace(q.Search), page, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]transport.BuildingResponse, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, toBuildingResponse(b))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &transport.ListBuildingsResponse{
		Buildings:  out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) UpdateBuilding(ctx context.Context, teamID uuid.UUID, actorRole string, buildingID uuid.UUID, req transport.UpdateBuildingRequest) (*transport.BuildingResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	b, err := s.repo.UpdateBuilding(ctx, repository.Building{
		ID:           buildingID,
		TeamID:       teamID,
		Name:         strings.TrimSpace(req.Name),
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Country:      strings.ToUpper(req.Country),
	})
	if err != nil {
		return nil, err
	}

	resp := toBuildingResponse(b)
	return &resp, nil
}

func (s *Service) DeleteBuilding(ctx context.Context, teamID uuid.UUID, actorRole string, buildingID uuid.UUID) error {
	if err := requireGestionnaire(actorRole); err != nil {
		return err
	}
	return s.repo.DeleteBuilding(ctx, teamID, buildingID)
}

func (s *Service) CreateLot(ctx context.Context, teamID uuid.UUID, actorRole string, buildingID uuid.UUID, req transport.CreateLotRequest) (*transport.LotResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	// The building must exist in the caller's team.
	if _, err := s.repo.GetBuilding(ctx, teamID, buildingID); err != nil {
		return nil, err
	}

	l, err := s.repo.CreateLot(ctx, repository.Lot{
		TeamID:     teamID,
		BuildingID: buildingID,
		Reference:  strings.TrimSpace(req.Reference),
		Floor:      req.Floor,
		SurfaceM2:  req.SurfaceM2,
		RoomCount:  req.RoomCount,
	})
	if err != nil {
		return nil, err
	}

	resp := toLotResponse(repository.LotOccupancy{Lot: l})
	return &resp, nil
}

func (s *Service) GetLot(ctx context.Context, teamID, lotID uuid.UUID) (*transport.LotResponse, error) {
	l, err := s.repo.GetLot(ctx, teamID, lotID)
	if err != nil {
		return nil, err
	}
	resp := toLotResponse(repository.LotOccupancy{Lot: l})
	return &resp, nil
}

// ListLots returns the lots of a building with their occupancy summary.
func (s *Service) ListLots(ctx context.Context, teamID, buildingID uuid.UUID) ([]transport.LotResponse, error) {
	lots, err := s.repo.ListLots(ctx, teamID, buildingID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.LotResponse, 0, len(lots))
	for _, lo := range lots {
		out = append(out, toLotResponse(lo))
	}
	return out, nil
}

func (s *Service) UpdateLot(ctx context.Context, teamID uuid.UUID, actorRole string, lotID uuid.UUID, req transport.UpdateLotRequest) (*transport.LotResponse, error) {
	if err := requireGestionnaire(actorRole); err != nil {
		return nil, err
	}

	l, err := s.repo.UpdateLot(ctx, repository.Lot{
		ID:        lotID,
		TeamID:    teamID,
		Reference: strings.TrimSpace(req.Reference),
		Floor:     req.Floor,
		SurfaceM2: req.SurfaceM2,
		RoomCount: req.RoomCount,
	})
	if err != nil {
		return nil, err
	}

	resp := toLotResponse(repository.LotOccupancy{Lot: l})
	return &resp, nil
}

func (s *Service) DeleteLot(ctx context.Context, teamID uuid.UUID, actorRole string, lotID uuid.UUID) error {
	if err := requireGestionnaire(actorRole); err != nil {
		return err
	}
	return s.repo.DeleteLot(ctx, teamID, lotID)
}

// LotIDsByBuilding exposes building membership for intervention filtering.
func (s *Service) LotIDsByBuilding(ctx context.Context, teamID, buildingID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ListLotIDsByBuilding(ctx, teamID, buildingID)
}

func toBuildingResponse(b repository.Building) transport.BuildingResponse {
	return transport.BuildingResponse{
		ID:           b.ID.String(),
		Name:         b.Name,
		AddressLine1: b.AddressLine1,
		AddressLine2: b.AddressLine2,
		PostalCode:   b.PostalCode,
		City:         b.City,
		Country:      b.Country,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toLotResponse(lo repository.LotOccupancy) transport.LotResponse {
	return transport.LotResponse{
		ID:         lo.ID.String(),
		BuildingID: lo.BuildingID.String(),
		Reference:  lo.Reference,
		Floor:      lo.Floor,
		SurfaceM2:  lo.SurfaceM2,
		RoomCount:  lo.RoomCount,
		Occupied:   lo.Occupied,
		CreatedAt:  lo.CreatedAt,
		UpdatedAt:  lo.UpdatedAt,
	}
}
