// Package service assembles the role-scoped dashboard summary.
package service

import (
	"context"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/dashboard/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const expiringLeaseWindow = 90 * 24 * time.Hour

// Summary is the dashboard payload. Portfolio figures are only populated for
// gestionnaires; the other roles see their own slice of the activity.
type Summary struct {
	InterventionsByStatus map[string]int `json:"interventionsByStatus"`
	OpenByUrgency         map[string]int `json:"openByUrgency"`
	Buildings             *int           `json:"buildings,omitempty"`
	Lots                  *int           `json:"lots,omitempty"`
	ActiveLeases          *int           `json:"activeLeases,omitempty"`
	ExpiringLeases        *int           `json:"expiringLeases,omitempty"`
	PendingQuotes         *int           `json:"pendingQuotes,omitempty"`
}

// Service computes dashboard summaries.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new dashboard service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetSummary fans the aggregate queries out concurrently and scopes them to
// the actor's role.
func (s *Service) GetSummary(ctx context.Context, teamID, actorID uuid.UUID, actorRole string) (*Summary, error) {
	scope := repository.Scope{TeamID: teamID}
	switch actorRole {
	case string(domain.RoleLocataire), string(domain.RoleProprietaire):
		scope.RequesterID = &actorID
	case string(domain.RolePrestataire):
		scope.ProviderID = &actorID
	}

	summary := &Summary{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.repo.CountInterventionsByStatus(gctx, scope)
		if err != nil {
			return err
		}
		summary.InterventionsByStatus = counts
		return nil
	})

	g.Go(func() error {
		counts, err := s.repo.CountOpenByUrgency(gctx, scope)
		if err != nil {
			return err
		}
		summary.OpenByUrgency = counts
		return nil
	})

	switch actorRole {
	case string(domain.RoleGestionnaire):
		g.Go(func() error {
			count, err := s.repo.CountBuildings(gctx, teamID)
			if err != nil {
				return err
			}
			summary.Buildings = &count
			return nil
		})
		g.Go(func() error {
			count, err := s.repo.CountLots(gctx, teamID)
			if err != nil {
				return err
			}
			summary.Lots = &count
			return nil
		})
		g.Go(func() error {
			count, err := s.repo.CountActiveLeases(gctx, teamID, nil)
			if err != nil {
				return err
			}
			summary.ActiveLeases = &count
			return nil
		})
		g.Go(func() error {
			count, err := s.repo.CountExpiringLeases(gctx, teamID, expiringLeaseWindow)
			if err != nil {
				return err
			}
			summary.ExpiringLeases = &count
			return nil
		})
		g.Go(func() error {
			count, err := s.repo.CountPendingQuotes(gctx, teamID, nil)
			if err != nil {
				return err
			}
			summary.PendingQuotes = &count
			return nil
		})
	case string(domain.RolePrestataire):
		g.Go(func() error {
			count, err := s.repo.CountPendingQuotes(gctx, teamID, &actorID)
			if err != nil {
				return err
			}
			summary.PendingQuotes = &count
			return nil
		})
	case string(domain.RoleLocataire):
		g.Go(func() error {
			count, err := s.repo.CountActiveLeases(gctx, teamID, &actorID)
			if err != nil {
				return err
			}
			summary.ActiveLeases = &count
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("failed to build dashboard summary", "teamId", teamID, "role", actorRole, "error", err)
		return nil, err
	}
	return summary, nil
}
