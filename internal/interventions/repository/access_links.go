package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccessLink is a single-intervention magic link. Only the SHA-256 hash of
// the token is stored.
type AccessLink struct {
	ID             uuid.UUID `db:"id"`
	InterventionID uuid.UUID `db:"intervention_id"`
	TeamID         uuid.UUID `db:"team_id"`
	TokenHash      string    `db:"token_hash"`
	ExpiresAt      time.Time `db:"expires_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// CreateAccessLink persists a new magic link for an intervention.
func (r *Repository) CreateAccessLink(ctx context.Context, link *AccessLink) error {
	query := `
		INSERT INTO intervention_access_links (id, intervention_id, team_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		link.ID, link.InterventionID, link.TeamID, link.TokenHash, link.ExpiresAt, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access link: %w", err)
	}
	return nil
}

// GetByAccessToken resolves an unexpired magic link hash to its intervention.
func (r *Repository) GetByAccessToken(ctx context.Context, tokenHash string) (*Intervention, error) {
	query := `
		SELECT i.id, i.team_id, i.reference, i.title, i.description, i.urgency, i.status,
			i.lot_id, i.building_id, i.requester_id, i.requester_role, i.assigned_provider_id,
			i.completion_note, i.satisfaction, i.status_reason, i.created_at, i.updated_at
		FROM intervention_access_links l
		JOIN interventions i ON i.id = l.intervention_id
		WHERE l.token_hash = $1 AND l.expires_at > NOW()`

	var iv Intervention
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&iv.ID, &iv.TeamID, &iv.Reference, &iv.Title, &iv.Description, &iv.Urgency, &iv.Status,
		&iv.LotID, &iv.BuildingID, &iv.RequesterID, &iv.RequesterRole, &iv.AssignedProviderID,
		&iv.CompletionNote, &iv.Satisfaction, &iv.StatusReason, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("lien invalide ou expiré")
		}
		return nil, fmt.Errorf("failed to resolve access link: %w", err)
	}
	return &iv, nil
}
