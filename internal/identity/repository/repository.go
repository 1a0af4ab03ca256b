// Package repository provides PostgreSQL persistence for teams, team
// members and invitations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists identity data.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new identity repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Team is an agency tenant. All domain data hangs off a team.
type Team struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a user seen from the team roster.
type Member struct {
	ID        uuid.UUID
	Email     string
	Role      string
	FirstName string
	LastName  string
	Phone     *string
	CreatedAt time.Time
}

// Invitation is a pending or settled offer to join a team under a role.
type Invitation struct {
	ID         uuid.UUID
	TeamID     uuid.UUID
	Email      string
	Role       string
	TokenHash  string
	ExpiresAt  time.Time
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy *uuid.UUID
	RevokedAt  *time.Time
}

func (r *Repository) GetTeam(ctx context.Context, teamID uuid.UUID) (Team, error) {
	var team Team
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM teams
		WHERE id = $1
	`, teamID).Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, apperr.NotFound("équipe introuvable")
	}
	return team, err
}

func (r *Repository) UpdateTeamName(ctx context.Context, teamID uuid.UUID, name string) (Team, error) {
	var team Team
	err := r.pool.QueryRow(ctx, `
		UPDATE teams
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, teamID, name).Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, apperr.NotFound("équipe introuvable")
	}
	return team, err
}

// ListMembers returns the team roster, optionally filtered by role.
func (r *Repository) ListMembers(ctx context.Context, teamID uuid.UUID, role string) ([]Member, error) {
	query := `
		SELECT id, email, role, first_name, last_name, phone, created_at
		FROM users
		WHERE team_id = $1`
	args := []interface{}{teamID}
	if role != "" {
		query += ` AND role = $2`
		args = append(args, role)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Role, &m.FirstName, &m.LastName, &m.Phone, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) GetMember(ctx context.Context, teamID, userID uuid.UUID) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, role, first_name, last_name, phone, created_at
		FROM users
		WHERE team_id = $1 AND id = $2
	`, teamID, userID).Scan(&m.ID, &m.Email, &m.Role, &m.FirstName, &m.LastName, &m.Phone, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, apperr.NotFound("membre introuvable")
	}
	return m, err
}

func (r *Repository) CreateInvitation(ctx context.Context, teamID uuid.UUID, email, role, tokenHash string, expiresAt time.Time, createdBy uuid.UUID) (Invitation, error) {
	var inv Invitation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invitations (team_id, email, role, token_hash, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, team_id, email, role, token_hash, expires_at, created_by, created_at, accepted_at, accepted_by, revoked_at
	`, teamID, email, role, tokenHash, expiresAt, createdBy).Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.Email,
		&inv.Role,
		&inv.TokenHash,
		&inv.ExpiresAt,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.AcceptedAt,
		&inv.AcceptedBy,
		&inv.RevokedAt,
	)
	return inv, err
}

func (r *Repository) ListInvitations(ctx context.Context, teamID uuid.UUID) ([]Invitation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, email, role, token_hash, expires_at, created_by, created_at, accepted_at, accepted_by, revoked_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]Invitation, 0)
	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(
			&inv.ID,
			&inv.TeamID,
			&inv.Email,
			&inv.Role,
			&inv.TokenHash,
			&inv.ExpiresAt,
			&inv.CreatedBy,
			&inv.CreatedAt,
			&inv.AcceptedAt,
			&inv.AcceptedBy,
			&inv.RevokedAt,
		); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// GetPendingByTokenHash returns an invitation that can still be redeemed.
func (r *Repository) GetPendingByTokenHash(ctx context.Context, tokenHash string) (Invitation, error) {
	var inv Invitation
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_id, email, role, token_hash, expires_at, created_by, created_at, accepted_at, accepted_by, revoked_at
		FROM invitations
		WHERE token_hash = $1
		  AND accepted_at IS NULL
		  AND revoked_at IS NULL
		  AND expires_at > now()
	`, tokenHash).Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.Email,
		&inv.Role,
		&inv.TokenHash,
		&inv.ExpiresAt,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.AcceptedAt,
		&inv.AcceptedBy,
		&inv.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invitation{}, apperr.NotFound("invitation introuvable")
	}
	return inv, err
}

func (r *Repository) MarkAccepted(ctx context.Context, inviteID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invitations
		SET accepted_at = now(), accepted_by = $2
		WHERE id = $1 AND accepted_at IS NULL AND revoked_at IS NULL
	`, inviteID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("l'invitation a déjà été utilisée")
	}
	return nil
}

func (r *Repository) RevokeInvitation(ctx context.Context, teamID, inviteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invitations
		SET revoked_at = now()
		WHERE id = $1 AND team_id = $2 AND accepted_at IS NULL AND revoked_at IS NULL
	`, inviteID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invitation introuvable ou déjà utilisée")
	}
	return nil
}
