package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// TimeSlot is the database model for a proposed intervention time slot.
type TimeSlot struct {
	ID             uuid.UUID `db:"id"`
	TeamID         uuid.UUID `db:"team_id"`
	InterventionID uuid.UUID `db:"intervention_id"`
	ProposedByID   uuid.UUID `db:"proposed_by_id"`
	ProposedByRole string    `db:"proposed_by_role"`
	StartsAt       time.Time `db:"starts_at"`
	EndsAt         time.Time `db:"ends_at"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

// SlotResponse is the database model for a participant answer to a slot.
type SlotResponse struct {
	ID        uuid.UUID `db:"id"`
	SlotID    uuid.UUID `db:"slot_id"`
	TeamID    uuid.UUID `db:"team_id"`
	UserID    uuid.UUID `db:"user_id"`
	Role      string    `db:"role"`
	Response  string    `db:"response"`
	CreatedAt time.Time `db:"created_at"`
}

const slotNotFoundMsg = "créneau introuvable"

// Repository provides database operations for planning.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new planning repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSlot inserts a proposed time slot.
func (r *Repository) CreateSlot(ctx context.Context, slot *TimeSlot) error {
	query := `
		INSERT INTO time_slots (
			id, team_id, intervention_id, proposed_by_id, proposed_by_role,
			starts_at, ends_at, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		slot.ID, slot.TeamID, slot.InterventionID, slot.ProposedByID, slot.ProposedByRole,
		slot.StartsAt, slot.EndsAt, slot.Status, slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}
	return nil
}

// GetSlot fetches a slot scoped to a team.
func (r *Repository) GetSlot(ctx context.Context, teamID, id uuid.UUID) (*TimeSlot, error) {
	query := `
		SELECT id, team_id, intervention_id, proposed_by_id, proposed_by_role,
			starts_at, ends_at, status, created_at
		FROM time_slots
		WHERE id = $1 AND team_id = $2`

	var slot TimeSlot
	err := r.pool.QueryRow(ctx, query, id, teamID).Scan(
		&slot.ID, &slot.TeamID, &slot.InterventionID, &slot.ProposedByID, &slot.ProposedByRole,
		&slot.StartsAt, &slot.EndsAt, &slot.Status, &slot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(slotNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}
	return &slot, nil
}

// ListSlots returns the slots of an intervention, oldest first.
func (r *Repository) ListSlots(ctx context.Context, teamID, interventionID uuid.UUID) ([]TimeSlot, error) {
	query := `
		SELECT id, team_id, intervention_id, proposed_by_id, proposed_by_role,
			starts_at, ends_at, status, created_at
		FROM time_slots
		WHERE team_id = $1 AND intervention_id = $2
		ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, query, teamID, interventionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	defer rows.Close()

	var slots []TimeSlot
	for rows.Next() {
		var slot TimeSlot
		if err := rows.Scan(
			&slot.ID, &slot.TeamID, &slot.InterventionID, &slot.ProposedByID, &slot.ProposedByRole,
			&slot.StartsAt, &slot.EndsAt, &slot.Status, &slot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// UpsertResponse records a participant answer to a slot, replacing any
// earlier answer by the same user.
func (r *Repository) UpsertResponse(ctx context.Context, resp *SlotResponse) error {
	query := `
		INSERT INTO slot_responses (id, slot_id, team_id, user_id, role, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slot_id, user_id) DO UPDATE SET response = EXCLUDED.response, created_at = EXCLUDED.created_at`

	_, err := r.pool.Exec(ctx, query,
		resp.ID, resp.SlotID, resp.TeamID, resp.UserID, resp.Role, resp.Response, resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record slot response: %w", err)
	}
	return nil
}

// ListResponses returns the answers for a slot, oldest first.
func (r *Repository) ListResponses(ctx context.Context, teamID, slotID uuid.UUID) ([]SlotResponse, error) {
	query := `
		SELECT id, slot_id, team_id, user_id, role, response, created_at
		FROM slot_responses
		WHERE team_id = $1 AND slot_id = $2
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, teamID, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slot responses: %w", err)
	}
	defer rows.Close()

	var responses []SlotResponse
	for rows.Next() {
		var resp SlotResponse
		if err := rows.Scan(
			&resp.ID, &resp.SlotID, &resp.TeamID, &resp.UserID, &resp.Role, &resp.Response, &resp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan slot response: %w", err)
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// SelectSlot marks a slot selected and rejects the other proposed slots of
// the same intervention, in one transaction.
func (r *Repository) SelectSlot(ctx context.Context, teamID, id, interventionID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	selectQuery := `
		UPDATE time_slots
		SET status = 'selectionnee'
		WHERE id = $1 AND team_id = $2 AND status = 'proposee'`

	tag, err := tx.Exec(ctx, selectQuery, id, teamID)
	if err != nil {
		return fmt.Errorf("failed to select time slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("le créneau n'est plus disponible")
	}

	rejectQuery := `
		UPDATE time_slots
		SET status = 'rejetee'
		WHERE team_id = $1 AND intervention_id = $2 AND id <> $3 AND status = 'proposee'`

	if _, err := tx.Exec(ctx, rejectQuery, teamID, interventionID, id); err != nil {
		return fmt.Errorf("failed to reject sibling slots: %w", err)
	}

	return tx.Commit(ctx)
}

// GetSelectedSlot returns the selected slot of an intervention, if any.
func (r *Repository) GetSelectedSlot(ctx context.Context, teamID, interventionID uuid.UUID) (*TimeSlot, error) {
	query := `
		SELECT id, team_id, intervention_id, proposed_by_id, proposed_by_role,
			starts_at, ends_at, status, created_at
		FROM time_slots
		WHERE team_id = $1 AND intervention_id = $2 AND status = 'selectionnee'`

	var slot TimeSlot
	err := r.pool.QueryRow(ctx, query, teamID, interventionID).Scan(
		&slot.ID, &slot.TeamID, &slot.InterventionID, &slot.ProposedByID, &slot.ProposedByRole,
		&slot.StartsAt, &slot.EndsAt, &slot.Status, &slot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("aucun créneau sélectionné")
		}
		return nil, fmt.Errorf("failed to get selected slot: %w", err)
	}
	return &slot, nil
}
