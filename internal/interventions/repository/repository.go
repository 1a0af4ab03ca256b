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

// Intervention is the database model for an intervention.
type Intervention struct {
	ID                 uuid.UUID  `db:"id"`
	TeamID             uuid.UUID  `db:"team_id"`
	Reference          string     `db:"reference"`
	Title              string     `db:"title"`
	Description        string     `db:"description"`
	Urgency            string     `db:"urgency"`
	Status             string     `db:"status"`
	LotID              *uuid.UUID `db:"lot_id"`
	BuildingID         *uuid.UUID `db:"building_id"`
	RequesterID        uuid.UUID  `db:"requester_id"`
	RequesterRole      string     `db:"requester_role"`
	AssignedProviderID *uuid.UUID `db:"assigned_provider_id"`
	CompletionNote     *string    `db:"completion_note"`
	Satisfaction       *int       `db:"satisfaction"`
	StatusReason       *string    `db:"status_reason"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// ListParams contains filters for listing interventions.
type ListParams struct {
	TeamID      uuid.UUID
	Status      *string
	Urgency     *string
	LotID       *uuid.UUID
	RequesterID *uuid.UUID
	ProviderID  *uuid.UUID
	LotIDs      []uuid.UUID
	Search      string
	Page        int
	PageSize    int
}

// ListResult contains the paginated result of listing interventions.
type ListResult struct {
	Items      []Intervention
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// StatusUpdate carries the fields a transition may set alongside the status.
type StatusUpdate struct {
	From           string
	To             string
	CompletionNote *string
	Satisfaction   *int
	StatusReason   *string
}

const interventionNotFoundMsg = "intervention introuvable"

// Repository provides database operations for interventions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new interventions repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextReference atomically generates the next intervention reference for a team.
func (r *Repository) NextReference(ctx context.Context, teamID uuid.UUID) (string, error) {
	var nextNum int
	query := `
		INSERT INTO intervention_counters (team_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (team_id) DO UPDATE SET last_number = intervention_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, teamID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate intervention reference: %w", err)
	}

	year := time.Now().Year()
	return fmt.Sprintf("INT-%d-%04d", year, nextNum), nil
}

// Create inserts a new intervention.
func (r *Repository) Create(ctx context.Context, iv *Intervention) error {
	query := `
		INSERT INTO interventions (
			id, team_id, reference, title, description, urgency, status,
			lot_id, building_id, requester_id, requester_role,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		iv.ID, iv.TeamID, iv.Reference, iv.Title, iv.Description, iv.Urgency, iv.Status,
		iv.LotID, iv.BuildingID, iv.RequesterID, iv.RequesterRole,
		iv.CreatedAt, iv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create intervention: %w", err)
	}
	return nil
}

// GetByID fetches an intervention scoped to a team.
func (r *Repository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*Intervention, error) {
	query := `
		SELECT id, team_id, reference, title, description, urgency, status,
			lot_id, building_id, requester_id, requester_role, assigned_provider_id,
			completion_note, satisfaction, status_reason, created_at, updated_at
		FROM interventions
		WHERE id = $1 AND team_id = $2`

	var iv Intervention
	err := r.pool.QueryRow(ctx, query, id, teamID).Scan(
		&iv.ID, &iv.TeamID, &iv.Reference, &iv.Title, &iv.Description, &iv.Urgency, &iv.Status,
		&iv.LotID, &iv.BuildingID, &iv.RequesterID, &iv.RequesterRole, &iv.AssignedProviderID,
		&iv.CompletionNote, &iv.Satisfaction, &iv.StatusReason, &iv.CreatedAt, &iv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(interventionNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get intervention: %w", err)
	}
	return &iv, nil
}

// List returns a paginated, filtered list of interventions for a team.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE team_id = $1"
	args := []any{params.TeamID}
	next := 2

	addFilter := func(clause string, value any) {
		where += fmt.Sprintf(" AND %s $%d", clause, next)
		args = append(args, value)
		next++
	}

	if params.Status != nil {
		addFilter("status =", *params.Status)
	}
	if params.Urgency != nil {
		addFilter("urgency =", *params.Urgency)
	}
	if params.LotID != nil {
		addFilter("lot_id =", *params.LotID)
	}
	if params.RequesterID != nil {
		addFilter("requester_id =", *params.RequesterID)
	}
	if params.ProviderID != nil {
		addFilter("assigned_provider_id =", *params.ProviderID)
	}
	if len(params.LotIDs) > 0 {
		where += fmt.Sprintf(" AND lot_id = ANY($%d)", next)
		args = append(args, params.LotIDs)
		next++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR reference ILIKE $%d)", next, next, next)
		args = append(args, "%"+params.Search+"%")
		next++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM interventions " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count interventions: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, team_id, reference, title, description, urgency, status,
			lot_id, building_id, requester_id, requester_role, assigned_provider_id,
			completion_note, satisfaction, status_reason, created_at, updated_at
		FROM interventions %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, next, next+1)
	args = append(args, pageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}
	defer rows.Close()

	var items []Intervention
	for rows.Next() {
		var iv Intervention
		if err := rows.Scan(
			&iv.ID, &iv.TeamID, &iv.Reference, &iv.Title, &iv.Description, &iv.Urgency, &iv.Status,
			&iv.LotID, &iv.BuildingID, &iv.RequesterID, &iv.RequesterRole, &iv.AssignedProviderID,
			&iv.CompletionNote, &iv.Satisfaction, &iv.StatusReason, &iv.CreatedAt, &iv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}
		items = append(items, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interventions: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &ListResult{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}, nil
}

// UpdateStatus applies a transition with a compare-and-swap on the current
// status. Zero rows affected means the intervention moved concurrently and
// the caller must re-read and retry.
func (r *Repository) UpdateStatus(ctx context.Context, teamID, id uuid.UUID, upd StatusUpdate) error {
	query := `
		UPDATE interventions
		SET status = $1,
			completion_note = COALESCE($2, completion_note),
			satisfaction = COALESCE($3, satisfaction),
			status_reason = $4,
			updated_at = $5
		WHERE id = $6 AND team_id = $7 AND status = $8`

	tag, err := r.pool.Exec(ctx, query,
		upd.To, upd.CompletionNote, upd.Satisfaction, upd.StatusReason,
		time.Now(), id, teamID, upd.From,
	)
	if err != nil {
		return fmt.Errorf("failed to update intervention status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("le statut de l'intervention a changé, veuillez réessayer")
	}
	return nil
}

// UpdateDetails edits the mutable metadata of an intervention.
func (r *Repository) UpdateDetails(ctx context.Context, teamID, id uuid.UUID, title, description, urgency *string) error {
	query := `
		UPDATE interventions
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			urgency = COALESCE($3, urgency),
			updated_at = $4
		WHERE id = $5 AND team_id = $6`

	tag, err := r.pool.Exec(ctx, query, title, description, urgency, time.Now(), id, teamID)
	if err != nil {
		return fmt.Errorf("failed to update intervention: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(interventionNotFoundMsg)
	}
	return nil
}

// AssignProvider records the prestataire in charge of the intervention.
func (r *Repository) AssignProvider(ctx context.Context, teamID, id, providerID uuid.UUID) error {
	query := `
		UPDATE interventions
		SET assigned_provider_id = $1, updated_at = $2
		WHERE id = $3 AND team_id = $4`

	tag, err := r.pool.Exec(ctx, query, providerID, time.Now(), id, teamID)
	if err != nil {
		return fmt.Errorf("failed to assign provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(interventionNotFoundMsg)
	}
	return nil
}

// CountByStatus returns the number of interventions per status for a team.
func (r *Repository) CountByStatus(ctx context.Context, teamID uuid.UUID) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM interventions WHERE team_id = $1 GROUP BY status`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count interventions by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
