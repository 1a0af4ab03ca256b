// Package repository runs the aggregate queries behind the dashboard.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Scope narrows the intervention and quote counts to a single user. A nil
// field means no filter on that axis.
type Scope struct {
	TeamID      uuid.UUID
	RequesterID *uuid.UUID
	ProviderID  *uuid.UUID
	TenantID    *uuid.UUID
}

// Repository provides read-only aggregate queries for the dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new dashboard repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const terminalStatusList = `('cloturee_par_gestionnaire', 'annulee', 'rejetee')`

func (r *Repository) CountInterventionsByStatus(ctx context.Context, scope Scope) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM interventions WHERE team_id = $1`
	args := []any{scope.TeamID}
	query, args = applyInterventionScope(query, args, scope)
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *Repository) CountOpenByUrgency(ctx context.Context, scope Scope) (map[string]int, error) {
	query := `SELECT urgency, COUNT(*) FROM interventions
		WHERE team_id = $1 AND status NOT IN ` + terminalStatusList
	args := []any{scope.TeamID}
	query, args = applyInterventionScope(query, args, scope)
	query += ` GROUP BY urgency`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count open interventions by urgency: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var urgency string
		var n int
		if err := rows.Scan(&urgency, &n); err != nil {
			return nil, fmt.Errorf("failed to scan urgency count: %w", err)
		}
		counts[urgency] = n
	}
	return counts, rows.Err()
}

func applyInterventionScope(query string, args []any, scope Scope) (string, []any) {
	if scope.RequesterID != nil {
		args = append(args, *scope.RequesterID)
		query += fmt.Sprintf(" AND requester_id = $%d", len(args))
	}
	if scope.ProviderID != nil {
		args = append(args, *scope.ProviderID)
		query += fmt.Sprintf(" AND assigned_provider_id = $%d", len(args))
	}
	return query, args
}

func (r *Repository) CountBuildings(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM buildings WHERE team_id = $1`, teamID).Scan(&count)
	return count, err
}

func (r *Repository) CountLots(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lots WHERE team_id = $1`, teamID).Scan(&count)
	return count, err
}

func (r *Repository) CountActiveLeases(ctx context.Context, teamID uuid.UUID, tenantID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM leases
		WHERE team_id = $1
		AND start_date <= CURRENT_DATE
		AND (end_date IS NULL OR end_date >= CURRENT_DATE)`
	args := []any{teamID}
	if tenantID != nil {
		args = append(args, *tenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *Repository) CountExpiringLeases(ctx context.Context, teamID uuid.UUID, within time.Duration) (int, error) {
	deadline := time.Now().Add(within)
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leases
		WHERE team_id = $1
		AND end_date IS NOT NULL
		AND end_date >= CURRENT_DATE
		AND end_date <= $2
	`, teamID, deadline).Scan(&count)
	return count, err
}

func (r *Repository) CountPendingQuotes(ctx context.Context, teamID uuid.UUID, providerID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM quotes WHERE team_id = $1 AND status = 'en_attente'`
	args := []any{teamID}
	if providerID != nil {
		args = append(args, *providerID)
		query += fmt.Sprintf(" AND provider_id = $%d", len(args))
	}

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}
