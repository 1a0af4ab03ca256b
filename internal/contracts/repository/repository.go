// Package repository provides PostgreSQL persistence for leases (baux).
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

// Repository persists leases.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new contracts repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lease links a locataire to a lot over a period. Money is in cents.
type Lease struct {
	ID           uuid.UUID
	TeamID       uuid.UUID
	LotID        uuid.UUID
	TenantID     uuid.UUID
	StartDate    time.Time
	EndDate      *time.Time
	RentCents    int64
	ChargesCents int64
	DepositCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const leaseColumns = `id, team_id, lot_id, tenant_id, start_date, end_date, rent_cents, charges_cents, deposit_cents, created_at, updated_at`

func scanLease(row pgx.Row) (Lease, error) {
	var l Lease
	err := row.Scan(&l.ID, &l.TeamID, &l.LotID, &l.TenantID, &l.StartDate, &l.EndDate, &l.RentCents, &l.ChargesCents, &l.DepositCents, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repository) Create(ctx context.Context, l Lease) (Lease, error) {
	return scanLease(r.pool.QueryRow(ctx, `
		INSERT INTO leases (team_id, lot_id, tenant_id, start_date, end_date, rent_cents, charges_cents, deposit_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leaseColumns+`
	`, l.TeamID, l.LotID, l.TenantID, l.StartDate, l.EndDate, l.RentCents, l.ChargesCents, l.DepositCents))
}

func (r *Repository) GetByID(ctx context.Context, teamID, leaseID uuid.UUID) (Lease, error) {
	l, err := scanLease(r.pool.QueryRow(ctx, `
		SELECT `+leaseColumns+` FROM leases
		WHERE team_id = $1 AND id = $2
	`, teamID, leaseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lease{}, apperr.NotFound("bail introuvable")
	}
	return l, err
}

// List returns the team's leases, optionally narrowed to a lot or tenant.
func (r *Repository) List(ctx context.Context, teamID uuid.UUID, lotID, tenantID *uuid.UUID) ([]Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases WHERE team_id = $1`
	args := []interface{}{teamID}
	if lotID != nil {
		args = append(args, *lotID)
		query += ` AND lot_id = $2`
	}
	if tenantID != nil {
		args = append(args, *tenantID)
		if lotID != nil {
			query += ` AND tenant_id = $3`
		} else {
			query += ` AND tenant_id = $2`
		}
	}
	query += ` ORDER BY start_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leases := make([]Lease, 0)
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

func (r *Repository) Update(ctx context.Context, l Lease) (Lease, error) {
	updated, err := scanLease(r.pool.QueryRow(ctx, `
		UPDATE leases
		SET start_date = $3, end_date = $4, rent_cents = $5, charges_cents = $6, deposit_cents = $7, updated_at = now()
		WHERE team_id = $1 AND id = $2
		RETURNING `+leaseColumns+`
	`, l.TeamID, l.ID, l.StartDate, l.EndDate, l.RentCents, l.ChargesCents, l.DepositCents))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lease{}, apperr.NotFound("bail introuvable")
	}
	return updated, err
}

func (r *Repository) Delete(ctx context.Context, teamID, leaseID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM leases WHERE team_id = $1 AND id = $2
	`, teamID, leaseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("bail introuvable")
	}
	return nil
}

// ListExpiringSoon returns leases whose end date falls within the window.
func (r *Repository) ListExpiringSoon(ctx context.Context, teamID uuid.UUID, within time.Duration) ([]Lease, error) {
	horizon := time.Now().Add(within)
	rows, err := r.pool.Query(ctx, `
		SELECT `+leaseColumns+` FROM leases
		WHERE team_id = $1
		  AND end_date IS NOT NULL
		  AND end_date >= CURRENT_DATE
		  AND end_date <= $2
		ORDER BY end_date
	`, teamID, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leases := make([]Lease, 0)
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

// HasActiveLease reports whether the user occupies the lot today.
func (r *Repository) HasActiveLease(ctx context.Context, teamID, tenantID, lotID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leases
			WHERE team_id = $1 AND tenant_id = $2 AND lot_id = $3
			  AND start_date <= CURRENT_DATE
			  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		)
	`, teamID, tenantID, lotID).Scan(&exists)
	return exists, err
}

// CountActive returns the number of leases active today.
func (r *Repository) CountActive(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leases
		WHERE team_id = $1
		  AND start_date <= CURRENT_DATE
		  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
	`, teamID).Scan(&n)
	return n, err
}
