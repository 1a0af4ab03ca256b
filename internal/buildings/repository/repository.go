// Package repository provides PostgreSQL persistence for buildings and lots.
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

// Repository persists buildings and lots.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new buildings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Building is an immeuble managed by the team.
type Building struct {
	ID           uuid.UUID
	TeamID       uuid.UUID
	Name         string
	AddressLine1 string
	AddressLine2 *string
	PostalCode   string
	City         string
	Country      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Lot is a rentable unit inside a building.
type Lot struct {
	ID         uuid.UUID
	TeamID     uuid.UUID
	BuildingID uuid.UUID
	Reference  string
	Floor      *int
	SurfaceM2  *float64
	RoomCount  *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LotOccupancy is a lot together with its current occupation state.
type LotOccupancy struct {
	Lot
	Occupied bool
}

const buildingColumns = `id, team_id, name, address_line1, address_line2, postal_code, city, country, created_at, updated_at`

func scanBuilding(row pgx.Row) (Building, error) {
	var b Building
	err := row.Scan(&b.ID, &b.TeamID, &b.Name, &b.AddressLine1, &b.AddressLine2, &b.PostalCode, &b.City, &b.Country, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *Repository) CreateBuilding(ctx context.Context, b Building) (Building, error) {
	return scanBuilding(r.pool.QueryRow(ctx, `
		INSERT INTO buildings (team_id, name, address_line1, address_line2, postal_code, city, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+buildingColumns+`
	`, b.TeamID, b.Name, b.AddressLine1, b.AddressLine2, b.PostalCode, b.City, b.Country))
}

func (r *Repository) GetBuilding(ctx context.Context, teamID, buildingID uuid.UUID) (Building, error) {
	b, err := scanBuilding(r.pool.QueryRow(ctx, `
		SELECT `+buildingColumns+` FROM buildings
		WHERE team_id = $1 AND id = $2
	`, teamID, buildingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Building{}, apperr.NotFound("immeuble introuvable")
	}
	return b, err
}

// ListBuildings returns a page of buildings, optionally filtered by a
// city or name search.
func (r *Repository) ListBuildings(ctx context.Context, teamID uuid.UUID, search string, page, pageSize int) ([]Building, int, error) {
	where := `WHERE team_id = $1`
	args := []interface{}{teamID}
	if search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR city ILIKE $%d)`, len(args)+1, len(args)+1)
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buildings `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + buildingColumns + ` FROM buildings ` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	buildings := make([]Building, 0)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, 0, err
		}
		buildings = append(buildings, b)
	}
	return buildings, total, rows.Err()
}

func (r *Repository) UpdateBuilding(ctx context.Context, b Building) (Building, error) {
	updated, err := scanBuilding(r.pool.QueryRow(ctx, `
		UPDATE buildings
		SET name = $3, address_line1 = $4, address_line2 = $5, postal_code = $6, city = $7, country = $8, updated_at = now()
		WHERE team_id = $1 AND id = $2
		RETURNING `+buildingColumns+`
	`, b.TeamID, b.ID, b.Name, b.AddressLine1, b.AddressLine2, b.PostalCode, b.City, b.Country))
	if errors.Is(err, pgx.ErrNoRows) {
		return Building{}, apperr.NotFound("immeuble introuvable")
	}
	return updated, err
}

func (r *Repository) DeleteBuilding(ctx context.Context, teamID, buildingID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM buildings WHERE team_id = $1 AND id = $2
	`, teamID, buildingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("immeuble introuvable")
	}
	return nil
}

const lotColumns = `id, team_id, building_id, reference, floor, surface_m2, room_count, created_at, updated_at`

func scanLot(row pgx.Row) (Lot, error) {
	var l Lot
	err := row.Scan(&l.ID, &l.TeamID, &l.BuildingID, &l.Reference, &l.Floor, &l.SurfaceM2, &l.RoomCount, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repository) CreateLot(ctx context.Context, l Lot) (Lot, error) {
	return scanLot(r.pool.QueryRow(ctx, `
		INSERT INTO lots (team_id, building_id, reference, floor, surface_m2, room_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+lotColumns+`
	`, l.TeamID, l.BuildingID, l.Reference, l.Floor, l.SurfaceM2, l.RoomCount))
}

func (r *Repository) GetLot(ctx context.Context, teamID, lotID uuid.UUID) (Lot, error) {
	l, err := scanLot(r.pool.QueryRow(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE team_id = $1 AND id = $2
	`, teamID, lotID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lot{}, apperr.NotFound("lot introuvable")
	}
	return l, err
}

// ListLots returns the lots of a building with their occupation state,
// derived from leases active today.
func (r *Repository) ListLots(ctx context.Context, teamID, buildingID uuid.UUID) ([]LotOccupancy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.team_id, l.building_id, l.reference, l.floor, l.surface_m2, l.room_count, l.created_at, l.updated_at,
			EXISTS (
				SELECT 1 FROM leases le
				WHERE le.lot_id = l.id
				  AND le.start_date <= CURRENT_DATE
				  AND (le.end_date IS NULL OR le.end_date >= CURRENT_DATE)
			) AS occupied
		FROM lots l
		WHERE l.team_id = $1 AND l.building_id = $2
		ORDER BY l.reference
	`, teamID, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := make([]LotOccupancy, 0)
	for rows.Next() {
		var lo LotOccupancy
		if err := rows.Scan(&lo.ID, &lo.TeamID, &lo.BuildingID, &lo.Reference, &lo.Floor, &lo.SurfaceM2, &lo.RoomCount, &lo.CreatedAt, &lo.UpdatedAt, &lo.Occupied); err != nil {
			return nil, err
		}
		lots = append(lots, lo)
	}
	return lots, rows.Err()
}

func (r *Repository) UpdateLot(ctx context.Context, l Lot) (Lot, error) {
	updated, err := scanLot(r.pool.QueryRow(ctx, `
		UPDATE lots
		SET reference = $3, floor = $4, surface_m2 = $5, room_count = $6, updated_at = now()
		WHERE team_id = $1 AND id = $2
		RETURNING `+lotColumns+`
	`, l.TeamID, l.ID, l.Reference, l.Floor, l.SurfaceM2, l.RoomCount))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lot{}, apperr.NotFound("lot introuvable")
	}
	return updated, err
}

func (r *Repository) DeleteLot(ctx context.Context, teamID, lotID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM lots WHERE team_id = $1 AND id = $2
	`, teamID, lotID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lot introuvable")
	}
	return nil
}

// CountBuildings returns the number of buildings in the team.
func (r *Repository) CountBuildings(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buildings WHERE team_id = $1`, teamID).Scan(&n)
	return n, err
}

// CountLots returns the number of lots in the team.
func (r *Repository) CountLots(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lots WHERE team_id = $1`, teamID).Scan(&n)
	return n, err
}

// ListLotIDsByBuilding returns the ids of every lot in a building.
func (r *Repository) ListLotIDsByBuilding(ctx context.Context, teamID, buildingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM lots WHERE team_id = $1 AND building_id = $2
	`, teamID, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
