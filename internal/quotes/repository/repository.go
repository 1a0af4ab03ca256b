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

// Quote is the database model for a devis header.
type Quote struct {
	ID              uuid.UUID  `db:"id"`
	TeamID          uuid.UUID  `db:"team_id"`
	InterventionID  uuid.UUID  `db:"intervention_id"`
	ProviderID      uuid.UUID  `db:"provider_id"`
	QuoteNumber     string     `db:"quote_number"`
	Status          string     `db:"status"`
	SubtotalCents   int64      `db:"subtotal_cents"`
	VatTotalCents   int64      `db:"vat_total_cents"`
	TotalCents      int64      `db:"total_cents"`
	ValidUntil      *time.Time `db:"valid_until"`
	Notes           *string    `db:"notes"`
	RejectionReason *string    `db:"rejection_reason"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// QuoteItem is the database model for a devis line item.
type QuoteItem struct {
	ID             uuid.UUID `db:"id"`
	QuoteID        uuid.UUID `db:"quote_id"`
	TeamID         uuid.UUID `db:"team_id"`
	Description    string    `db:"description"`
	Quantity       float64   `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	TaxRateBps     int       `db:"tax_rate"`
	LineTotalCents int64     `db:"line_total_cents"`
	SortOrder      int       `db:"sort_order"`
	CreatedAt      time.Time `db:"created_at"`
}

const quoteNotFoundMsg = "devis introuvable"

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextQuoteNumber atomically generates the next devis number for a team.
func (r *Repository) NextQuoteNumber(ctx context.Context, teamID uuid.UUID) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quote_counters (team_id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (team_id) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, teamID).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}

	year := time.Now().Year()
	return fmt.Sprintf("DEV-%d-%04d", year, nextNum), nil
}

// CreateWithItems inserts a devis and its line items in a single transaction.
func (r *Repository) CreateWithItems(ctx context.Context, quote *Quote, items []QuoteItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quoteQuery := `
		INSERT INTO quotes (
			id, team_id, intervention_id, provider_id, quote_number, status,
			subtotal_cents, vat_total_cents, total_cents,
			valid_until, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, quoteQuery,
		quote.ID, quote.TeamID, quote.InterventionID, quote.ProviderID, quote.QuoteNumber, quote.Status,
		quote.SubtotalCents, quote.VatTotalCents, quote.TotalCents,
		quote.ValidUntil, quote.Notes, quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	itemQuery := `
		INSERT INTO quote_items (
			id, quote_id, team_id, description, quantity,
			unit_price_cents, tax_rate, line_total_cents, sort_order, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, item := range items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID, item.QuoteID, item.TeamID, item.Description, item.Quantity,
			item.UnitPriceCents, item.TaxRateBps, item.LineTotalCents, item.SortOrder, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quote item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID fetches a devis header scoped to a team.
func (r *Repository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*Quote, error) {
	query := `
		SELECT id, team_id, intervention_id, provider_id, quote_number, status,
			subtotal_cents, vat_total_cents, total_cents,
			valid_until, notes, rejection_reason, created_at, updated_at
		FROM quotes
		WHERE id = $1 AND team_id = $2`

	var q Quote
	err := r.pool.QueryRow(ctx, query, id, teamID).Scan(
		&q.ID, &q.TeamID, &q.InterventionID, &q.ProviderID, &q.QuoteNumber, &q.Status,
		&q.SubtotalCents, &q.VatTotalCents, &q.TotalCents,
		&q.ValidUntil, &q.Notes, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// ListByIntervention returns the devis attached to an intervention.
func (r *Repository) ListByIntervention(ctx context.Context, teamID, interventionID uuid.UUID) ([]Quote, error) {
	query := `
		SELECT id, team_id, intervention_id, provider_id, quote_number, status,
			subtotal_cents, vat_total_cents, total_cents,
			valid_until, notes, rejection_reason, created_at, updated_at
		FROM quotes
		WHERE team_id = $1 AND intervention_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teamID, interventionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(
			&q.ID, &q.TeamID, &q.InterventionID, &q.ProviderID, &q.QuoteNumber, &q.Status,
			&q.SubtotalCents, &q.VatTotalCents, &q.TotalCents,
			&q.ValidUntil, &q.Notes, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// GetItems returns the line items of a devis in display order.
func (r *Repository) GetItems(ctx context.Context, teamID, quoteID uuid.UUID) ([]QuoteItem, error) {
	query := `
		SELECT id, quote_id, team_id, description, quantity,
			unit_price_cents, tax_rate, line_total_cents, sort_order, created_at
		FROM quote_items
		WHERE team_id = $1 AND quote_id = $2
		ORDER BY sort_order`

	rows, err := r.pool.Query(ctx, query, teamID, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(
			&it.ID, &it.QuoteID, &it.TeamID, &it.Description, &it.Quantity,
			&it.UnitPriceCents, &it.TaxRateBps, &it.LineTotalCents, &it.SortOrder, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Accept marks a pending devis accepted and auto-rejects its pending
// siblings on the same intervention, in one transaction. Zero rows on the
// accept means the devis was no longer pending.
func (r *Repository) Accept(ctx context.Context, teamID, id, interventionID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	acceptQuery := `
		UPDATE quotes
		SET status = 'acceptee', updated_at = $1
		WHERE id = $2 AND team_id = $3 AND status = 'en_attente'`

	tag, err := tx.Exec(ctx, acceptQuery, now, id, teamID)
	if err != nil {
		return fmt.Errorf("failed to accept quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("le devis n'est plus en attente")
	}

	rejectQuery := `
		UPDATE quotes
		SET status = 'rejetee', rejection_reason = 'Un autre devis a été accepté', updated_at = $1
		WHERE team_id = $2 AND intervention_id = $3 AND id <> $4 AND status = 'en_attente'`

	if _, err := tx.Exec(ctx, rejectQuery, now, teamID, interventionID, id); err != nil {
		return fmt.Errorf("failed to reject sibling quotes: %w", err)
	}

	return tx.Commit(ctx)
}

// Reject marks a pending devis rejected with a reason.
func (r *Repository) Reject(ctx context.Context, teamID, id uuid.UUID, reason string) error {
	query := `
		UPDATE quotes
		SET status = 'rejetee', rejection_reason = $1, updated_at = $2
		WHERE id = $3 AND team_id = $4 AND status = 'en_attente'`

	tag, err := r.pool.Exec(ctx, query, reason, time.Now(), id, teamID)
	if err != nil {
		return fmt.Errorf("failed to reject quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("le devis n'est plus en attente")
	}
	return nil
}

// HasAcceptedQuote reports whether an intervention has an accepted devis.
func (r *Repository) HasAcceptedQuote(ctx context.Context, teamID, interventionID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM quotes
		WHERE team_id = $1 AND intervention_id = $2 AND status = 'acceptee')`

	if err := r.pool.QueryRow(ctx, query, teamID, interventionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check accepted quote: %w", err)
	}
	return exists, nil
}
