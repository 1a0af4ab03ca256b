// Package repository provides PostgreSQL persistence for user accounts,
// credential tokens and refresh tokens.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TokenTypeEmailVerify   = "EMAIL_VERIFY"
	TokenTypePasswordReset = "PASSWORD_RESET"
)

// Repository persists auth data.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// User is a platform account. Every user belongs to exactly one team and
// carries exactly one role within it.
type User struct {
	ID            uuid.UUID
	TeamID        uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	FirstName     string
	LastName      string
	Phone         *string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const userColumns = `id, team_id, email, password_hash, role, first_name, last_name, phone, is_email_verified, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.TeamID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// CreateUserWithTeam creates a new team and its first user in one
// transaction. Used by sign-up, where a gestionnaire founds an agency.
func (r *Repository) CreateUserWithTeam(ctx context.Context, teamName, email, passwordHash, role, firstName, lastName string) (User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var teamID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name)
		VALUES ($1)
		RETURNING id
	`, teamName).Scan(&teamID)
	if err != nil {
		return User{}, err
	}

	user, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (team_id, email, password_hash, role, first_name, last_name, is_email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING `+userColumns+`
	`, teamID, email, passwordHash, role, firstName, lastName))
	if err != nil {
		return User{}, translateUniqueEmail(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateUser creates a user inside an existing team. Used when an
// invitation is redeemed; the email is considered verified because the
// invite was delivered to it.
func (r *Repository) CreateUser(ctx context.Context, teamID uuid.UUID, email, passwordHash, role, firstName, lastName string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (team_id, email, password_hash, role, first_name, last_name, is_email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING `+userColumns+`
	`, teamID, email, passwordHash, role, firstName, lastName))
	if err != nil {
		return User{}, translateUniqueEmail(err)
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("utilisateur introuvable")
	}
	return user, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("utilisateur introuvable")
	}
	return user, err
}

func (r *Repository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET is_email_verified = true, updated_at = now()
		WHERE id = $1
	`, userID)
	return err
}

func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, userID, passwordHash)
	return err
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string, phone *string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, firstName, lastName, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("utilisateur introuvable")
	}
	return user, err
}

func (r *Repository) CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tokens (user_id, token_hash, type, expires_at)
		VALUES ($1, $2, $3, $4)
	`, userID, tokenHash, tokenType, expiresAt)
	return err
}

func (r *Repository) GetUserToken(ctx context.Context, tokenHash, tokenType string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, expires_at FROM user_tokens
		WHERE token_hash = $1 AND type = $2 AND used_at IS NULL
	`, tokenHash, tokenType).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, time.Time{}, apperr.NotFound("jeton introuvable")
	}
	return userID, expiresAt, err
}

func (r *Repository) UseUserToken(ctx context.Context, tokenHash, tokenType string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_tokens SET used_at = now()
		WHERE token_hash = $1 AND type = $2 AND used_at IS NULL
	`, tokenHash, tokenType)
	return err
}

func (r *Repository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, expires_at FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, time.Time{}, apperr.NotFound("jeton introuvable")
	}
	return userID, expiresAt, err
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	return err
}

func (r *Repository) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	return err
}

// translateUniqueEmail maps the users_email_key violation to a domain error.
func translateUniqueEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("un compte existe déjà avec cette adresse email")
	}
	return err
}
