// Package service implements account lifecycle and token issuance.
package service

import (
	"context"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/auth/password"
	"github.com/aumugisha-umu/seido-sub017/internal/auth/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/auth/token"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	phonekit "github.com/aumugisha-umu/seido-sub017/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType = "access"

	// RoleGestionnaire is the only role that can self-register. All other
	// roles enter the platform through a team invitation.
	RoleGestionnaire = "gestionnaire"
)

// Invitation is the invite data the auth service needs to redeem it.
type Invitation struct {
	ID     uuid.UUID
	TeamID uuid.UUID
	Email  string
	Role   string
}

// InviteStore gives access to pending team invitations. Implemented by an
// adapter over the identity module.
type InviteStore interface {
	GetPendingByTokenHash(ctx context.Context, tokenHash string) (Invitation, error)
	MarkAccepted(ctx context.Context, inviteID, userID uuid.UUID) error
}

// Service implements authentication use cases.
type Service struct {
	repo     *repository.Repository
	cfg      config.AuthServiceConfig
	log      *logger.Logger
	eventBus events.Bus
	invites  InviteStore
}

// New creates a new auth service.
func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// SetEventBus injects the event bus after construction.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetInviteStore injects the invitation port after construction.
func (s *Service) SetInviteStore(store InviteStore) {
	s.invites = store
}

// SignUpParams carries the fields needed to register a gestionnaire and
// found their agency.
type SignUpParams struct {
	TeamName  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignUp registers a new gestionnaire, creating their team in the same
// transaction. A verification email is dispatched through the event bus.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) error {
	hash, err := password.Hash(params.Password)
	if err != nil {
		return err
	}

	user, err := s.repo.CreateUserWithTeam(ctx, params.TeamName, params.Email, hash, RoleGestionnaire, params.FirstName, params.LastName)
	if err != nil {
		s.log.AuthEvent("sign_up", params.Email, false, err.Error())
		return err
	}

	verifyToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.GetVerifyTokenTTL())
	if err := s.repo.CreateUserToken(ctx, user.ID, token.HashSHA256(verifyToken), repository.TokenTypeEmailVerify, expiresAt); err != nil {
		return err
	}

	s.log.AuthEvent("sign_up", user.Email, true, "")
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.UserSignedUp{
			BaseEvent:   events.NewBaseEvent(),
			UserID:      user.ID,
			TeamID:      user.TeamID,
			Email:       user.Email,
			Role:        user.Role,
			VerifyToken: verifyToken,
		})
	}
	return nil
}

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignIn checks credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return TokenPair{}, apperr.Unauthorized("identifiants invalides")
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "bad password")
		return TokenPair{}, apperr.Unauthorized("identifiants invalides")
	}

	if !user.EmailVerified {
		s.log.AuthEvent("sign_in", email, false, "email not verified")
		return TokenPair{}, apperr.Forbidden("veuillez vérifier votre adresse email avant de vous connecter")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}
	s.log.AuthEvent("sign_in", email, true, "")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A reused token yields an error, never a session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("session invalide")
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return TokenPair{}, apperr.Unauthorized("session expirée")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("session invalide")
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return TokenPair{}, err
	}
	return s.issueTokens(ctx, user)
}

// SignOut revokes the presented refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// ForgotPassword creates a reset token and publishes the reset event.
// Unknown emails are silently accepted so the endpoint does not reveal
// which addresses hold accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil
	}

	resetToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.GetResetTokenTTL())
	if err := s.repo.CreateUserToken(ctx, user.ID, token.HashSHA256(resetToken), repository.TokenTypePasswordReset, expiresAt); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.PasswordResetRequested{
			BaseEvent:  events.NewBaseEvent(),
			UserID:     user.ID,
			Email:      user.Email,
			ResetToken: resetToken,
		})
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new password and
// revokes every open session of the user.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash := token.HashSHA256(rawToken)
	userID, expiresAt, err := s.repo.GetUserToken(ctx, hash, repository.TokenTypePasswordReset)
	if err != nil {
		return apperr.Unauthorized("jeton de réinitialisation invalide")
	}

	if time.Now().After(expiresAt) {
		return apperr.Gone("jeton de réinitialisation expiré")
	}

	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	_ = s.repo.UseUserToken(ctx, hash, repository.TokenTypePasswordReset)
	_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
	s.log.AuthEvent("password_reset", userID.String(), true, "")
	return nil
}

// VerifyEmail consumes a verification token and marks the email verified.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	hash := token.HashSHA256(rawToken)
	userID, expiresAt, err := s.repo.GetUserToken(ctx, hash, repository.TokenTypeEmailVerify)
	if err != nil {
		return apperr.Unauthorized("jeton de vérification invalide")
	}

	if time.Now().After(expiresAt) {
		return apperr.Gone("jeton de vérification expiré")
	}

	if err := s.repo.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}

	_ = s.repo.UseUserToken(ctx, hash, repository.TokenTypeEmailVerify)
	return nil
}

// AcceptInviteParams carries the fields needed to redeem an invitation.
type AcceptInviteParams struct {
	Token     string
	Password  string
	FirstName string
	LastName  string
}

// AcceptInvite redeems a team invitation: the account is created with the
// role and team the invite carries, and a session is opened right away.
// The email needs no separate verification since the invite reached it.
func (s *Service) AcceptInvite(ctx context.Context, params AcceptInviteParams) (TokenPair, error) {
	if s.invites == nil {
		return TokenPair{}, apperr.Internal("invitation store not configured")
	}

	invite, err := s.invites.GetPendingByTokenHash(ctx, token.HashSHA256(params.Token))
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invitation invalide ou expirée")
	}

	hash, err := password.Hash(params.Password)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.repo.CreateUser(ctx, invite.TeamID, invite.Email, hash, invite.Role, params.FirstName, params.LastName)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.invites.MarkAccepted(ctx, invite.ID, user.ID); err != nil {
		return TokenPair{}, err
	}

	s.log.AuthEvent("invite_accepted", user.Email, true, "")
	return s.issueTokens(ctx, user)
}

// Profile is the caller's own account view.
type Profile struct {
	ID            uuid.UUID
	TeamID        uuid.UUID
	Email         string
	Role          string
	FirstName     string
	LastName      string
	Phone         *string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GetMe returns the caller's profile.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(user), nil
}

// UpdateMe updates the caller's profile fields.
func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, firstName, lastName string, phone *string) (Profile, error) {
	if phone != nil {
		normalized := phonekit.NormalizeE164(*phone)
		phone = &normalized
	}
	user, err := s.repo.UpdateProfile(ctx, userID, firstName, lastName, phone)
	if err != nil {
		return Profile{}, err
	}
	return toProfile(user), nil
}

// ChangePassword verifies the current password before storing a new one.
// All other sessions of the user are revoked.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := password.Compare(user.PasswordHash, currentPassword); err != nil {
		return apperr.Unauthorized("mot de passe actuel incorrect")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (TokenPair, error) {
	accessToken, err := s.signJWT(user, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return TokenPair{}, err
	}

	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.HashSHA256(refreshToken), expiresAt); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signJWT(user repository.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID.String(),
		"role":    user.Role,
		"team_id": user.TeamID.String(),
		"type":    accessTokenType,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(user repository.User) Profile {
	return Profile{
		ID:            user.ID,
		TeamID:        user.TeamID,
		Email:         user.Email,
		Role:          user.Role,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
