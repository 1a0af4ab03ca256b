package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/auth/token"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const accessLinkTTL = 30 * 24 * time.Hour

// CreateAccessLink mints a magic link so a participant can open the
// intervention without signing in. Only gestionnaires may mint links.
func (s *Service) CreateAccessLink(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, id uuid.UUID, baseURL string) (*transport.AccessLinkResponse, error) {
	if domain.Role(actorRole) != domain.RoleGestionnaire {
		return nil, apperr.Forbidden("seul un gestionnaire peut générer un lien d'accès")
	}

	iv, err := s.repo.GetByID(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	raw, err := token.GenerateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	now := time.Now()
	link := repository.AccessLink{
		ID:             uuid.New(),
		InterventionID: iv.ID,
		TeamID:         teamID,
		TokenHash:      token.HashSHA256(raw),
		ExpiresAt:      now.Add(accessLinkTTL),
		CreatedAt:      now,
	}
	if err := s.repo.CreateAccessLink(ctx, &link); err != nil {
		return nil, err
	}

	return &transport.AccessLinkResponse{
		URL:       fmt.Sprintf("%s/i/%s", baseURL, raw),
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// GetByAccessToken resolves a magic link token to its intervention, for the
// unauthenticated public view.
func (s *Service) GetByAccessToken(ctx context.Context, rawToken string) (*transport.InterventionResponse, error) {
	if rawToken == "" {
		return nil, apperr.NotFound("lien invalide ou expiré")
	}
	iv, err := s.repo.GetByAccessToken(ctx, token.HashSHA256(rawToken))
	if err != nil {
		return nil, err
	}
	// the public view is read-only, so no actions are offered
	return s.toResponse(ctx, iv, domain.RoleProprietaire), nil
}

// AccessLinkQRCode renders the magic link URL as a PNG QR code, suitable for
// printing on a notice posted in the building.
func (s *Service) AccessLinkQRCode(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
