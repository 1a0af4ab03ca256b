// Package auth provides the authentication bounded context module.
package auth

import (
	"github.com/aumugisha-umu/seido-sub017/internal/auth/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/auth/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/auth/service"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetEventBus injects the event bus into the service.
func (m *Module) SetEventBus(bus events.Bus) {
	m.service.SetEventBus(bus)
}

// SetInviteStore injects the invitation port into the service.
func (m *Module) SetInviteStore(store service.InviteStore) {
	m.service.SetInviteStore(store)
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	// Protected user profile routes
	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
