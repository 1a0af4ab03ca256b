// Package identity provides the team and membership bounded context module.
package identity

import (
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/service"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates and initializes the identity module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// Service returns the identity service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the identity repository for adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// SetEventBus injects the event bus into the service.
func (m *Module) SetEventBus(bus events.Bus) {
	m.service.SetEventBus(bus)
}

// RegisterRoutes mounts identity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
