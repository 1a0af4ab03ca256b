// Package buildings provides the patrimoine bounded context module.
package buildings

import (
	"github.com/aumugisha-umu/seido-sub017/internal/buildings/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/buildings/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/buildings/service"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the buildings bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates and initializes the buildings module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "buildings"
}

// Service returns the buildings service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the buildings repository for adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts building and lot routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/buildings"))
	m.handler.RegisterLotRoutes(ctx.Protected.Group("/lots"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
