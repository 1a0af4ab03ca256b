// Package planning provides the time slot planning domain module.
package planning

import (
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/service"
	"github.com/aumugisha-umu/seido-sub017/platform/events"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the planning domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new planning module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "planning"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	planning := ctx.Protected.Group("/planning")
	m.handler.RegisterRoutes(planning)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
