// Package interventions provides the intervention lifecycle domain module.
package interventions

import (
	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/service"
	"github.com/aumugisha-umu/seido-sub017/platform/events"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the interventions domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates a new interventions module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, log *logger.Logger, eventBus *events.InMemoryBus, val *validator.Validator, appBaseURL string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val, appBaseURL)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "interventions"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetStorage injects the object storage service for documents.
func (m *Module) SetStorage(storageSvc storage.StorageService, bucket string) {
	m.service.SetStorage(storageSvc, bucket)
}

// Repository returns the repository for adapter construction.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	interventions := ctx.Protected.Group("/interventions")
	m.handler.RegisterRoutes(interventions)

	// Access-link routes skip the auth middleware on purpose.
	public := ctx.V1.Group("/public/interventions")
	m.handler.RegisterPublicRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
