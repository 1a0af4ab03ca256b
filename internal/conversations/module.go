// Package conversations provides the per-intervention messaging module.
package conversations

import (
	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/service"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/events"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the conversations domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new conversations module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, bucket, replyDomain string, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, replyDomain, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "conversations"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	conversations := ctx.Protected.Group("/conversations")
	m.handler.RegisterRoutes(conversations)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
