// Package dashboard exposes role-scoped activity summaries.
package dashboard

import (
	"github.com/aumugisha-umu/seido-sub017/internal/dashboard/handler"
	"github.com/aumugisha-umu/seido-sub017/internal/dashboard/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/dashboard/service"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboard module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the dashboard module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts the dashboard summary route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dashboard"))
}

var _ apphttp.Module = (*Module)(nil)
