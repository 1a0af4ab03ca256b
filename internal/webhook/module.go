// Package webhook provides the inbound email webhook bounded context module.
// Deliveries are authenticated with svix-style HMAC signatures, never JWT.
package webhook

import (
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	verifier *Verifier
	log      *logger.Logger
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(pool *pgxpool.Pool, sink MessageSink, cfg config.WebhookConfig, replyDomain string, log *logger.Logger) (*Module, error) {
	verifier, err := NewVerifier(cfg.GetInboundEmailSigningSecret())
	if err != nil {
		return nil, err
	}

	repo := NewRepository(pool)
	svc := NewService(repo, sink, replyDomain, log)

	return &Module{
		handler:  NewHandler(svc),
		verifier: verifier,
		log:      log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Signature auth, no JWT
	group := ctx.V1.Group("/webhook")
	group.Use(SignatureMiddleware(m.verifier, m.log))
	group.POST("/inbound-email", m.handler.HandleInboundEmail)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
