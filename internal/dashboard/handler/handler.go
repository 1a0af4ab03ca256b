package handler

import (
	"github.com/aumugisha-umu/seido-sub017/internal/dashboard/service"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetSummary)
}

func (h *Handler) GetSummary(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, summary)
}
