// Package handler exposes the planning module over HTTP.
package handler

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/internal/planning/service"
	"github.com/aumugisha-umu/seido-sub017/internal/planning/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for planning.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new planning handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the planning routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/slots", h.Propose)
	rg.GET("/intervention/:interventionId/slots", h.ListByIntervention)
	rg.POST("/slots/:id/respond", h.Respond)
	rg.POST("/slots/:id/select", h.Select)
}

func (h *Handler) Propose(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ProposeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Propose(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListByIntervention(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	interventionID, err := uuid.Parse(c.Param("interventionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid intervention id")
		return
	}

	result, err := h.svc.ListByIntervention(c.Request.Context(), identity.TeamID(), interventionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) Respond(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.RespondSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Respond(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Select(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.svc.Select(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid slot id")
		return uuid.Nil, false
	}
	return id, true
}
