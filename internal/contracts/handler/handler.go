// Package handler exposes the contracts module over HTTP.
package handler

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/internal/contracts/service"
	"github.com/aumugisha-umu/seido-sub017/internal/contracts/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for leases.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new contracts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the lease routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/expiring", h.ListExpiring)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lease, err := h.svc.Create(c.Request.Context(), identity.TeamID(), identity.Role(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lease)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var q transport.ListLeasesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	leases, err := h.svc.List(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leases": leases})
}

func (h *Handler) ListExpiring(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leases, err := h.svc.ListExpiringSoon(c.Request.Context(), identity.TeamID(), identity.Role())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leases": leases})
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	lease, err := h.svc.Get(c.Request.Context(), identity.TeamID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lease)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.UpdateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lease, err := h.svc.Update(c.Request.Context(), identity.TeamID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lease)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.TeamID(), identity.Role(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid lease id")
		return uuid.Nil, false
	}
	return id, true
}
