// Package handler exposes the buildings module over HTTP.
package handler

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/internal/buildings/service"
	"github.com/aumugisha-umu/seido-sub017/internal/buildings/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for buildings and lots.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new buildings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers building and lot routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateBuilding)
	rg.GET("", h.ListBuildings)
	rg.GET("/:id", h.GetBuilding)
	rg.PUT("/:id", h.UpdateBuilding)
	rg.DELETE("/:id", h.DeleteBuilding)
	rg.POST("/:id/lots", h.CreateLot)
	rg.GET("/:id/lots", h.ListLots)
}

// RegisterLotRoutes registers the lot-scoped routes.
func (h *Handler) RegisterLotRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetLot)
	rg.PUT("/:id", h.UpdateLot)
	rg.DELETE("/:id", h.DeleteLot)
}

func (h *Handler) CreateBuilding(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	building, err := h.svc.CreateBuilding(c.Request.Context(), identity.TeamID(), identity.Role(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, building)
}

func (h *Handler) ListBuildings(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var q transport.ListBuildingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ListBuildings(c.Request.Context(), identity.TeamID(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetBuilding(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	building, err := h.svc.GetBuilding(c.Request.Context(), identity.TeamID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, building)
}

func (h *Handler) UpdateBuilding(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.UpdateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	building, err := h.svc.UpdateBuilding(c.Request.Context(), identity.TeamID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, building)
}

func (h *Handler) DeleteBuilding(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteBuilding(c.Request.Context(), identity.TeamID(), identity.Role(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

func (h *Handler) CreateLot(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	buildingID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lot, err := h.svc.CreateLot(c.Request.Context(), identity.TeamID(), identity.Role(), buildingID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lot)
}

func (h *Handler) ListLots(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	buildingID, ok := parseIDParam(c)
	if !ok {
		return
	}

	lots, err := h.svc.ListLots(c.Request.Context(), identity.TeamID(), buildingID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"lots": lots})
}

func (h *Handler) GetLot(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	lotID, ok := parseIDParam(c)
	if !ok {
		return
	}

	lot, err := h.svc.GetLot(c.Request.Context(), identity.TeamID(), lotID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lot)
}

func (h *Handler) UpdateLot(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	lotID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lot, err := h.svc.UpdateLot(c.Request.Context(), identity.TeamID(), identity.Role(), lotID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lot)
}

func (h *Handler) DeleteLot(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	lotID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteLot(c.Request.Context(), identity.TeamID(), identity.Role(), lotID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deleted"})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
