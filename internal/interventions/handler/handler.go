// Package handler exposes the interventions module over HTTP.
package handler

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/internal/interventions/service"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for interventions.
type Handler struct {
	svc     *service.Service
	val     *validator.Validator
	baseURL string
}

// New creates a new interventions handler.
func New(svc *service.Service, val *validator.Validator, baseURL string) *Handler {
	return &Handler{svc: svc, val: val, baseURL: baseURL}
}

// RegisterRoutes registers the authenticated intervention routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/transition", h.Transition)
	rg.POST("/:id/assign", h.Assign)
	rg.POST("/:id/access-link", h.CreateAccessLink)
	rg.POST("/:id/documents/presign", h.PresignDocument)
	rg.POST("/:id/documents", h.RegisterDocument)
	rg.GET("/:id/documents", h.ListDocuments)
}

// RegisterPublicRoutes registers the unauthenticated magic-link routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.GetByAccessToken)
	rg.GET("/:token/qr", h.AccessTokenQRCode)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var q transport.ListInterventionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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

	var req transport.UpdateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Transition(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Transition(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Assign(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	err := h.svc.AssignProvider(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"assigned": true})
}

func (h *Handler) CreateAccessLink(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.svc.CreateAccessLink(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, h.baseURL)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) GetByAccessToken(c *gin.Context) {
	result, err := h.svc.GetByAccessToken(c.Request.Context(), c.Param("token"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) AccessTokenQRCode(c *gin.Context) {
	raw := c.Param("token")
	if _, err := h.svc.GetByAccessToken(c.Request.Context(), raw); httpkit.HandleError(c, err) {
		return
	}

	png, err := h.svc.AccessLinkQRCode(h.baseURL + "/i/" + raw)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) PresignDocument(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.PresignDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	presigned, err := h.svc.PresignDocumentUpload(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, presigned)
}

func (h *Handler) RegisterDocument(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req transport.RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	doc, err := h.svc.RegisterDocument(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	docs, err := h.svc.ListDocuments(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"documents": docs})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid intervention id")
		return uuid.Nil, false
	}
	return id, true
}
