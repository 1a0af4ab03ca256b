// Package handler exposes the conversations module over HTTP.
package handler

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/internal/conversations/service"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for conversations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new conversations handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the conversation routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/intervention/:interventionId", h.GetThread)
	rg.POST("/intervention/:interventionId/messages", h.PostMessage)
	rg.POST("/intervention/:interventionId/attachments/presign", h.PresignAttachment)
}

func (h *Handler) GetThread(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	interventionID, ok := parseInterventionID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetThread(c.Request.Context(), identity.TeamID(), interventionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) PostMessage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	interventionID, ok := parseInterventionID(c)
	if !ok {
		return
	}

	var req transport.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.PostMessage(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), interventionID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) PresignAttachment(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	interventionID, ok := parseInterventionID(c)
	if !ok {
		return
	}

	var req transport.PresignAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.PresignAttachmentUpload(c.Request.Context(), identity.TeamID(), interventionID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseInterventionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("interventionId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid intervention id")
		return uuid.Nil, false
	}
	return id, true
}
