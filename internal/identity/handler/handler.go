// Package handler exposes the identity module over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/identity/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/service"
	"github.com/aumugisha-umu/seido-sub017/internal/identity/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for teams and invitations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new identity handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the identity routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/team", h.GetTeam)
	rg.PATCH("/team", h.UpdateTeam)
	rg.GET("/members", h.ListMembers)
	rg.GET("/members/:id", h.GetMember)
	rg.POST("/invites", h.CreateInvite)
	rg.GET("/invites", h.ListInvites)
	rg.DELETE("/invites/:id", h.RevokeInvite)
}

func (h *Handler) GetTeam(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	team, err := h.svc.GetTeam(c.Request.Context(), identity.TeamID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTeamResponse(team))
}

func (h *Handler) UpdateTeam(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	team, err := h.svc.UpdateTeam(c.Request.Context(), identity.TeamID(), identity.Role(), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTeamResponse(team))
}

func (h *Handler) ListMembers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), identity.TeamID(), c.Query("role"))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	httpkit.OK(c, gin.H{"members": out})
}

func (h *Handler) GetMember(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	member, err := h.svc.GetMember(c.Request.Context(), identity.TeamID(), memberID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toMemberResponse(member))
}

func (h *Handler) CreateInvite(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	invite, err := h.svc.CreateInvite(c.Request.Context(), identity.TeamID(), identity.UserID(), identity.Role(), req.Email, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, toInviteResponse(invite))
}

func (h *Handler) ListInvites(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	invites, err := h.svc.ListInvites(c.Request.Context(), identity.TeamID(), identity.Role())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.InviteResponse, 0, len(invites))
	for _, inv := range invites {
		out = append(out, toInviteResponse(inv))
	}
	httpkit.OK(c, gin.H{"invites": out})
}

func (h *Handler) RevokeInvite(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	inviteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.RevokeInvite(c.Request.Context(), identity.TeamID(), inviteID, identity.Role()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "revoked"})
}

func toTeamResponse(t repository.Team) transport.TeamResponse {
	return transport.TeamResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toMemberResponse(m repository.Member) transport.MemberResponse {
	return transport.MemberResponse{
		ID:        m.ID.String(),
		Email:     m.Email,
		Role:      m.Role,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
	}
}

func toInviteResponse(inv repository.Invitation) transport.InviteResponse {
	return transport.InviteResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Role:      inv.Role,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
		Status:    inviteStatus(inv),
		RevokedAt: inv.RevokedAt,
	}
}

func inviteStatus(inv repository.Invitation) string {
	switch {
	case inv.AcceptedAt != nil:
		return "acceptee"
	case inv.RevokedAt != nil:
		return "revoquee"
	case time.Now().After(inv.ExpiresAt):
		return "expiree"
	default:
		return "en_attente"
	}
}
