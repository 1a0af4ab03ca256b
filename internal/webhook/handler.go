package webhook

import (
	"net/http"

	"github.com/aumugisha-umu/seido-sub017/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the inbound email webhook.
type Handler struct {
	svc *Service
}

// NewHandler creates a new webhook handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// HandleInboundEmail processes a signature-verified inbound email delivery.
// POST /api/v1/webhook/inbound-email
func (h *Handler) HandleInboundEmail(c *gin.Context) {
	body, messageID, ok := verifiedBody(c)
	if !ok {
		httpkit.Error(c, http.StatusInternalServerError, "missing verified body", nil)
		return
	}

	result, err := h.svc.ProcessInboundEmail(c.Request.Context(), messageID, body)
	if httpkit.HandleError(c, err) {
		return
	}
	if result == nil {
		// redelivery of an already processed message
		httpkit.OK(c, gin.H{"status": "already_processed"})
		return
	}
	httpkit.OK(c, gin.H{
		"status":         "accepted",
		"conversationId": result.ConversationID,
		"messageId":      result.MessageID,
	})
}
