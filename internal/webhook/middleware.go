package webhook

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	ctxBodyKey      = "webhookBody"
	ctxMessageIDKey = "webhookMessageID"
)

// headerWithAlias returns the first non-empty header value. Svix sends every
// header under both the webhook-* and svix-* names.
func headerWithAlias(c *gin.Context, name, alias string) string {
	if v := c.GetHeader(name); v != "" {
		return v
	}
	return c.GetHeader(alias)
}

// SignatureMiddleware reads and caps the request body, verifies the svix
// signature headers and stashes the verified body on the gin context. Any
// failure rejects the request before a handler runs.
func SignatureMiddleware(verifier *Verifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgID := headerWithAlias(c, HeaderID, HeaderSvixID)
		timestamp := headerWithAlias(c, HeaderTimestamp, HeaderSvixTimestamp)
		signature := headerWithAlias(c, HeaderSignature, HeaderSvixSignature)

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				log.WebhookRejected(msgID, "body too large")
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		if err := verifier.Verify(msgID, timestamp, signature, body, time.Now()); err != nil {
			reason := "invalid signature"
			switch {
			case errors.Is(err, ErrMissingHeaders):
				reason = "missing signature headers"
			case errors.Is(err, ErrStaleTimestamp):
				reason = "stale timestamp"
			}
			log.WebhookRejected(msgID, reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
			return
		}

		c.Set(ctxBodyKey, body)
		c.Set(ctxMessageIDKey, msgID)
		c.Next()
	}
}

// verifiedBody returns the body stashed by SignatureMiddleware.
func verifiedBody(c *gin.Context) ([]byte, string, bool) {
	value, ok := c.Get(ctxBodyKey)
	if !ok {
		return nil, "", false
	}
	body, ok := value.([]byte)
	if !ok {
		return nil, "", false
	}
	return body, c.GetString(ctxMessageIDKey), true
}
