package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

// InboundMessageParams carries a verified inbound email into the
// conversations module without importing its types.
type InboundMessageParams struct {
	ThreadKey   string
	FromEmail   string
	Subject     string
	Text        string
	HTML        string
	Attachments []DecodedAttachment
}

// InboundMessageResult identifies where the message landed.
type InboundMessageResult struct {
	ConversationID uuid.UUID
	MessageID      uuid.UUID
	TeamID         uuid.UUID
	InterventionID uuid.UUID
}

// MessageSink appends a verified inbound email to its conversation thread.
// Implemented by an adapter wrapping the conversations service.
type MessageSink interface {
	AppendInboundMessage(ctx context.Context, params InboundMessageParams) (*InboundMessageResult, error)
}

// Service processes verified inbound email webhooks.
type Service struct {
	repo        *Repository
	sink        MessageSink
	replyDomain string
	log         *logger.Logger
}

// NewService creates a new webhook service.
func NewService(repo *Repository, sink MessageSink, replyDomain string, log *logger.Logger) *Service {
	return &Service{repo: repo, sink: sink, replyDomain: replyDomain, log: log}
}

// ProcessInboundEmail handles one verified delivery. Redeliveries of an
// already processed message id succeed without side effects.
func (s *Service) ProcessInboundEmail(ctx context.Context, messageID string, body []byte) (*InboundMessageResult, error) {
	var payload InboundEmail
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperr.BadRequest("invalid payload")
	}

	threadKey, err := ExtractThreadKey(payload.To, s.replyDomain)
	if err != nil {
		s.log.WebhookRejected(messageID, "no thread key")
		return nil, apperr.NotFound("no conversation for recipient")
	}

	attachments, err := DecodeAttachments(payload.Attachments)
	if err != nil {
		s.log.WebhookRejected(messageID, err.Error())
		return nil, apperr.Unprocessable(err.Error())
	}

	if messageID != "" {
		fresh, err := s.repo.RecordDelivery(ctx, messageID)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, nil
		}
	}

	result, err := s.sink.AppendInboundMessage(ctx, InboundMessageParams{
		ThreadKey:   threadKey,
		FromEmail:   strings.TrimSpace(payload.From),
		Subject:     strings.TrimSpace(payload.Subject),
		Text:        payload.Text,
		HTML:        payload.HTML,
		Attachments: attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("append inbound message: %w", err)
	}
	return result, nil
}
