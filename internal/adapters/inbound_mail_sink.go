package adapters

import (
	"context"

	convservice "github.com/aumugisha-umu/seido-sub017/internal/conversations/service"
	"github.com/aumugisha-umu/seido-sub017/internal/webhook"
)

// InboundMailSink routes verified inbound emails from the webhook module
// into the conversations module.
type InboundMailSink struct {
	svc *convservice.Service
}

func NewInboundMailSink(svc *convservice.Service) *InboundMailSink {
	return &InboundMailSink{svc: svc}
}

func (a *InboundMailSink) AppendInboundMessage(ctx context.Context, params webhook.InboundMessageParams) (*webhook.InboundMessageResult, error) {
	attachments := make([]convservice.InboundAttachment, len(params.Attachments))
	for i, att := range params.Attachments {
		attachments[i] = convservice.InboundAttachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Data:        att.Data,
		}
	}

	result, err := a.svc.AppendInbound(ctx, convservice.InboundMessage{
		ThreadKey:   params.ThreadKey,
		FromEmail:   params.FromEmail,
		Subject:     params.Subject,
		Text:        params.Text,
		HTML:        params.HTML,
		Attachments: attachments,
	})
	if err != nil {
		return nil, err
	}

	return &webhook.InboundMessageResult{
		ConversationID: result.ConversationID,
		MessageID:      result.MessageID,
		TeamID:         result.TeamID,
		InterventionID: result.InterventionID,
	}, nil
}

// Compile-time check
var _ webhook.MessageSink = (*InboundMailSink)(nil)
