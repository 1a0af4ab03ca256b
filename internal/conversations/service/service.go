// Package service implements business logic for the conversations module.
package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	"github.com/aumugisha-umu/seido-sub017/internal/auth/token"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations/transport"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"

	"github.com/google/uuid"
)

// InboundAttachment is a decoded email attachment handed over by the
// webhook module.
type InboundAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InboundMessage is a verified inbound email handed over by the webhook
// module.
type InboundMessage struct {
	ThreadKey   string
	FromEmail   string
	Subject     string
	Text        string
	HTML        string
	Attachments []InboundAttachment
}

// InboundResult identifies where an inbound message landed.
type InboundResult struct {
	ConversationID uuid.UUID
	MessageID      uuid.UUID
	TeamID         uuid.UUID
	InterventionID uuid.UUID
}

// Service provides business logic for conversations.
type Service struct {
	repo        *repository.Repository
	storage     storage.StorageService
	bucket      string
	replyDomain string
	eventBus    events.Bus
	log         *logger.Logger
}

// New creates a new conversations service. storage may be nil when MinIO is
// disabled; attachments are then rejected.
func New(repo *repository.Repository, storageSvc storage.StorageService, bucket, replyDomain string, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		storage:     storageSvc,
		bucket:      bucket,
		replyDomain: replyDomain,
		log:         log,
	}
}

// SetEventBus injects the event bus for publishing domain events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// EnsureThread returns the intervention's conversation, creating it with a
// fresh thread key on first access.
func (s *Service) EnsureThread(ctx context.Context, teamID, interventionID uuid.UUID) (*repository.Conversation, error) {
	conv, err := s.repo.GetByIntervention(ctx, teamID, interventionID)
	if err == nil {
		return conv, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	key, err := token.GenerateRandomToken(16)
	if err != nil {
		return nil, fmt.Errorf("generate thread key: %w", err)
	}

	conv = &repository.Conversation{
		ID:             uuid.New(),
		TeamID:         teamID,
		InterventionID: interventionID,
		ThreadKey:      key,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetThread returns the intervention's thread with all messages.
func (s *Service) GetThread(ctx context.Context, teamID, interventionID uuid.UUID) (*transport.ThreadResponse, error) {
	conv, err := s.EnsureThread(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}
	return s.toThreadResponse(ctx, conv)
}

// PostMessage appends an in-app message to the intervention's thread.
func (s *Service) PostMessage(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, interventionID uuid.UUID, req transport.PostMessageRequest) (*transport.MessageResponse, error) {
	conv, err := s.EnsureThread(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}

	msg := repository.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		TeamID:         teamID,
		SenderID:       &actorID,
		SenderRole:     &actorRole,
		Body:           strings.TrimSpace(req.Body),
		Source:         repository.SourceApp,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, &msg, nil); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.MessagePosted{
			BaseEvent:      events.NewBaseEvent(),
			ConversationID: conv.ID,
			MessageID:      msg.ID,
			TeamID:         teamID,
			InterventionID: interventionID,
			SenderID:       actorID,
			Body:           msg.Body,
		})
	}

	resp := s.toMessageResponse(ctx, &msg, nil)
	return &resp, nil
}

// PresignAttachmentUpload returns an upload URL for a message attachment.
func (s *Service) PresignAttachmentUpload(ctx context.Context, teamID, interventionID uuid.UUID, req transport.PresignAttachmentRequest) (*storage.PresignedURL, error) {
	if s.storage == nil {
		return nil, apperr.Unprocessable("le stockage de fichiers n'est pas configuré")
	}
	if err := s.storage.ValidateContentType(req.ContentType); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.storage.ValidateFileSize(req.SizeBytes); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	folder := fmt.Sprintf("%s/%s", teamID, interventionID)
	return s.storage.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.SizeBytes)
}

// AppendInbound stores a verified inbound email in its thread, uploading
// attachments to object storage and publishing MessageReceived.
func (s *Service) AppendInbound(ctx context.Context, in InboundMessage) (*InboundResult, error) {
	conv, err := s.repo.GetByThreadKey(ctx, in.ThreadKey)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg := repository.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		TeamID:         conv.TeamID,
		FromEmail:      nilIfEmpty(in.FromEmail),
		Subject:        nilIfEmpty(in.Subject),
		Body:           messageBody(in.Text, in.HTML),
		Source:         repository.SourceEmail,
		CreatedAt:      now,
	}

	var attachments []repository.Attachment
	for _, att := range in.Attachments {
		if s.storage == nil {
			s.log.Warn("dropping inbound attachment, storage disabled", "filename", att.Filename)
			continue
		}
		folder := fmt.Sprintf("%s/%s", conv.TeamID, conv.InterventionID)
		fileKey, err := s.storage.UploadFile(ctx, s.bucket, folder, att.Filename, att.ContentType,
			bytes.NewReader(att.Data), int64(len(att.Data)))
		if err != nil {
			return nil, fmt.Errorf("upload inbound attachment: %w", err)
		}
		attachments = append(attachments, repository.Attachment{
			ID:          uuid.New(),
			MessageID:   msg.ID,
			TeamID:      conv.TeamID,
			FileKey:     fileKey,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			SizeBytes:   int64(len(att.Data)),
			CreatedAt:   now,
		})
	}

	if err := s.repo.CreateMessage(ctx, &msg, attachments); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.MessageReceived{
			BaseEvent:      events.NewBaseEvent(),
			ConversationID: conv.ID,
			MessageID:      msg.ID,
			TeamID:         conv.TeamID,
			InterventionID: conv.InterventionID,
			FromEmail:      in.FromEmail,
			Subject:        in.Subject,
		})
	}

	return &InboundResult{
		ConversationID: conv.ID,
		MessageID:      msg.ID,
		TeamID:         conv.TeamID,
		InterventionID: conv.InterventionID,
	}, nil
}

func (s *Service) toThreadResponse(ctx context.Context, conv *repository.Conversation) (*transport.ThreadResponse, error) {
	messages, err := s.repo.ListMessages(ctx, conv.TeamID, conv.ID)
	if err != nil {
		return nil, err
	}

	messageIDs := make([]uuid.UUID, len(messages))
	for i := range messages {
		messageIDs[i] = messages[i].ID
	}
	attachments, err := s.repo.ListAttachments(ctx, conv.TeamID, messageIDs)
	if err != nil {
		return nil, err
	}
	byMessage := make(map[uuid.UUID][]repository.Attachment)
	for _, att := range attachments {
		byMessage[att.MessageID] = append(byMessage[att.MessageID], att)
	}

	msgResponses := make([]transport.MessageResponse, len(messages))
	for i := range messages {
		msgResponses[i] = s.toMessageResponse(ctx, &messages[i], byMessage[messages[i].ID])
	}

	return &transport.ThreadResponse{
		ID:             conv.ID,
		InterventionID: conv.InterventionID,
		ReplyAddress:   fmt.Sprintf("reply+%s@%s", conv.ThreadKey, s.replyDomain),
		Messages:       msgResponses,
		CreatedAt:      conv.CreatedAt,
	}, nil
}

func (s *Service) toMessageResponse(ctx context.Context, msg *repository.Message, attachments []repository.Attachment) transport.MessageResponse {
	attResponses := make([]transport.AttachmentResponse, 0, len(attachments))
	for _, att := range attachments {
		resp := transport.AttachmentResponse{
			ID:          att.ID,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			SizeBytes:   att.SizeBytes,
		}
		if s.storage != nil {
			if presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, att.FileKey); err == nil {
				resp.DownloadURL = presigned.URL
			}
		}
		attResponses = append(attResponses, resp)
	}

	return transport.MessageResponse{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		SenderRole:  msg.SenderRole,
		FromEmail:   msg.FromEmail,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Source:      msg.Source,
		Attachments: attResponses,
		CreatedAt:   msg.CreatedAt,
	}
}

// messageBody prefers plain text, falling back to raw HTML when the
// provider sent none.
func messageBody(text, html string) string {
	if body := strings.TrimSpace(text); body != "" {
		return body
	}
	return strings.TrimSpace(html)
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
