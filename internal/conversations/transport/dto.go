// Package transport defines request and response DTOs for the conversations module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// PostMessageRequest is the payload for posting a message to a thread.
type PostMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=10000"`
}

// PresignAttachmentRequest asks for an upload URL for a message attachment.
type PresignAttachmentRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// AttachmentResponse is the API representation of a message attachment.
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

// MessageResponse is the API representation of a thread message.
type MessageResponse struct {
	ID          uuid.UUID            `json:"id"`
	SenderID    *uuid.UUID           `json:"senderId,omitempty"`
	SenderRole  *string              `json:"senderRole,omitempty"`
	FromEmail   *string              `json:"fromEmail,omitempty"`
	Subject     *string              `json:"subject,omitempty"`
	Body        string               `json:"body"`
	Source      string               `json:"source"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ThreadResponse is the API representation of an intervention conversation.
type ThreadResponse struct {
	ID             uuid.UUID         `json:"id"`
	InterventionID uuid.UUID         `json:"interventionId"`
	ReplyAddress   string            `json:"replyAddress"`
	Messages       []MessageResponse `json:"messages"`
	CreatedAt      time.Time         `json:"createdAt"`
}
