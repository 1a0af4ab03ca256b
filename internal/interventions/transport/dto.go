// Package transport defines request and response DTOs for the interventions module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateInterventionRequest is the payload to open a new intervention.
// Locataires are restricted to lots they occupy; gestionnaires may target any
// lot or building of their team.
type CreateInterventionRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"required,min=10,max=5000"`
	Urgency     string     `json:"urgency" validate:"required,oneof=faible normale urgente"`
	LotID       *uuid.UUID `json:"lotId,omitempty"`
	BuildingID  *uuid.UUID `json:"buildingId,omitempty"`
}

// TransitionRequest is the payload for a lifecycle transition. Only the
// fields the target transition requires need to be set.
type TransitionRequest struct {
	To             string `json:"to" validate:"required"`
	Reason         string `json:"reason,omitempty" validate:"omitempty,max=1000"`
	CompletionNote string `json:"completionNote,omitempty" validate:"omitempty,max=5000"`
	Satisfaction   *int   `json:"satisfaction,omitempty" validate:"omitempty,min=1,max=5"`
}

// AssignRequest attaches a participant to an intervention.
type AssignRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=gestionnaire prestataire locataire"`
}

// UpdateInterventionRequest edits mutable metadata of an open intervention.
type UpdateInterventionRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=10,max=5000"`
	Urgency     *string `json:"urgency,omitempty" validate:"omitempty,oneof=faible normale urgente"`
}

// ListInterventionsQuery holds the query parameters for listing.
type ListInterventionsQuery struct {
	Status   string `form:"status"`
	Urgency  string `form:"urgency"`
	LotID    string `form:"lotId"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// InterventionResponse is the API representation of an intervention.
type InterventionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Reference          string     `json:"reference"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Urgency            string     `json:"urgency"`
	Status             string     `json:"status"`
	RequiresQuote      bool       `json:"requiresQuote"`
	LotID              *uuid.UUID `json:"lotId,omitempty"`
	BuildingID         *uuid.UUID `json:"buildingId,omitempty"`
	RequesterID        uuid.UUID  `json:"requesterId"`
	AssignedProviderID *uuid.UUID `json:"assignedProviderId,omitempty"`
	CompletionNote     *string    `json:"completionNote,omitempty"`
	Satisfaction       *int       `json:"satisfaction,omitempty"`
	StatusReason       *string    `json:"statusReason,omitempty"`
	AvailableActions   []string   `json:"availableActions"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ListInterventionsResponse is the paginated list payload.
type ListInterventionsResponse struct {
	Items      []InterventionResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalPages int                    `json:"totalPages"`
}

// AccessLinkResponse carries a freshly minted magic link. The raw token is
// only returned here, never stored.
type AccessLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PresignDocumentRequest asks for a presigned upload URL for a document.
type PresignDocumentRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// RegisterDocumentRequest records a completed upload.
type RegisterDocumentRequest struct {
	FileKey     string `json:"fileKey" validate:"required"`
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// DocumentResponse is a document row plus a short-lived download URL.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
