package service

import (
	"context"
	"fmt"

	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/domain"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/repository"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions/transport"
	"github.com/aumugisha-umu/seido-sub017/platform/apperr"

	"github.com/google/uuid"
)

// SetStorage injects the object storage service used for intervention
// documents.
func (s *Service) SetStorage(storageSvc storage.StorageService, bucket string) {
	s.storage = storageSvc
	s.documentBucket = bucket
}

// PresignDocumentUpload validates the file and returns a presigned upload
// URL. The document is registered separately once the upload completes.
func (s *Service) PresignDocumentUpload(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, interventionID uuid.UUID, req transport.PresignDocumentRequest) (*storage.PresignedURL, error) {
	if s.storage == nil {
		return nil, apperr.Internal("storage service not configured")
	}

	iv, err := s.repo.GetByID(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(iv, actorID, domain.Role(actorRole)); err != nil {
		return nil, err
	}

	if err := s.storage.ValidateContentType(req.ContentType); err != nil {
		return nil, apperr.Unprocessable("type de fichier non autorisé")
	}
	if err := s.storage.ValidateFileSize(req.SizeBytes); err != nil {
		return nil, apperr.Unprocessable("fichier trop volumineux")
	}

	folder := fmt.Sprintf("%s/%s", teamID, interventionID)
	return s.storage.GenerateUploadURL(ctx, s.documentBucket, folder, req.Filename, req.ContentType, req.SizeBytes)
}

// RegisterDocument records an uploaded document against the intervention.
func (s *Service) RegisterDocument(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, interventionID uuid.UUID, req transport.RegisterDocumentRequest) (*transport.DocumentResponse, error) {
	iv, err := s.repo.GetByID(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(iv, actorID, domain.Role(actorRole)); err != nil {
		return nil, err
	}

	doc, err := s.repo.CreateDocument(ctx, repository.Document{
		TeamID:         teamID,
		InterventionID: interventionID,
		FileKey:        req.FileKey,
		Filename:       req.Filename,
		ContentType:    req.ContentType,
		SizeBytes:      req.SizeBytes,
		UploadedBy:     actorID,
	})
	if err != nil {
		return nil, err
	}

	resp := toDocumentResponse(doc, "")
	return &resp, nil
}

// ListDocuments returns the intervention's documents with presigned
// download URLs.
func (s *Service) ListDocuments(ctx context.Context, teamID, actorID uuid.UUID, actorRole string, interventionID uuid.UUID) ([]transport.DocumentResponse, error) {
	iv, err := s.repo.GetByID(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(iv, actorID, domain.Role(actorRole)); err != nil {
		return nil, err
	}

	docs, err := s.repo.ListDocuments(ctx, teamID, interventionID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		url := ""
		if s.storage != nil {
			if presigned, err := s.storage.GenerateDownloadURL(ctx, s.documentBucket, doc.FileKey); err == nil {
				url = presigned.URL
			} else {
				s.log.Warn("presign document download failed", "fileKey", doc.FileKey, "error", err)
			}
		}
		out = append(out, toDocumentResponse(doc, url))
	}
	return out, nil
}

func toDocumentResponse(doc repository.Document, downloadURL string) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:          doc.ID.String(),
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		UploadedBy:  doc.UploadedBy.String(),
		DownloadURL: downloadURL,
		CreatedAt:   doc.CreatedAt,
	}
}
