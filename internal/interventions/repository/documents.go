package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is a file attached to an intervention (photos, reports,
// invoices). The bytes live in object storage; this row is the index.
type Document struct {
	ID             uuid.UUID
	TeamID         uuid.UUID
	InterventionID uuid.UUID
	FileKey        string
	Filename       string
	ContentType    string
	SizeBytes      int64
	UploadedBy     uuid.UUID
	CreatedAt      time.Time
}

func (r *Repository) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO intervention_documents (team_id, intervention_id, file_key, filename, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, doc.TeamID, doc.InterventionID, doc.FileKey, doc.Filename, doc.ContentType, doc.SizeBytes, doc.UploadedBy).Scan(&doc.ID, &doc.CreatedAt)
	return doc, err
}

func (r *Repository) ListDocuments(ctx context.Context, teamID, interventionID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, intervention_id, file_key, filename, content_type, size_bytes, uploaded_by, created_at
		FROM intervention_documents
		WHERE team_id = $1 AND intervention_id = $2
		ORDER BY created_at DESC
	`, teamID, interventionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.TeamID, &d.InterventionID, &d.FileKey, &d.Filename, &d.ContentType, &d.SizeBytes, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
