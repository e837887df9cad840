package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fornecedores/internal/aggregate"
	"fornecedores/internal/amqp"
	"fornecedores/internal/core"
	"fornecedores/internal/excel"
	"fornecedores/internal/store"
)

// EventPublisher announces completed ingestions. Nil-able: ingestion works
// without a broker.
type EventPublisher interface {
	PublishUploadCompleted(ctx context.Context, msg *amqp.UploadCompletedMessage) error
}

// IngestionService runs the full ingestion pass: extract rows from a
// workbook, aggregate by literal vendor name and replace the persisted
// collection. Extraction and sheet-lookup failures abort the whole call;
// nothing is committed. Every attempt, failed or not, lands in the upload
// log.
type IngestionService struct {
	store     store.Store
	publisher EventPublisher
}

func NewIngestionService(st store.Store, publisher EventPublisher) *IngestionService {
	return &IngestionService{store: st, publisher: publisher}
}

// IngestWorkbook processes one uploaded .xlsx file. Re-uploads of content
// already ingested successfully fail with core.ErrDuplicateUpload.
func (s *IngestionService) IngestWorkbook(ctx context.Context, r io.Reader, filename string) (core.Upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read upload: %w", err)
	}

	sum := sha256.Sum256(data)
	upload := core.Upload{
		ID:       uuid.New().String(),
		Filename: filename,
		FileHash: hex.EncodeToString(sum[:]),
		At:       time.Now().UTC(),
	}

	if existing, err := s.store.FindUploadByHash(ctx, upload.FileHash); err != nil {
		return core.Upload{}, fmt.Errorf("check duplicate upload: %w", err)
	} else if existing != nil {
		return *existing, fmt.Errorf("%w: upload %s", core.ErrDuplicateUpload, existing.ID)
	}

	rows, err := excel.Extract(bytes.NewReader(data))
	if err != nil {
		s.recordAttempt(ctx, upload, err)
		return core.Upload{}, err
	}

	aggs := aggregate.ByVendor(rows)
	if len(aggs) == 0 {
		err := fmt.Errorf("%w: file %s", core.ErrNoRecords, filename)
		s.recordAttempt(ctx, upload, err)
		return core.Upload{}, err
	}

	if err := s.store.ReplaceAll(ctx, aggs); err != nil {
		return core.Upload{}, fmt.Errorf("replace vendor collection: %w", err)
	}

	upload.Rows = len(rows)
	s.recordAttempt(ctx, upload, nil)

	slog.InfoContext(ctx, "Ingestion completed",
		"upload_id", upload.ID,
		"filename", filename,
		"rows", len(rows),
		"vendors", len(aggs))

	if s.publisher != nil {
		msg := amqp.NewUploadCompletedMessage(upload.ID, filename, len(aggs), len(rows))
		if err := s.publisher.PublishUploadCompleted(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish upload event", "error", err, "upload_id", upload.ID)
		}
	}

	return upload, nil
}

func (s *IngestionService) recordAttempt(ctx context.Context, u core.Upload, cause error) {
	if cause != nil {
		u.Error = cause.Error()
	}
	if err := s.store.RecordUpload(ctx, u); err != nil {
		slog.WarnContext(ctx, "Failed to record upload metadata", "error", err, "upload_id", u.ID)
	}
}

// Uploads returns recent upload metadata, most recent first.
func (s *IngestionService) Uploads(ctx context.Context, limit int) ([]core.Upload, error) {
	return s.store.ListUploads(ctx, limit)
}

// IsDuplicate reports whether err is the duplicate-upload failure.
func IsDuplicate(err error) bool {
	return errors.Is(err, core.ErrDuplicateUpload)
}
