// Package store defines the persistence ports for vendor aggregates.
// The core treats the store as a document collection: each ingestion
// replaces the whole collection, and readers always see either the old or
// the new generation, never a cleared-but-unfilled one.
package store

import (
	"context"

	"fornecedores/internal/core"
)

type (
	// AggregateReader serves the persisted first-pass aggregates.
	AggregateReader interface {
		ReadAll(ctx context.Context) ([]core.VendorAggregate, error)
	}

	// AggregateWriter replaces the vendor collection atomically.
	AggregateWriter interface {
		// ReplaceAll clears the collection and inserts the given aggregates
		// as one unit. A concurrent ReadAll sees the previous generation or
		// the new one, nothing in between.
		ReplaceAll(ctx context.Context, aggs []core.VendorAggregate) error
	}

	// UploadLog records ingestion attempts and backs duplicate detection.
	UploadLog interface {
		RecordUpload(ctx context.Context, u core.Upload) error
		// FindUploadByHash returns nil when no upload matches the hash.
		FindUploadByHash(ctx context.Context, hash string) (*core.Upload, error)
		ListUploads(ctx context.Context, limit int) ([]core.Upload, error)
	}

	// Store is the full persistence surface used by the services layer.
	Store interface {
		AggregateReader
		AggregateWriter
		UploadLog
	}
)
