// Package worker mirrors the consolidated vendor collection to an external
// spreadsheet after each ingestion.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fornecedores/internal/aggregate"
	"fornecedores/internal/amqp"
	"fornecedores/internal/normalize"
	"fornecedores/internal/sheets"
	"fornecedores/internal/store"
)

// ExportWorker reads the persisted aggregates, merges them into canonical
// records and writes the summary through a SummaryWriter.
type ExportWorker struct {
	reader store.AggregateReader
	canon  *normalize.Canonicalizer
	writer sheets.SummaryWriter
}

func NewExportWorker(reader store.AggregateReader, canon *normalize.Canonicalizer, writer sheets.SummaryWriter) *ExportWorker {
	return &ExportWorker{
		reader: reader,
		canon:  canon,
		writer: writer,
	}
}

// HandleUploadCompleted processes a single upload-completed message.
func (w *ExportWorker) HandleUploadCompleted(ctx context.Context, msg *amqp.UploadCompletedMessage) error {
	slog.InfoContext(ctx, "Processing upload completed message",
		"upload_id", msg.UploadID,
		"filename", msg.Filename,
		"vendors", msg.Vendors)

	return w.Export(ctx)
}

// Export writes the current canonical summary. Also called periodically to
// cover messages missed while the worker was down.
func (w *ExportWorker) Export(ctx context.Context) error {
	aggs, err := w.reader.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read aggregates: %w", err)
	}

	records := aggregate.MergeCanonical(aggs, w.canon)
	if len(records) == 0 {
		slog.InfoContext(ctx, "Nothing to export, vendor collection is empty")
		return nil
	}

	if err := w.writer.WriteSummary(ctx, records); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	slog.InfoContext(ctx, "Vendor summary export completed", "vendors", len(records))
	return nil
}
