package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fornecedores/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists vendor aggregates as documents: scalar totals
// in columns, detail rows as a JSON array. Ingestion replaces the whole
// fornecedores table inside one transaction, so concurrent readers never
// observe a half-replaced collection.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceAll implements store.AggregateWriter: clear+insert in one
// transaction.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, aggs []core.VendorAggregate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fornecedores`); err != nil {
		return fmt.Errorf("clear fornecedores: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fornecedores (position, fornecedor, total, total_horas, detalhes)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, agg := range aggs {
		detalhes, err := json.Marshal(agg.Detalhes)
		if err != nil {
			return fmt.Errorf("marshal detail rows for %s: %w", agg.Fornecedor, err)
		}
		if _, err := stmt.ExecContext(ctx, i, agg.Fornecedor, agg.Total, agg.TotalHoras, string(detalhes)); err != nil {
			return fmt.Errorf("insert %s: %w", agg.Fornecedor, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Replaced vendor collection", "count", len(aggs))
	return nil
}

// ReadAll implements store.AggregateReader, returning aggregates in their
// original ingestion order.
func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]core.VendorAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fornecedor, total, total_horas, detalhes
		FROM fornecedores ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query fornecedores: %w", err)
	}
	defer rows.Close()

	var out []core.VendorAggregate
	for rows.Next() {
		var agg core.VendorAggregate
		var detalhes string
		if err := rows.Scan(&agg.Fornecedor, &agg.Total, &agg.TotalHoras, &detalhes); err != nil {
			return nil, fmt.Errorf("scan fornecedor: %w", err)
		}
		if err := json.Unmarshal([]byte(detalhes), &agg.Detalhes); err != nil {
			return nil, fmt.Errorf("unmarshal detail rows for %s: %w", agg.Fornecedor, err)
		}
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fornecedores: %w", err)
	}
	return out, nil
}

// RecordUpload implements store.UploadLog.
func (r *SQLiteRepository) RecordUpload(ctx context.Context, u core.Upload) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (upload_id, filename, file_hash, uploaded_at, rows, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.FileHash, u.At, u.Rows, u.Error)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// FindUploadByHash implements store.UploadLog. Failed ingestions do not
// count as duplicates: the same file may be retried after a fix.
func (r *SQLiteRepository) FindUploadByHash(ctx context.Context, hash string) (*core.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT upload_id, filename, file_hash, uploaded_at, rows, error
		FROM uploads WHERE file_hash = ? AND error = ''
		ORDER BY uploaded_at DESC LIMIT 1`, hash)

	var u core.Upload
	err := row.Scan(&u.ID, &u.Filename, &u.FileHash, &u.At, &u.Rows, &u.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find upload by hash: %w", err)
	}
	return &u, nil
}

// ListUploads implements store.UploadLog, most recent first.
func (r *SQLiteRepository) ListUploads(ctx context.Context, limit int) ([]core.Upload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT upload_id, filename, file_hash, uploaded_at, rows, error
		FROM uploads ORDER BY uploaded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var out []core.Upload
	for rows.Next() {
		var u core.Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.FileHash, &u.At, &u.Rows, &u.Error); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
