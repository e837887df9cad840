// Package memory is an in-memory store adapter used in development and
// tests. A single mutex serializes clear+replace against readers, which is
// the whole concurrency story: queries work on the snapshot ReadAll hands
// out.
package memory

import (
	"context"
	"sync"

	"fornecedores/internal/core"
)

type Store struct {
	mu      sync.RWMutex
	aggs    []core.VendorAggregate
	uploads []core.Upload
}

func New() *Store {
	return &Store{}
}

// ReplaceAll swaps in a new generation of aggregates under the write lock.
func (s *Store) ReplaceAll(_ context.Context, aggs []core.VendorAggregate) error {
	next := make([]core.VendorAggregate, len(aggs))
	for i, a := range aggs {
		next[i] = a.Clone()
	}
	s.mu.Lock()
	s.aggs = next
	s.mu.Unlock()
	return nil
}

// ReadAll returns a snapshot; callers may mutate it freely.
func (s *Store) ReadAll(_ context.Context) ([]core.VendorAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.VendorAggregate, len(s.aggs))
	for i, a := range s.aggs {
		out[i] = a.Clone()
	}
	return out, nil
}

func (s *Store) RecordUpload(_ context.Context, u core.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, u)
	return nil
}

func (s *Store) FindUploadByHash(_ context.Context, hash string) (*core.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.uploads {
		if s.uploads[i].FileHash == hash && s.uploads[i].Error == "" {
			u := s.uploads[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUploads(_ context.Context, limit int) ([]core.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Upload, 0, limit)
	// Most recent first.
	for i := len(s.uploads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.uploads[i])
	}
	return out, nil
}
