// Package memory provides an in-memory SummaryWriter for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"sync"

	"fornecedores/internal/core"
	ports "fornecedores/internal/sheets"
)

type Writer struct {
	mu     sync.Mutex
	last   []core.CanonicalRecord
	writes int
}

var _ ports.SummaryWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteSummary(_ context.Context, records []core.CanonicalRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = append([]core.CanonicalRecord(nil), records...)
	w.writes++
	return nil
}

// Last returns the most recently written summary.
func (w *Writer) Last() []core.CanonicalRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.CanonicalRecord(nil), w.last...)
}

// Writes returns how many summaries were written.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
