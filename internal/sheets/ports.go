package sheets

import (
	"context"

	"fornecedores/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter publishes the consolidated vendor collection to an
	// external spreadsheet, replacing whatever was there before.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, records []core.CanonicalRecord) error
	}
)
