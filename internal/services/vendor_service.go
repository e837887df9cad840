package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fornecedores/internal/aggregate"
	"fornecedores/internal/core"
	"fornecedores/internal/normalize"
	"fornecedores/internal/query"
	"fornecedores/internal/store"
)

// VendorService serves the consolidated read paths. Canonical records are
// derived from the persisted aggregates on every call; the HTTP layer may
// cache results between ingestions.
type VendorService struct {
	reader store.AggregateReader
	canon  *normalize.Canonicalizer
}

func NewVendorService(reader store.AggregateReader, canon *normalize.Canonicalizer) *VendorService {
	return &VendorService{reader: reader, canon: canon}
}

// List returns canonical records filtered and sorted per the caller.
func (s *VendorService) List(ctx context.Context, f query.Filters, sortKey query.Sort) ([]core.CanonicalRecord, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(merged, f, sortKey), nil
}

// Hours returns the hours-per-vendor summary, largest first.
func (s *VendorService) Hours(ctx context.Context) ([]core.HoursEntry, error) {
	aggs, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read aggregates: %w", err)
	}
	entries := aggregate.HoursByVendor(aggs, s.canon)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].TotalHoras > entries[j].TotalHoras })
	return entries, nil
}

// Best returns the canonical record with the highest total, or nil when
// the collection is empty.
func (s *VendorService) Best(ctx context.Context) (*core.CanonicalRecord, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}
	var best *core.CanonicalRecord
	for i := range merged {
		if best == nil || merged[i].Total > best.Total {
			best = &merged[i]
		}
	}
	return best, nil
}

type (
	// ProfileBreakdown is one role's share of a vendor's billing.
	ProfileBreakdown struct {
		Perfil     string  `json:"perfil"`
		Total      float64 `json:"total_valor"`
		TotalHoras float64 `json:"total_hh"`
	}

	// VendorProfileSummary groups a vendor's billing by role profile.
	VendorProfileSummary struct {
		Fornecedor string             `json:"fornecedor"`
		Total      float64            `json:"fornecedor_total"`
		Perfis     []ProfileBreakdown `json:"perfis"`
	}
)

// ProfileSummary breaks each canonical vendor down by the Perfil column of
// its detail rows, ordered by vendor total descending.
func (s *VendorService) ProfileSummary(ctx context.Context) ([]VendorProfileSummary, error) {
	merged, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]VendorProfileSummary, 0, len(merged))
	for _, rec := range merged {
		summary := VendorProfileSummary{Fornecedor: core.DisplayName(rec.Fornecedor)}
		index := make(map[string]int)
		for _, row := range rec.Detalhes {
			perfil := profileName(row)
			valor, _ := row.Monetary()
			horas, _ := row.Hours()

			i, ok := index[perfil]
			if !ok {
				i = len(summary.Perfis)
				index[perfil] = i
				summary.Perfis = append(summary.Perfis, ProfileBreakdown{Perfil: perfil})
			}
			summary.Perfis[i].Total += valor
			summary.Perfis[i].TotalHoras += horas
			summary.Total += valor
		}
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (s *VendorService) merged(ctx context.Context) ([]core.CanonicalRecord, error) {
	aggs, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read aggregates: %w", err)
	}
	return aggregate.MergeCanonical(aggs, s.canon), nil
}

func profileName(row core.RawRow) string {
	for _, col := range []string{"Perfil", "perfil"} {
		if v := strings.TrimSpace(row[col]); v != "" {
			return v
		}
	}
	return "Sem perfil"
}
