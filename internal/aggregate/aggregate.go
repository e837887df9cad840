// Package aggregate implements the two-pass vendor consolidation:
// first grouping rows by the literal vendor-name string, then merging
// those groups under canonical vendor identities.
package aggregate

import (
	"log/slog"

	"fornecedores/internal/core"
	"fornecedores/internal/normalize"
)

// ByVendor groups rows by the literal resolved vendor name, summing
// monetary and hour totals and retaining every row in the group's detail
// list. No canonicalization happens at this stage. Output order is the
// first-occurrence order of each vendor name, so the same row sequence
// always produces the same aggregate list.
func ByVendor(rows []core.RawRow) []core.VendorAggregate {
	index := make(map[string]int)
	var out []core.VendorAggregate

	for _, row := range rows {
		name := row.VendorName()

		valor, badValor := row.Monetary()
		horas, badHoras := row.Hours()
		for _, cell := range append(badValor, badHoras...) {
			slog.Warn("Malformed numeric cell defaulted to zero",
				"fornecedor", name,
				"column", cell.Column,
				"value", cell.Value)
		}

		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, core.VendorAggregate{Fornecedor: name})
		}
		out[i].Total += valor
		out[i].TotalHoras += horas
		out[i].Detalhes = append(out[i].Detalhes, row)
	}
	return out
}

// MergeCanonical re-groups first-pass aggregates under canonical vendor
// keys. The first aggregate mapped into a group seeds it (its literal name
// becomes the display name and its detail list is copied, not aliased);
// later aggregates add into the running sums and concatenate their details.
// Output order is the first-encounter order of each canonical key.
func MergeCanonical(aggs []core.VendorAggregate, c *normalize.Canonicalizer) []core.CanonicalRecord {
	index := make(map[string]int)
	var out []core.CanonicalRecord

	for _, agg := range aggs {
		key := c.Canonicalize(agg.Fornecedor)
		i, ok := index[key]
		if !ok {
			seed := agg.Clone()
			index[key] = len(out)
			out = append(out, core.CanonicalRecord{
				Fornecedor: seed.Fornecedor,
				Total:      seed.Total,
				TotalHoras: seed.TotalHoras,
				Detalhes:   seed.Detalhes,
			})
			continue
		}
		out[i].Total += agg.Total
		out[i].TotalHoras += agg.TotalHoras
		out[i].Detalhes = append(out[i].Detalhes, agg.Detalhes...)
	}
	return out
}

// HoursByVendor builds the lightweight hours-per-vendor summary: aggregates
// grouped by canonical key, hours summed, monetary totals and detail rows
// discarded. Blacklisted keys and zero-hour groups are excluded — this is
// a summary view and must not show placeholder rows. Uses the same
// canonicalizer as MergeCanonical, which keeps a vendor's hours here equal
// to its canonical group's hours in the full view.
func HoursByVendor(aggs []core.VendorAggregate, c *normalize.Canonicalizer) []core.HoursEntry {
	index := make(map[string]int)
	var out []core.HoursEntry

	for _, agg := range aggs {
		key := c.Canonicalize(agg.Fornecedor)
		if c.Blacklisted(key) {
			continue
		}
		if agg.TotalHoras == 0 {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.HoursEntry{Fornecedor: key})
		}
		out[i].TotalHoras += agg.TotalHoras
	}
	return out
}
