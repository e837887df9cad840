// Package query filters and sorts consolidated vendor records. All
// operations are pure: inputs are never mutated and sorting returns a new
// slice, so callers may run queries concurrently against one snapshot.
package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fornecedores/internal/core"
)

// Filters are optional, conjunctive record predicates. Nil bounds are
// unset; set bounds are inclusive.
type Filters struct {
	Fornecedor string
	ValorMin   *float64
	ValorMax   *float64
	HorasMin   *float64
	HorasMax   *float64
}

// Sort selects the result order.
type Sort string

const (
	SortNone  Sort = ""      // insertion order, unchanged
	SortNome  Sort = "nome"  // ascending by display name, locale-aware
	SortValor Sort = "valor" // descending by total
	SortHoras Sort = "horas" // descending by hours
)

// ParseSort validates a caller-supplied sort key.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case SortNone, SortNome, SortValor, SortHoras:
		return Sort(s), nil
	}
	return SortNone, fmt.Errorf("invalid sort %q: must be one of nome, valor, horas", s)
}

// Apply filters the records (AND semantics) and orders the result. Ties
// under numeric sort keys keep their pre-sort relative order.
func Apply(records []core.CanonicalRecord, f Filters, s Sort) []core.CanonicalRecord {
	out := make([]core.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}

	switch s {
	case SortValor:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	case SortHoras:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalHoras > out[j].TotalHoras })
	case SortNome:
		// Vendor names are Brazilian Portuguese; collate accordingly. The
		// collator buffers internally, so build one per call.
		col := collate.New(language.BrazilianPortuguese)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(core.DisplayName(out[i].Fornecedor), core.DisplayName(out[j].Fornecedor)) < 0
		})
	}
	return out
}

func (f Filters) matches(rec core.CanonicalRecord) bool {
	if f.Fornecedor != "" {
		name := strings.ToLower(core.DisplayName(rec.Fornecedor))
		if !strings.Contains(name, strings.ToLower(f.Fornecedor)) {
			return false
		}
	}
	if f.ValorMin != nil && rec.Total < *f.ValorMin {
		return false
	}
	if f.ValorMax != nil && rec.Total > *f.ValorMax {
		return false
	}
	if f.HorasMin != nil && rec.TotalHoras < *f.HorasMin {
		return false
	}
	if f.HorasMax != nil && rec.TotalHoras > *f.HorasMax {
		return false
	}
	return true
}
