package aggregate

import (
	"testing"

	"fornecedores/internal/core"
	"fornecedores/internal/normalize"
)

func TestByVendorGroupsLiteralNames(t *testing.T) {
	rows := []core.RawRow{
		{"Fornecedor": "Hitss", "Total": "100", "Horas": "8"},
		{"Fornecedor": "MJV", "Total": "200", "Horas": "16"},
		{"Fornecedor": "Hitss", "Total": "50", "Horas": "2"},
	}

	aggs := ByVendor(rows)
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates, want 2", len(aggs))
	}

	// First-occurrence order.
	if aggs[0].Fornecedor != "Hitss" || aggs[1].Fornecedor != "MJV" {
		t.Fatalf("unexpected order: %q, %q", aggs[0].Fornecedor, aggs[1].Fornecedor)
	}
	if aggs[0].Total != 150 || aggs[0].TotalHoras != 10 {
		t.Fatalf("Hitss totals = %v/%v, want 150/10", aggs[0].Total, aggs[0].TotalHoras)
	}
	if len(aggs[0].Detalhes) != 2 {
		t.Fatalf("Hitss details = %d, want 2", len(aggs[0].Detalhes))
	}
}

func TestByVendorKeepsLiteralVariantsSeparate(t *testing.T) {
	// "Hitss" and "HITTS" are the same supplier but different literal
	// strings; the first pass must not merge them.
	rows := []core.RawRow{
		{"Fornecedor": "Hitss", "Total": "100"},
		{"Fornecedor": "HITTS", "Total": "50"},
	}

	aggs := ByVendor(rows)
	if len(aggs) != 2 {
		t.Fatalf("got %d aggregates, want 2 distinct literal groups", len(aggs))
	}
}

func TestByVendorUnknownBucket(t *testing.T) {
	rows := []core.RawRow{
		{"Total": "30"},
		{"Fornecedor": "", "Total": "20"},
	}

	aggs := ByVendor(rows)
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1", len(aggs))
	}
	if aggs[0].Fornecedor != core.UnknownVendorKey {
		t.Fatalf("bucket = %q, want %q", aggs[0].Fornecedor, core.UnknownVendorKey)
	}
	if aggs[0].Total != 50 {
		t.Fatalf("Total = %v, want 50", aggs[0].Total)
	}
}

func TestByVendorMalformedCellCountsAsZero(t *testing.T) {
	rows := []core.RawRow{
		{"Fornecedor": "Atos", "Total": "sem valor", "Horas": "8"},
	}

	aggs := ByVendor(rows)
	if aggs[0].Total != 0 {
		t.Fatalf("Total = %v, want 0 for malformed cell", aggs[0].Total)
	}
	if aggs[0].TotalHoras != 8 {
		t.Fatalf("TotalHoras = %v, want 8", aggs[0].TotalHoras)
	}
}

func TestMergeCanonicalCollapsesVariants(t *testing.T) {
	aggs := []core.VendorAggregate{
		{Fornecedor: "Hitss", Total: 100, TotalHoras: 8, Detalhes: []core.RawRow{{"Fornecedor": "Hitss"}}},
		{Fornecedor: "MJV", Total: 300, TotalHoras: 24, Detalhes: []core.RawRow{{"Fornecedor": "MJV"}}},
		{Fornecedor: "HITTS", Total: 50, TotalHoras: 2, Detalhes: []core.RawRow{{"Fornecedor": "HITTS"}}},
	}

	records := MergeCanonical(aggs, normalize.NewDefault())
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	hitss := records[0]
	if hitss.Fornecedor != "Hitss" {
		t.Fatalf("display name = %q, want first-seen literal %q", hitss.Fornecedor, "Hitss")
	}
	if hitss.Total != 150 || hitss.TotalHoras != 10 {
		t.Fatalf("merged totals = %v/%v, want 150/10", hitss.Total, hitss.TotalHoras)
	}
	if len(hitss.Detalhes) != 2 {
		t.Fatalf("merged details = %d, want 2", len(hitss.Detalhes))
	}
}

func TestMergeCanonicalDoesNotMutateInput(t *testing.T) {
	detalhes := make([]core.RawRow, 0, 4)
	detalhes = append(detalhes, core.RawRow{"Fornecedor": "Hitss"})
	aggs := []core.VendorAggregate{
		{Fornecedor: "Hitss", Total: 100, Detalhes: detalhes},
		{Fornecedor: "HITTS", Total: 50, Detalhes: []core.RawRow{{"Fornecedor": "HITTS"}}},
	}

	_ = MergeCanonical(aggs, normalize.NewDefault())

	if len(aggs[0].Detalhes) != 1 {
		t.Fatalf("merge leaked into input aggregate: %d details", len(aggs[0].Detalhes))
	}
	if aggs[0].Total != 100 {
		t.Fatalf("merge mutated input total: %v", aggs[0].Total)
	}
}

func TestMergeCanonicalConservesTotals(t *testing.T) {
	aggs := ByVendor([]core.RawRow{
		{"Fornecedor": "Hitss", "Total": "100", "Horas": "8"},
		{"Fornecedor": "HITTS", "Total": "50", "Horas": "2"},
		{"Fornecedor": "Engineering", "Total": "70", "Horas": "5"},
		{"Fornecedor": "Engeering", "Total": "30", "Horas": "1"},
	})

	var inValor, inHoras float64
	for _, a := range aggs {
		inValor += a.Total
		inHoras += a.TotalHoras
	}

	var outValor, outHoras float64
	var details int
	for _, r := range MergeCanonical(aggs, normalize.NewDefault()) {
		outValor += r.Total
		outHoras += r.TotalHoras
		details += len(r.Detalhes)
	}

	if inValor != outValor || inHoras != outHoras {
		t.Fatalf("totals not conserved: in %v/%v, out %v/%v", inValor, inHoras, outValor, outHoras)
	}
	if details != 4 {
		t.Fatalf("detail rows not conserved: %d, want 4", details)
	}
}

func TestHoursByVendorExcludesNoiseAndZeroHours(t *testing.T) {
	aggs := []core.VendorAggregate{
		{Fornecedor: "Hitss", TotalHoras: 8},
		{Fornecedor: "Fornecedor", TotalHoras: 99},  // header remnant
		{Fornecedor: "Multivendor", TotalHoras: 10}, // noise token
		{Fornecedor: "Atos", TotalHoras: 0},         // zero hours dropped
		{Fornecedor: "HITTS", TotalHoras: 2},
	}

	entries := HoursByVendor(aggs, normalize.NewDefault())
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(entries), entries)
	}
	if entries[0].Fornecedor != "hitss" || entries[0].TotalHoras != 10 {
		t.Fatalf("entry = %+v, want hitss/10", entries[0])
	}
}

func TestHoursConsistencyWithFullView(t *testing.T) {
	c := normalize.NewDefault()
	aggs := ByVendor([]core.RawRow{
		{"Fornecedor": "Hitss", "Total": "100", "Horas": "8"},
		{"Fornecedor": "Global Hitss", "Total": "50", "Horas": "4"},
		{"Fornecedor": "MJV", "Total": "10", "Horas": "3"},
	})

	full := MergeCanonical(aggs, c)
	hours := HoursByVendor(aggs, c)

	byKey := make(map[string]float64)
	for _, rec := range full {
		byKey[c.Canonicalize(rec.Fornecedor)] = rec.TotalHoras
	}
	for _, e := range hours {
		if byKey[e.Fornecedor] != e.TotalHoras {
			t.Fatalf("hours view %q = %v, full view has %v", e.Fornecedor, e.TotalHoras, byKey[e.Fornecedor])
		}
	}
}

func TestByVendorDeterministicOrder(t *testing.T) {
	rows := []core.RawRow{
		{"Fornecedor": "C", "Total": "1"},
		{"Fornecedor": "A", "Total": "1"},
		{"Fornecedor": "B", "Total": "1"},
		{"Fornecedor": "A", "Total": "1"},
	}

	for i := 0; i < 10; i++ {
		aggs := ByVendor(rows)
		if aggs[0].Fornecedor != "C" || aggs[1].Fornecedor != "A" || aggs[2].Fornecedor != "B" {
			t.Fatalf("run %d: order %q,%q,%q, want C,A,B", i, aggs[0].Fornecedor, aggs[1].Fornecedor, aggs[2].Fornecedor)
		}
	}
}
