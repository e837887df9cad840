package core

import (
	"errors"
	"strings"
)

const (
	// UnknownVendorKey is the aggregation bucket for rows whose vendor cell
	// is empty. It is an internal grouping key, not a display label.
	UnknownVendorKey = "Desconhecido"

	// UnidentifiedVendorLabel is what end users see for vendors that could
	// not be identified. Kept separate from UnknownVendorKey on purpose:
	// aggregation key and display label are different concerns.
	UnidentifiedVendorLabel = "Fornecedor não identificado"
)

var (
	ErrMissingSheet    = errors.New("detail sheet not found in workbook")
	ErrNoRecords       = errors.New("no vendor records produced")
	ErrDuplicateUpload = errors.New("file already uploaded")
)

type (
	// RawRow is a single spreadsheet row keyed by column header. Cell values
	// are kept as raw text; missing cells are filled with the empty string.
	// Rows pass through untouched into an aggregate's detail list.
	RawRow map[string]string

	// VendorAggregate is the first-pass grouping: one entry per literal
	// vendor-name string seen in the source, in first-occurrence order.
	VendorAggregate struct {
		Fornecedor string   `json:"fornecedor"`
		Total      float64  `json:"total"`
		TotalHoras float64  `json:"total_horas"`
		Detalhes   []RawRow `json:"detalhes"`
	}

	// CanonicalRecord is the final grouping by canonical vendor key, the
	// unit served to queries. Fornecedor holds the first literal name
	// mapped into the group.
	CanonicalRecord struct {
		Fornecedor string   `json:"fornecedor"`
		Total      float64  `json:"total"`
		TotalHoras float64  `json:"total_horas"`
		Detalhes   []RawRow `json:"detalhes"`
	}

	// HoursEntry is one row of the hours-only summary view.
	HoursEntry struct {
		Fornecedor string  `json:"fornecedor"`
		TotalHoras float64 `json:"total_horas"`
	}
)

// DisplayName returns the human-readable form of a raw vendor name.
// Empty names and the "???" placeholder render as the unidentified label.
func DisplayName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "???" {
		return UnidentifiedVendorLabel
	}
	return s
}

// Clone returns a copy safe for merge seeding: the detail slice is copied
// so later mutation of the source aggregate cannot leak into a merged
// record. Individual rows are shared; they are never mutated.
func (v VendorAggregate) Clone() VendorAggregate {
	out := v
	out.Detalhes = append([]RawRow(nil), v.Detalhes...)
	return out
}
