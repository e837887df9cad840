// Package core holds the domain model for vendor billing consolidation.
//
// This file centralizes the tolerant column lookup and numeric coercion
// applied to heterogeneous source spreadsheets. Source files disagree on
// header casing and naming, so every read goes through a prioritized list
// of known column variants instead of positional access.
package core

import (
	"strconv"
	"strings"
)

// Known column-name variants, in lookup priority order.
var (
	vendorColumns   = []string{"Fornecedor", "fornecedor", "FORNECEDOR"}
	monetaryColumns = []string{"Total", "Valor total"}
	hoursColumns    = []string{"Horas", "hora", "HH", "total_horas"}
)

// MalformedCell records a cell that could not be coerced to a number and was
// defaulted to zero. Callers should log these: silent zero-defaulting hides
// data-quality problems in the source file.
type MalformedCell struct {
	Column string
	Value  string
}

// VendorName resolves the vendor name from the row, falling back to
// UnknownVendorKey when every variant is empty.
func (r RawRow) VendorName() string {
	for _, col := range vendorColumns {
		if v := strings.TrimSpace(r[col]); v != "" {
			return v
		}
	}
	return UnknownVendorKey
}

// Monetary resolves the row's monetary value from the Total/Valor total
// variants. The first variant that yields a nonzero number wins. Cells that
// fail coercion are reported and count as zero.
func (r RawRow) Monetary() (float64, []MalformedCell) {
	return r.resolveNumber(monetaryColumns)
}

// Hours resolves the row's hour count from the hour column variants, with
// the same fallthrough and zero-default behavior as Monetary.
func (r RawRow) Hours() (float64, []MalformedCell) {
	return r.resolveNumber(hoursColumns)
}

func (r RawRow) resolveNumber(columns []string) (float64, []MalformedCell) {
	var malformed []MalformedCell
	for _, col := range columns {
		raw := strings.TrimSpace(r[col])
		if raw == "" {
			continue
		}
		n, err := ParseNumber(raw)
		if err != nil {
			malformed = append(malformed, MalformedCell{Column: col, Value: raw})
			continue
		}
		if n != 0 {
			return n, malformed
		}
	}
	return 0, malformed
}

// ParseNumber coerces a spreadsheet cell to a float64. It tolerates the
// Brazilian formats seen in source files: "R$" prefixes, non-breaking
// spaces, thousand separators, decimal commas and parenthesized negatives.
//
// Examples:
//
//	ParseNumber("1.234,56")    -> 1234.56
//	ParseNumber("R$ 1234.56") -> 1234.56
//	ParseNumber("(12,5)")      -> -12.5
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, strconv.ErrSyntax
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimPrefix(s, "-")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal one.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}
