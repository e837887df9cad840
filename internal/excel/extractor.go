// Package excel extracts loosely-typed rows from vendor billing workbooks.
//
// Source files come from several teams and only the detail sheet name is
// stable enough to key on: it always contains "anexo 1" and "detalhes"
// (in some casing). Columns vary per file, so rows are returned as
// header-keyed maps rather than typed structs.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"fornecedores/internal/core"
)

// Extract opens a workbook, locates the detail sheet and returns its data
// rows. Returns core.ErrMissingSheet when no sheet name matches the
// required pattern.
func Extract(r io.Reader) ([]core.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := FindDetailSheet(f)
	if err != nil {
		return nil, err
	}
	return ExtractRows(f, sheet)
}

// FindDetailSheet returns the first sheet whose name contains both
// "anexo 1" and "detalhes", case-insensitively.
func FindDetailSheet(f *excelize.File) (string, error) {
	for _, name := range f.GetSheetList() {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "anexo 1") && strings.Contains(lower, "detalhes") {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: expected a sheet named like \"ANEXO 1 - Detalhes Técnicos\"", core.ErrMissingSheet)
}

// ExtractRows reads the sheet as records keyed by the header row. Missing
// trailing cells are filled with the empty string so every row exposes the
// full column set. Fully empty rows are skipped; header cells without text
// get positional fallback names.
func ExtractRows(f *excelize.File, sheet string) ([]core.RawRow, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := headerNames(rows[0])

	out := make([]core.RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if emptyRow(cells) {
			continue
		}
		row := make(core.RawRow, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func headerNames(cells []string) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		h := strings.TrimSpace(c)
		if h == "" {
			h = fmt.Sprintf("coluna_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
