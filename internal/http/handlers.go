package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"fornecedores/internal/core"
	"fornecedores/internal/query"
	"fornecedores/internal/services"
)

// handleUpload ingests one .xlsx workbook and replaces the vendor
// collection. Duplicate content answers 409 with the prior upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "campo 'file' ausente ou inválido")
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		writeError(w, http.StatusUnprocessableEntity, "apenas arquivos .xlsx são aceitos")
		return
	}

	upload, err := s.ingestion.IngestWorkbook(r.Context(), file, header.Filename)
	switch {
	case services.IsDuplicate(err):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "arquivo já processado",
			"upload": upload,
		})
		return
	case errors.Is(err, core.ErrMissingSheet):
		writeError(w, http.StatusUnprocessableEntity, "planilha de detalhes não encontrada no arquivo")
		return
	case errors.Is(err, core.ErrNoRecords):
		writeError(w, http.StatusUnprocessableEntity, "nenhum registro de fornecedor encontrado na planilha")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Upload ingestion failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "falha ao processar o arquivo")
		return
	}

	s.listCache.Purge()
	s.hoursCache.Purge()

	writeJSON(w, http.StatusCreated, upload)
}

// handleFornecedores lists canonical vendor records with optional filters,
// sort and skip/limit pagination.
func (s *Server) handleFornecedores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	filters, sortKey, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	skip, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := listCacheKey(filters, sortKey)
	records, cached := s.listCache.Get(key)
	if !cached {
		records, err = s.vendors.List(r.Context(), filters, sortKey)
		if err != nil {
			slog.ErrorContext(r.Context(), "Vendor list failed", "error", err)
			writeError(w, http.StatusInternalServerError, "falha ao consultar fornecedores")
			return
		}
		s.listCache.Set(key, records)
	}

	page := paginate(records, skip, limit)
	items := make([]core.CanonicalRecord, len(page))
	for i, rec := range page {
		items[i] = rec
		items[i].Fornecedor = core.DisplayName(rec.Fornecedor)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":        len(records),
		"skip":         skip,
		"limit":        limit,
		"fornecedores": items,
	})
}

// handleHoras returns the hours-only view, descending by hours.
func (s *Server) handleHoras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	entries, cached := s.hoursCache.Get("horas")
	if !cached {
		var err error
		entries, err = s.vendors.Hours(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Hours view failed", "error", err)
			writeError(w, http.StatusInternalServerError, "falha ao consultar horas por fornecedor")
			return
		}
		s.hoursCache.Set("horas", entries)
	}

	writeJSON(w, http.StatusOK, map[string]any{"fornecedores": entries})
}

// handleMelhor returns the vendor with the highest consolidated total.
func (s *Server) handleMelhor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	best, err := s.vendors.Best(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Best vendor lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "falha ao consultar o melhor fornecedor")
		return
	}
	if best == nil {
		writeError(w, http.StatusNotFound, "nenhum fornecedor registrado")
		return
	}

	out := *best
	out.Fornecedor = core.DisplayName(best.Fornecedor)
	writeJSON(w, http.StatusOK, out)
}

// handleResumo returns the per-vendor per-profile breakdown.
func (s *Server) handleResumo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	summary, err := s.vendors.ProfileSummary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "falha ao montar o resumo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resumo": summary})
}

// handleUploads lists recent upload metadata, most recent first.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
		return
	}

	limit, err := parseLimit(r, 50, 200)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uploads, err := s.ingestion.Uploads(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Upload log listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "falha ao consultar uploads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

func listCacheKey(f query.Filters, sortKey query.Sort) string {
	var b strings.Builder
	b.WriteString("f=")
	b.WriteString(strings.ToLower(f.Fornecedor))
	b.WriteString("|s=")
	b.WriteString(string(sortKey))
	for _, bound := range []*float64{f.ValorMin, f.ValorMax, f.HorasMin, f.HorasMax} {
		b.WriteString("|")
		if bound != nil {
			b.WriteString(formatBound(*bound))
		}
	}
	return b.String()
}
