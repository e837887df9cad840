package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fornecedores/internal/query"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parseListQuery extracts filters and sort from the request query string.
func parseListQuery(r *http.Request) (query.Filters, query.Sort, error) {
	q := r.URL.Query()

	f := query.Filters{Fornecedor: strings.TrimSpace(q.Get("fornecedor"))}

	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"valorMin", &f.ValorMin},
		{"valorMax", &f.ValorMax},
		{"horasMin", &f.HorasMin},
		{"horasMax", &f.HorasMax},
	} {
		v, err := parseFloatParam(q.Get(p.name), p.name)
		if err != nil {
			return query.Filters{}, query.SortNone, err
		}
		*p.dst = v
	}

	sortKey, err := query.ParseSort(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return query.Filters{}, query.SortNone, err
	}

	return f, sortKey, nil
}

func parseFloatParam(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parâmetro %s inválido: %q não é um número", name, raw)
	}
	return &v, nil
}

// parsePagination extracts skip/limit, with defaults and an upper cap.
func parsePagination(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()

	skip = 0
	if v := strings.TrimSpace(q.Get("skip")); v != "" {
		skip, err = strconv.Atoi(v)
		if err != nil || skip < 0 {
			return 0, 0, fmt.Errorf("parâmetro skip inválido: %q", v)
		}
	}

	limit, err = parseLimit(r, defaultPageSize, maxPageSize)
	if err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func parseLimit(r *http.Request, def, max int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("parâmetro limit inválido: %q", v)
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return nil
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clientAddress extracts the client IP, considering proxies.
func clientAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
