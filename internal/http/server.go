// Package http exposes the vendor collection as a JSON API: ingestion via
// multipart upload, consolidated listings with filters and sorts, and the
// derived hours/summary views.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fornecedores/internal/cache"
	"fornecedores/internal/core"
	applog "fornecedores/internal/log"
	"fornecedores/internal/services"
)

type Server struct {
	http.Server
	ingestion      *services.IngestionService
	vendors        *services.VendorService
	rateLimiter    *rateLimiter
	maxUploadBytes int64

	// Query results are cached between ingestions; an upload purges both.
	listCache  *cache.LRUCache[[]core.CanonicalRecord]
	hoursCache *cache.LRUCache[[]core.HoursEntry]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, maxUploadBytes int64, ingestion *services.IngestionService, vendors *services.VendorService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.RequestLogger(applog.New(applog.Config{Component: "http"}), mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ingestion:        ingestion,
		vendors:          vendors,
		rateLimiter:      newRateLimiter(),
		maxUploadBytes:   maxUploadBytes,
		listCache:        newListCache(),
		hoursCache:       newHoursCache(),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/upload", s.withSecurityHeaders(s.handleUpload))
	mux.HandleFunc("/uploads", s.withSecurityHeaders(s.handleUploads))
	mux.HandleFunc("/fornecedores", s.withSecurityHeaders(s.handleFornecedores))
	mux.HandleFunc("/fornecedores/horas", s.withSecurityHeaders(s.handleHoras))
	mux.HandleFunc("/fornecedores/melhor", s.withSecurityHeaders(s.handleMelhor))
	mux.HandleFunc("/resumo", s.withSecurityHeaders(s.handleResumo))

	return s
}

func newListCache() *cache.LRUCache[[]core.CanonicalRecord] {
	return cache.NewLRUCache[[]core.CanonicalRecord](100, 5*time.Minute)
}

func newHoursCache() *cache.LRUCache[[]core.HoursEntry] {
	return cache.NewLRUCache[[]core.HoursEntry](10, 5*time.Minute)
}

// startCacheCleanup runs periodic cleanup for both caches
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			listCleaned := s.listCache.CleanExpired()
			hoursCleaned := s.hoursCache.CleanExpired()
			if listCleaned > 0 || hoursCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"list_entries_removed", listCleaned,
					"hours_entries_removed", hoursCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers and rate limiting. Request
// completion logging happens in the outer RequestLogger middleware.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := clientAddress(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		// Uploads are the only expensive write path; rate limit them.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "limite de requisições excedido, tente novamente em instantes")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

type requestIDKey struct{}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
