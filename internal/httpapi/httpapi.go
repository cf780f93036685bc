package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/service"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// DigestRunner produces the daily digest on demand and remembers the last one.
type DigestRunner interface {
	RunNow(ctx context.Context) (domain.DailyDigest, error)
	Latest() (domain.DailyDigest, bool)
}

type API struct {
	service       *service.Service
	auth          *AuthManager
	digests       DigestRunner
	allowedOrigin string
	loginLimiter  *attemptLimiter
	logger        *zap.Logger
}

type Options struct {
	AllowedOrigin string
	Digests       DigestRunner
	Logger        *zap.Logger
}

func New(svc *service.Service, auth *AuthManager, opts Options) *API {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	return &API{
		service:       svc,
		auth:          auth,
		digests:       opts.Digests,
		allowedOrigin: opts.AllowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		logger:        opts.Logger,
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("/api/v1/paddy-intakes", a.requireAuth(a.handleIntakes))
	mux.HandleFunc("/api/v1/paddy-availability", a.requireAuth(a.handlePaddyAvailability))
	mux.HandleFunc("/api/v1/rice-batches", a.requireAuth(a.handleBatches))
	mux.HandleFunc("/api/v1/rice-batches/{id}", a.requireAuth(a.handleBatch))

	mux.HandleFunc("/api/v1/byproducts/productions", a.requireAuth(a.handleProductions))
	mux.HandleFunc("/api/v1/byproducts/unprocessed-batches", a.requireAuth(a.handleUnprocessedBatches))
	mux.HandleFunc("/api/v1/byproducts/stock", a.requireAuth(a.handleByProductStock))
	mux.HandleFunc("/api/v1/byproducts/sales", a.requireAuth(a.handleSales))
	mux.HandleFunc("/api/v1/byproducts/sales/{id}", a.requireAuth(a.handleSale))
	mux.HandleFunc("/api/v1/byproducts/sales/{id}/payments", a.requireAuth(a.handleSalePayments))

	mux.HandleFunc("/api/v1/electricity/readings", a.requireAuth(a.handleReadings))
	mux.HandleFunc("/api/v1/electricity/live", a.requireAuth(a.handleLiveReading))
	mux.HandleFunc("/api/v1/electricity/estimate", a.requireAuth(a.handleBillEstimate))
	mux.HandleFunc("/api/v1/electricity/import", a.requireAuth(a.handleBillImport))

	mux.HandleFunc("/api/v1/hamali/rates", a.requireAuth(a.handleHamaliRates))
	mux.HandleFunc("/api/v1/hamali/work", a.requireAuth(a.handleHamaliWork))
	mux.HandleFunc("/api/v1/hamali/work/{id}", a.requireAuth(a.handleHamaliWorkEntry))
	mux.HandleFunc("/api/v1/hamali/payments", a.requireAuth(a.handleHamaliPayments))
	mux.HandleFunc("/api/v1/hamali/summary", a.requireAuth(a.handleHamaliSummary))
	mux.HandleFunc("/api/v1/salaries", a.requireAuth(a.handleSalaries))
	mux.HandleFunc("/api/v1/salaries/{id}/payments", a.requireAuth(a.handleSalaryPayment))

	mux.HandleFunc("/api/v1/reconciliations", a.requireAuth(a.handleReconciliations))
	mux.HandleFunc("/api/v1/reconciliations/{key}", a.requireAuth(a.handleReconciliation))
	mux.HandleFunc("/api/v1/reconciliations/{key}/reconcile", a.requireAuth(a.handleReconcile))
	mux.HandleFunc("/api/v1/reconciliations/{key}/document", a.requireAuth(a.handleReconciliationDocument))
	mux.HandleFunc("/api/v1/gunny-dispatches", a.requireAuth(a.handleGunnyDispatches))
	mux.HandleFunc("/api/v1/gunny-dispatches/{id}/acknowledgement", a.requireAuth(a.handleGunnyAcknowledgement))
	mux.HandleFunc("/api/v1/gunny-dispatches/{id}/photo", a.requireAuth(a.handleGunnyPhoto))

	mux.HandleFunc("/api/v1/consignments", a.requireAuth(a.handleConsignments))
	mux.HandleFunc("/api/v1/packaging/movements", a.requireAuth(a.handlePackagingMovements))
	mux.HandleFunc("/api/v1/packaging/levels", a.requireAuth(a.handlePackagingLevels))
	mux.HandleFunc("/api/v1/summary", a.requireAuth(a.handleSummary))
	mux.HandleFunc("/api/v1/bottleneck", a.requireAuth(a.handleBottleneck))
	mux.HandleFunc("/api/v1/digest", a.requireAuth(a.handleDigest))
	mux.HandleFunc("/api/v1/exports/workbook", a.requireAuth(a.handleWorkbookExport))
	mux.HandleFunc("/api/v1/exports/{name}", a.requireAuth(a.handleTableExport))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			a.writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			a.writeError(w, http.StatusUnauthorized, err)
			return
		}
		if actor.Role != operatorRole {
			a.writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			limit := int64(maxJSONBody)
			if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/") {
				limit = maxUploadBody
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(startedAt)),
		)
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

// readUpload returns the named multipart file's original name and content.
func readUpload(r *http.Request, field string) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%s file is empty", field)
	}
	return header.Filename, data, nil
}

func parsePositiveInt(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func (a *API) writeMethodNotAllowed(w http.ResponseWriter) {
	a.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeServiceError maps domain errors onto HTTP statuses.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	var shortfall *domain.ShortfallError
	switch {
	case errors.As(err, &shortfall):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     shortfall.Error(),
			"resource":  shortfall.Resource,
			"unit":      shortfall.Unit,
			"available": shortfall.Available,
			"required":  shortfall.Required,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		a.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNotFound):
		a.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrConflict):
		a.writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrExceedsBalance):
		a.writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrPersistence):
		a.writeError(w, http.StatusServiceUnavailable, err)
	default:
		a.writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log.
	msg := err.Error()
	if status >= 500 {
		a.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
		msg = "internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "storage unavailable, change was not saved"
		}
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFile(w http.ResponseWriter, contentType string, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
