package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budgetbook/internal/auth"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
)

type Server struct {
	http.Server

	months  *services.MonthService
	savings *services.SavingService
	store   *storage.Store
	tokens  *auth.TokenService

	username string
	password string
}

// NewServer configures the router and returns a ready-to-run server. Every
// route except /login sits behind the bearer-token middleware.
func NewServer(addr string, months *services.MonthService, savings *services.SavingService, store *storage.Store, tokens *auth.TokenService, username, password string) *Server {
	s := &Server{
		months:   months,
		savings:  savings,
		store:    store,
		tokens:   tokens,
		username: username,
		password: password,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.withRequestLog)

	r.Post("/login", s.handleLogin)

	r.Route("/months", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListMonths)
		r.Post("/", s.handleCreateMonth)
		r.Post("/update-default/{id}", s.handleSetDefaultMonth)
		r.Get("/{slug}", s.handleGetMonthBySlug)
		r.Put("/{id}", s.handleUpdateMonth)
		r.Delete("/{id}", s.handleDeleteMonth)
		r.Post("/{id}/budget", s.handleAddLineItem)
		r.Put("/{id}/budget/{itemId}", s.handleUpdateLineItem)
		r.Put("/{id}/update", s.handleUpdateBalance)
		r.Put("/{id}/toggleclose", s.handleToggleClose)
		r.Delete("/{id}/income/{itemId}", s.handleRemoveIncomeItem)
		r.Delete("/{id}/expense/{itemId}", s.handleRemoveBudgetItem)
	})

	r.Route("/savings", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListSavings)
		r.Post("/", s.handleCreateSaving)
		r.Put("/{id}", s.handleUpdateSaving)
		r.Delete("/{id}", s.handleDeleteSaving)
		r.Post("/{id}/contributors", s.handleAddContributor)
		r.Put("/{id}/contributors/{contributorId}", s.handleUpdateContributor)
		r.Delete("/{id}/contributors/{contributorId}", s.handleRemoveContributor)
		r.Post("/{id}/spendings", s.handleAddSpending)
		r.Put("/{id}/spendings/{spendingId}", s.handleUpdateSpending)
		r.Delete("/{id}/spendings/{spendingId}", s.handleRemoveSpending)
	})

	r.Route("/defaults", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleGetTemplate)
		r.Post("/", s.handleAppendTemplateItem)
		r.Put("/{id}", s.handleUpdateTemplateItem)
		r.Delete("/income/{id}", s.handleRemoveTemplateIncome)
		r.Delete("/expense/{id}", s.handleRemoveTemplateBudget)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	s.Server = http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// requireAuth gates a subtree behind a bearer token. A missing or malformed
// header and a bad token produce distinct 401 bodies, matching what clients
// already expect.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized access")
			return
		}
		if err := s.tokens.Verify(parts[1]); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestLog adds a request ID and start/completion logging.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
