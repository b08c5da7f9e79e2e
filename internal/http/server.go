// Package http serves the JSON planning API and the chat bridge to the
// agent. Callers select their planning session with the X-Session-ID
// header; requests without one share the default session.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"giftplanner/internal/amqp"
	"giftplanner/internal/assistant"
	"giftplanner/internal/dates"
	"giftplanner/internal/log"
	"giftplanner/internal/session"
	"giftplanner/internal/store"
)

// SessionHeader carries the caller's planning session key.
const SessionHeader = "X-Session-ID"

type Server struct {
	http.Server
	sessions     *session.Manager
	assistant    *assistant.Assistant
	publisher    *amqp.Client
	clock        dates.Clock
	logger       *log.Logger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. The assistant and publisher may be nil; chat then responds 503 and
// reminder events are skipped.
func NewServer(addr string, sessions *session.Manager, asst *assistant.Assistant, publisher *amqp.Client, clock dates.Clock, requestsPerMinute int, logger *log.Logger) *Server {
	if clock == nil {
		clock = dates.RealClock{}
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		sessions:    sessions,
		assistant:   asst,
		publisher:   publisher,
		clock:       clock,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(requestsPerMinute),
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.withMiddleware(s.handleChat))

	mux.HandleFunc("POST /api/v1/recipients", s.withMiddleware(s.handleCreateRecipient))
	mux.HandleFunc("GET /api/v1/recipients", s.withMiddleware(s.handleListRecipients))
	mux.HandleFunc("GET /api/v1/recipients/search", s.withMiddleware(s.handleSearchRecipients))
	mux.HandleFunc("PATCH /api/v1/recipients/{id}", s.withMiddleware(s.handleUpdateRecipient))
	mux.HandleFunc("POST /api/v1/recipients/{id}/gifts", s.withMiddleware(s.handleRecordGift))

	mux.HandleFunc("POST /api/v1/occasions", s.withMiddleware(s.handleCreateOccasion))
	mux.HandleFunc("GET /api/v1/occasions/upcoming", s.withMiddleware(s.handleUpcomingOccasions))
	mux.HandleFunc("POST /api/v1/occasions/{id}/complete", s.withMiddleware(s.handleCompleteOccasion))

	mux.HandleFunc("PUT /api/v1/budget", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("GET /api/v1/budget", s.withMiddleware(s.handleBudgetStatus))
	mux.HandleFunc("GET /api/v1/budget/allocation", s.withMiddleware(s.handleBudgetAllocation))
	mux.HandleFunc("POST /api/v1/expenses", s.withMiddleware(s.handleRecordExpense))

	mux.HandleFunc("GET /api/v1/stats", s.withMiddleware(s.handleStats))

	return s
}

// storeFrom resolves the planning store for the request's session header.
func (s *Server) storeFrom(r *http.Request) *store.Store {
	return s.sessions.For(r.Header.Get(SessionHeader))
}

// sessionKey returns the effective session key for the request.
func sessionKey(r *http.Request) string {
	if key := r.Header.Get(SessionHeader); key != "" {
		return key
	}
	return session.DefaultKey
}

// withMiddleware adds rate limiting, request IDs, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Success: false,
				Error:   "rate_limited",
				Message: "Rate limit exceeded. Please try again later.",
			})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		log.NewStructuredLogger(reqLogger).LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, sessionKey(r))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "gift-planning-assistant",
		"sessions": s.sessions.Len(),
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
