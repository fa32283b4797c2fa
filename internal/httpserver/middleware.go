package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domain "userauth/backend/internal/domain/auth"
	"userauth/backend/internal/logging"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

type ctxKeyClaims struct{}

type ctxKeyRequestID struct{}

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		log.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("size", recorder.size),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// withRecovery keeps a panicking handler scoped to its own request.
func withRecovery(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("handler panic",
					slog.String("request_id", requestIDFromContext(r.Context())),
					slog.Any("panic", rec),
				)
				writeError(w, http.StatusInternalServerError, "request failed", errInternalFailure)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && isOriginAllowed(origin, allowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" {
			return true
		}
		if strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}

// authMiddleware resolves the bearer token into claims. Any failure ends the
// request with the uniform unauthorized response.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.claimsFromRequest(r)
		if err != nil {
			s.logRejection(r, err)
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole wraps an authenticated handler with a role gate.
func (s *Server) requireRole(role domain.UserRole, next http.Handler) http.Handler {
	return s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFromContext(r.Context())
		if err := s.authService.Authorize(claims, role); err != nil {
			s.logRejection(r, err)
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (s *Server) claimsFromRequest(r *http.Request) (*domain.Claims, error) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.authService.Authenticate(r.Context(), token)
}

func (s *Server) logRejection(r *http.Request, err error) {
	s.log.LogAttrs(r.Context(), slog.LevelDebug, "request rejected",
		slog.String("request_id", requestIDFromContext(r.Context())),
		slog.String("path", r.URL.Path),
		logging.Err(err),
	)
}

func claimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims{}).(*domain.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
