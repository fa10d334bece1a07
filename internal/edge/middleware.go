package edge

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/archivecast/podcaster/internal/apierr"
	"github.com/archivecast/podcaster/internal/catalog"
)

var tracer = otel.Tracer("speechcastd-edge")

// logEventMiddleware wraps every request in a span, logs one structured
// line per request once it completes, and appends a best-effort
// analytics event to the Catalog Store. Logging and event-append
// failures never affect the response.
func (h *handlers) logEventMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "http.request")
		defer span.End()
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		)
		r = r.WithContext(ctx)

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		span.SetAttributes(attribute.Int("http.status_code", ww.Status()))

		h.deps.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", duration.Milliseconds(),
			"request_id", chimiddleware.GetReqID(ctx),
		)

		data, _ := json.Marshal(map[string]string{"path": r.URL.Path, "method": r.Method})
		_ = h.deps.Store.AppendEvent(ctx, catalog.Event{
			EventType: "http_request",
			Data:      string(data),
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
	})
}

// requireAdmin gates mutating archive/model-refresh endpoints behind a
// JWT bearer token, but only when JWTSecret is configured — an unset
// secret means the operator has chosen not to require auth for these
// endpoints (e.g. a single-operator local deployment).
func (h *handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.deps.JWTSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		authz := r.Header.Get("Authorization")
		token := strings.TrimPrefix(authz, "Bearer ")
		if token == authz || token == "" {
			h.writeError(w, apierr.Unauthorized("missing bearer token", nil))
			return
		}

		_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(h.deps.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			h.writeError(w, apierr.Unauthorized("invalid token", err))
			return
		}

		next.ServeHTTP(w, r)
	})
}
