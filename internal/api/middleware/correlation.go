package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// CorrelationID reads X-Correlation-ID from the incoming request,
// minting a UUID when the caller sent none. The id is stored on the
// request context and echoed in the response header, so a caller can
// correlate its request with server logs. For the websocket endpoint it
// also survives the upgrade: the realtime handler picks it up from the
// context and carries it on the session logger.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID stored by the middleware.
// Returns an empty string if the middleware was not applied.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}

// CorrelationLogger returns the logger with the request's correlation id
// attached, or the logger unchanged when the middleware was not applied.
func CorrelationLogger(ctx context.Context, logger *zap.Logger) *zap.Logger {
	id := GetCorrelationID(ctx)
	if id == "" {
		return logger
	}
	return logger.With(zap.String("correlation_id", id))
}
