package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
)

type contextKey string

const (
	requestIDKey  contextKey = "requestID"
	queryTraceKey contextKey = "queryTrace"
)

// queryTrace is filled by the handlers with what they did to the query, for
// the request log line.
type queryTrace struct {
	set         bool
	query       string
	cursor      int
	state       autocomplete.State
	hasState    bool
	action      string
	suggestions int
	valid       bool
}

// traceQuery records the query and cursor a handler works on.
func traceQuery(ctx context.Context, text string, cursor int, valid bool) *queryTrace {
	trace, ok := ctx.Value(queryTraceKey).(*queryTrace)
	if !ok {
		return &queryTrace{}
	}
	trace.set = true
	trace.query = text
	trace.cursor = cursor
	trace.valid = valid
	return trace
}

func (t *queryTrace) result(res autocomplete.Result) {
	t.state = res.State
	t.hasState = true
	t.suggestions = len(res.Suggestions.Items)
}

func (t *queryTrace) attrs() []any {
	if !t.set {
		return nil
	}
	attrs := []any{"query", t.query, "cursor", t.cursor, "valid", t.valid}
	if t.hasState {
		attrs = append(attrs, "state", t.state.String(), "suggestions", t.suggestions)
	}
	if t.action != "" {
		attrs = append(attrs, "action", t.action)
	}
	return attrs
}

// requestIDMiddleware adds a unique request ID and an empty query trace to
// the context of each request. A valid ID sent by the client is kept.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, queryTraceKey, &queryTrace{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter is a wrapper for http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs details about each request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		trace, _ := r.Context().Value(queryTraceKey).(*queryTrace)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			level = slog.LevelError
		case rw.statusCode == http.StatusUnprocessableEntity:
			level = slog.LevelWarn
		}

		attrs := []any{
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"statusCode", rw.statusCode,
			"duration", time.Since(start).String(),
		}
		if trace != nil {
			attrs = append(attrs, trace.attrs()...)
		}
		s.logger.Log(r.Context(), level, "request handled", attrs...)
	})
}

// recoveryMiddleware recovers from panics and returns a 500 error.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				requestID, _ := r.Context().Value(requestIDKey).(string)
				s.logger.Error("recovered from panic", "err", err, "requestID", requestID)
				s.writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "The server encountered a problem")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers to the response.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// chainMiddleware applies a list of middleware to a handler.
func (s *Server) chainMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
