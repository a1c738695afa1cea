package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/logger"
)

type ctxKey int

const identityKey ctxKey = iota

// identityFrom returns the authenticated user put in the context by
// authenticate. Handlers behind authenticate can rely on it being set.
func identityFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(identityKey).(uuid.UUID)
	return id
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.identity.Extract(r.Header.Get("Authorization"), h.now())
		if err != nil {
			countAuthFailure(err)
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument logs every request and records its latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		observeResponse(r.Method, route, status, elapsed)

		logger.Info("http request",
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", elapsed),
		)
	})
}

// recoverer answers 500 for a panicking handler unless the response has
// already started; then the status on the wire stands.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(middleware.WrapResponseWriter)
		if !ok {
			ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("requestID", middleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				if ww.Status() == 0 {
					writeError(ww, r, errors.Errorf("panic: %v", rec))
				}
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
