package httpinterface

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	userIDHeader    = "X-User-Id"
	requestIDHeader = "X-Request-Id"
	bearerPrefix    = "Bearer "
)

type contextKey int

const userIDKey contextKey = iota

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// authenticate resolves the user identity of the request and stores it in
// the request context. In dev mode the X-User-Id header is handed to the
// verifier in place of the bearer token.
func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(userIDHeader))
		if !h.noAuth {
			token = r.Header.Get("Authorization")
			if !strings.HasPrefix(token, bearerPrefix) {
				log.Debug("http: missing bearer token")
				writeUnauthorized(w, "missing bearer token")
				return
			}
			token = strings.TrimPrefix(token, bearerPrefix)
		}

		userID, err := h.verifier.Verify(token)
		if err != nil {
			log.WithError(err).Debug("http: identity verification failed")
			writeUnauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) requireLocalWallets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.localWalletSvc == nil {
			writeErrorReply(w, http.StatusNotFound, "NotFound", "local wallets are not enabled")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Debug("http request")
	})
}
