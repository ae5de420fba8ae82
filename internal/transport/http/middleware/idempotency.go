package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"paycalc/internal/platform/cache"
	"paycalc/internal/transport/http/api"
)

const IdempotencyHeader = "Idempotency-Key"

type storedResponse struct {
	RequestHash string `json:"requestHash"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

func RequestHash(method, path string, payload []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method + " " + path + "\n"))
	sum.Write(payload)
	return hex.EncodeToString(sum.Sum(nil))
}

// Idempotency replays the stored response when a POST repeats an
// Idempotency-Key with the same body, and answers 409 when the body differs.
// Responses with status >= 500 are not stored.
func Idempotency(store cache.Store, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if store == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())
			if len(key) > 255 {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", reqID)
				return
			}

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			hash := RequestHash(r.Method, r.URL.Path, payload)
			storeKey := "idem:" + GetSubject(r.Context()) + ":" + r.URL.Path + ":" + key

			if raw, ok, err := store.Get(r.Context(), storeKey); err != nil {
				logger.Warn("idempotency lookup failed", zap.Error(err), zap.String("requestId", reqID))
			} else if ok {
				var stored storedResponse
				if err := json.Unmarshal(raw, &stored); err == nil {
					if stored.RequestHash != hash {
						api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", reqID)
						return
					}
					if stored.ContentType != "" {
						w.Header().Set("Content-Type", stored.ContentType)
					}
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(stored.Status)
					_, _ = w.Write(stored.Body)
					return
				}
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= 500 {
				return
			}

			record, err := json.Marshal(storedResponse{
				RequestHash: hash,
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err != nil {
				return
			}
			if err := store.Set(r.Context(), storeKey, record, ttl); err != nil {
				logger.Warn("idempotency save failed", zap.Error(err), zap.String("requestId", reqID))
			}
		})
	}
}
