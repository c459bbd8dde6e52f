package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"imagecraft/internal/apikey"
	"imagecraft/internal/infra"
	"imagecraft/internal/metrics"
)

type apiKeyContextKey struct{}

// KeyValidator resolves a presented key. *apikey.Repository satisfies it.
type KeyValidator interface {
	Validate(ctx context.Context, key string) (apikey.Record, error)
}

// APIKey authenticates callers by Authorization: Bearer <key> or X-API-Key
// and enforces the key's per-minute allowance when a limiter is given.
func APIKey(keys KeyValidator, limiter KeyLimiter, logger *infra.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := apikey.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = strings.TrimSpace(r.Header.Get("X-API-Key"))
			}
			if token == "" {
				metrics.RecordAPIKey("auth", "missing")
				writeJSONError(w, http.StatusUnauthorized, "Missing Authorization: Bearer <API_KEY>")
				return
			}

			rec, err := keys.Validate(r.Context(), token)
			switch {
			case errors.Is(err, apikey.ErrDisabled):
				metrics.RecordAPIKey("auth", "disabled")
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			case errors.Is(err, apikey.ErrInvalidKey):
				metrics.RecordAPIKey("auth", "invalid")
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			case err != nil:
				metrics.RecordAPIKey("auth", "error")
				logger.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("api key lookup failed")
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			if limiter != nil {
				ok, retry, err := limiter.Allow(r.Context(), rec.ID, rec.RateLimitPerMinute)
				if err != nil {
					// Fail open: a limiter outage must not take the API down.
					logger.Warn().Err(err).Str("key_prefix", rec.Prefix).Msg("api key rate limiter unavailable")
				} else if !ok {
					metrics.RecordAPIKey("auth", "rate_limited")
					tooManyRequests(w, retry)
					return
				}
			}

			metrics.RecordAPIKey("auth", "ok")
			ctx := context.WithValue(r.Context(), apiKeyContextKey{}, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFromContext returns the authenticated key record, if any.
func APIKeyFromContext(ctx context.Context) (apikey.Record, bool) {
	rec, ok := ctx.Value(apiKeyContextKey{}).(apikey.Record)
	return rec, ok
}
