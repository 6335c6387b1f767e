package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Rejected requests take at least this long, whatever the lookup cost.
const authTimingFloor = 50 * time.Millisecond

// ClientKey is the gin context key holding the authenticated client name.
const ClientKey = "client"

// ClientLookup resolves an API key to the name of the client that owns it.
type ClientLookup interface {
	GetClientByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// AuthMiddleware admits requests carrying a known Bearer API key and stores
// the client name under ClientKey. guard may be nil to disable lockout.
func AuthMiddleware(lookup ClientLookup, log *logrus.Logger, guard *FailureGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if guard != nil && guard.IsBlocked(ip) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		deadline := time.Now().Add(authTimingFloor)
		reject := func(message string) {
			respondError(c, http.StatusUnauthorized, "unauthorized", message)
			time.Sleep(time.Until(deadline))
		}

		apiKey, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject("missing or invalid authorization header")
			return
		}

		client, err := lookup.GetClientByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"client_ip":  ip,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"key_prefix": keyPrefix(apiKey),
			}).Warn("auth.failed")

			if guard != nil {
				guard.RecordFailure(ip)
			}
			reject("invalid api key")
			return
		}

		if guard != nil {
			guard.Reset(ip)
		}

		c.Set(ClientKey, client)
		c.Next()
	}
}

// bearerToken returns the credential of an "Authorization: Bearer <key>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// keyPrefix keeps enough of a key to correlate log lines without leaking it.
func keyPrefix(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[:4] + "..."
}
