package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/middleware"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// getTenantID validates the :tenant path parameter. On failure it writes a 400
// and returns "".
func getTenantID(c *gin.Context) string {
	tid := c.Param("tenant")

	if err := models.ValidateTenantID(tid); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return ""
	}

	return tid
}

// getPlatform parses a required platform from the path or query.
func getPlatform(c *gin.Context, raw string) (models.Platform, bool) {
	p, err := models.ParsePlatform(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return "", false
	}

	return p, true
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if name := c.GetString(middleware.ClientKey); name != "" {
			fields["api_client"] = name
		}
		if tid := c.Param("tenant"); tid != "" {
			fields["tenant_id"] = tid
		}
		log.WithFields(fields).Info("request")
	}
}

// Pagination bounds for list endpoints.
const (
	defaultPaginationLimit = 100
	maxPaginationLimit     = 1000
	maxPaginationOffset    = 100000
)

// parseLimit coerces invalid or non-positive values to the default.
func parseLimit(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultPaginationLimit
	}

	if v > maxPaginationLimit {
		return maxPaginationLimit
	}

	return v
}

func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	if v > maxPaginationOffset {
		return maxPaginationOffset
	}

	return v
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

// parseTimeBound reads an audit range bound given as RFC3339 or as a UTC date.
// A date used as the upper bound covers that whole day. Empty or unparsable
// values mean no bound.
func parseTimeBound(raw string, upper bool) *time.Time {
	if raw == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}

	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil
	}
	if upper {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return &day
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("id exceeds maximum length of 255")
	}
	return nil
}
