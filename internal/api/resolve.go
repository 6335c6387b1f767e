package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxResolveURLLen = 2048

// ResolveHandler serves link resolution.
type ResolveHandler struct {
	svc ResolveService
	log *logrus.Logger
}

// NewResolveHandler creates a ResolveHandler.
func NewResolveHandler(svc ResolveService, log *logrus.Logger) *ResolveHandler {
	return &ResolveHandler{svc: svc, log: log}
}

// Resolve handles GET /servers/:tenant/resolve?platform=&url=.
func (h *ResolveHandler) Resolve(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	platform, ok := getPlatform(c, c.Query("platform"))
	if !ok {
		return
	}

	rawURL := c.Query("url")
	if rawURL == "" || len(rawURL) > maxResolveURLLen {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "url is required and must be at most 2048 characters")
		return
	}

	res, err := h.svc.Resolve(c.Request.Context(), tenantID, platform, rawURL)
	if err != nil {
		respondServiceError(c, h.log, "rule.resolve", err)
		return
	}

	c.JSON(http.StatusOK, res)
}
