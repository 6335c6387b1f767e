package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/middleware"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// RetentionHandler serves retention policy endpoints.
type RetentionHandler struct {
	svc RetentionService
	log *logrus.Logger
}

// NewRetentionHandler creates a RetentionHandler.
func NewRetentionHandler(svc RetentionService, log *logrus.Logger) *RetentionHandler {
	return &RetentionHandler{svc: svc, log: log}
}

// List handles GET /servers/:tenant/retention.
func (h *RetentionHandler) List(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	policies, err := h.svc.ListPolicies(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, h.log, "retention.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"policies": policies})
}

// Get handles GET /servers/:tenant/retention/:platform.
func (h *RetentionHandler) Get(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	platform, ok := getPlatform(c, c.Param("platform"))
	if !ok {
		return
	}

	policy, err := h.svc.GetPolicy(c.Request.Context(), tenantID, platform)
	if err != nil {
		respondServiceError(c, h.log, "retention.get", err)
		return
	}

	c.JSON(http.StatusOK, policy)
}

// Put handles PUT /servers/:tenant/retention/:platform. Absent fields are left unchanged.
func (h *RetentionHandler) Put(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	platform, ok := getPlatform(c, c.Param("platform"))
	if !ok {
		return
	}

	var patch models.PolicyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	policy, err := h.svc.UpsertPolicy(c.Request.Context(), middleware.ActorFrom(c), tenantID, platform, patch)
	if err != nil {
		respondServiceError(c, h.log, "retention.upsert", err)
		return
	}

	c.JSON(http.StatusOK, policy)
}
