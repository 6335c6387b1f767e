package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/models"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	svc AuditService
	log *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: log}
}

// Query handles GET /servers/:tenant/audit.
func (h *AuditHandler) Query(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	opts := models.AuditQueryOpts{
		Action: c.Query("action"),
		Since:  parseTimeBound(c.Query("since"), false),
		Until:  parseTimeBound(c.Query("until"), true),
		Limit:  parseLimit(c.Query("limit")),
		Offset: parseOffset(c.Query("offset")),
	}

	page, err := h.svc.QueryAudit(c.Request.Context(), tenantID, opts)
	if err != nil {
		respondServiceError(c, h.log, "audit.query", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Actions handles GET /servers/:tenant/audit/actions.
func (h *AuditHandler) Actions(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	actions, err := h.svc.ListActions(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, h.log, "audit.actions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// DeleteEntry handles DELETE /servers/:tenant/audit/:id.
func (h *AuditHandler) DeleteEntry(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "audit entry id must be a positive integer")
		return
	}

	if err := h.svc.SoftDeleteEntry(c.Request.Context(), tenantID, id); err != nil {
		respondServiceError(c, h.log, "audit.delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAll handles DELETE /servers/:tenant/audit.
func (h *AuditHandler) DeleteAll(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	deleted, err := h.svc.SoftDeleteAll(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, h.log, "audit.delete_all", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
