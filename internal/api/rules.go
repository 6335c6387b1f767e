package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/middleware"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// RuleHandler serves rewrite rule endpoints.
type RuleHandler struct {
	svc RuleService
	log *logrus.Logger
}

// NewRuleHandler creates a RuleHandler.
func NewRuleHandler(svc RuleService, log *logrus.Logger) *RuleHandler {
	return &RuleHandler{svc: svc, log: log}
}

// List handles GET /servers/:tenant/rules.
func (h *RuleHandler) List(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var platform models.Platform
	if raw := c.Query("platform"); raw != "" {
		p, ok := getPlatform(c, raw)
		if !ok {
			return
		}
		platform = p
	}

	rules, err := h.svc.ListRules(c.Request.Context(), tenantID, platform, parseBool(c.Query("include_inactive")))
	if err != nil {
		respondServiceError(c, h.log, "rule.list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// Create handles POST /servers/:tenant/rules.
func (h *RuleHandler) Create(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var req models.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	rule, err := h.svc.AddRule(c.Request.Context(), middleware.ActorFrom(c), tenantID, req)
	if err != nil {
		respondServiceError(c, h.log, "rule.create", err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// Update handles PATCH /servers/:tenant/rules/:id.
func (h *RuleHandler) Update(c *gin.Context) {
	ruleID := c.Param("id")
	if err := validatePathID(ruleID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var patch models.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	rule, err := h.svc.UpdateRule(c.Request.Context(), middleware.ActorFrom(c), tenantID, ruleID, patch)
	if err != nil {
		respondServiceError(c, h.log, "rule.update", err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// Delete handles DELETE /servers/:tenant/rules/:id.
func (h *RuleHandler) Delete(c *gin.Context) {
	ruleID := c.Param("id")
	if err := validatePathID(ruleID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	if err := h.svc.RemoveRule(c.Request.Context(), middleware.ActorFrom(c), tenantID, ruleID); err != nil {
		respondServiceError(c, h.log, "rule.delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reorder handles PUT /servers/:tenant/rules/reorder.
func (h *RuleHandler) Reorder(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	rules, err := h.svc.ReorderRules(c.Request.Context(), middleware.ActorFrom(c), tenantID, req)
	if err != nil {
		respondServiceError(c, h.log, "rule.reorder", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}
