package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/sweep"
)

// SweepHandler serves the manual retention sweep trigger.
type SweepHandler struct {
	runner SweepRunner
	log    *logrus.Logger
}

// NewSweepHandler creates a SweepHandler.
func NewSweepHandler(runner SweepRunner, log *logrus.Logger) *SweepHandler {
	return &SweepHandler{runner: runner, log: log}
}

// Run handles POST /admin/sweep. The sweep runs in the request and the summary
// is returned; a disconnecting caller stops it between tenants.
func (h *SweepHandler) Run(c *gin.Context) {
	summary, err := h.runner.Run(c.Request.Context())
	if errors.Is(err, sweep.ErrSweepInProgress) {
		respondError(c, http.StatusConflict, ErrCodeConflict, "a sweep is already running")
		return
	}
	if err != nil {
		respondServiceError(c, h.log, "sweep.run", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
