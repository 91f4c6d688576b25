package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fraud-core/internal/events"
	"fraud-core/internal/fraud"
)

// writeError maps the engine's error taxonomy onto the HTTP contract:
// validation -> 400, unknown id -> 404, double resolution -> 409, rest -> 500.
// Error bodies carry a "message" field only; internals stay in the log.
func writeError(c *gin.Context, err error) {
	var ve *fraud.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Message})
	case errors.Is(err, fraud.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMessage(c)})
	case errors.Is(err, fraud.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Fraud alert already resolved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}

func notFoundMessage(c *gin.Context) string {
	if len(c.Params) > 0 && c.FullPath() != "" {
		switch {
		case c.FullPath() == "/api/rules/:id":
			return "Fraud rule not found"
		default:
			return "Fraud alert not found"
		}
	}
	return "Not found"
}

// Rules

func (s *Server) listRules(c *gin.Context) {
	rules, err := s.Rules.ListRules(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if rules == nil {
		rules = []fraud.Rule{}
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) getRule(c *gin.Context) {
	rule, err := s.Rules.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) createRule(c *gin.Context) {
	var in fraud.RuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	rule, err := fraud.NewRule(in)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.Rules.CreateRule(c.Request.Context(), rule); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) updateRule(c *gin.Context) {
	var patch fraud.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}
	rule, err := s.Rules.UpdateRule(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// Alerts

func (s *Server) listAlerts(c *gin.Context) {
	alerts, err := s.Alerts.ListAlerts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if alerts == nil {
		alerts = []fraud.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) getAlert(c *gin.Context) {
	alert, err := s.Alerts.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

type resolveRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func (s *Server) resolveAlert(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid action (approve/reject) is required"})
		return
	}
	alert, err := s.Alerts.ResolveAlert(c.Request.Context(), c.Param("id"), req.Action, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.AlertResolved(alert.Status)
	}
	if s.Bus != nil {
		s.Bus.Publish(events.EventAlertResolved, alert)
	}
	c.JSON(http.StatusOK, alert)
}

// Analysis

func (s *Server) analyze(c *gin.Context) {
	var tx fraud.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	result, err := s.Engine.Analyze(c.Request.Context(), tx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
