package api

import (
	"net/http"
	"time"

	"adaptive-core/internal/features"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Limit int `form:"limit"`
}

func (q *listQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

type decideRequest struct {
	Features features.Vector `json:"features" binding:"required"`
	Tag      string          `json:"tag"`
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

// getSystemStatus reports runtime mode and symbols for the UI.
func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Engine.SystemStatus())
}

// getMetrics exposes the full metrics snapshot plus per-topic bus counters.
func (s *Server) getMetrics(c *gin.Context) {
	payload := gin.H{"metrics": s.Metrics.Snapshot()}
	if s.Bus != nil {
		payload["bus"] = s.Bus.Stats()
	}
	c.JSON(http.StatusOK, payload)
}

// listInstruments returns the configured instruments from the DB.
func (s *Server) listInstruments(c *gin.Context) {
	instruments, err := s.DB.ListInstruments(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

// getQuotes returns the latest cached bid/ask per symbol.
func (s *Server) getQuotes(c *gin.Context) {
	if s.Quotes == nil {
		c.JSON(http.StatusOK, gin.H{"quotes": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": s.Quotes.GetAll()})
}

// getEngineStatus returns every core's learning state.
func (s *Server) getEngineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cores": s.Engine.AllStatus()})
}

// getCoreStatus returns one core's learning state.
func (s *Server) getCoreStatus(c *gin.Context) {
	status, err := s.Engine.CoreStatus(c.Param("symbol"))
	if err != nil {
		respondError(c, http.StatusNotFound, "UNKNOWN_SYMBOL", err.Error())
		return
	}
	c.JSON(http.StatusOK, status)
}

// getActiveTrades lists live virtual positions.
func (s *Server) getActiveTrades(c *gin.Context) {
	trades, err := s.Engine.ActiveTrades(c.Param("symbol"))
	if err != nil {
		respondError(c, http.StatusNotFound, "UNKNOWN_SYMBOL", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// getTradeHistory lists journaled virtual trades.
func (s *Server) getTradeHistory(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	trades, err := s.DB.ListVirtualTrades(c.Request.Context(), c.Param("symbol"), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// getDecisions lists journaled decisions.
func (s *Server) getDecisions(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	decisions, err := s.DB.ListDecisions(c.Request.Context(), c.Param("symbol"), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": decisions})
}

// getOverfitEvents lists journaled detector checks.
func (s *Server) getOverfitEvents(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	eventsList, err := s.DB.ListOverfitEvents(c.Request.Context(), c.Param("symbol"), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": eventsList})
}

// postDecide runs a policy query plus gate check for the submitted features
// without opening a position. Intended for external callers evaluating their
// own setups against the learned policy.
func (s *Server) postDecide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload")
		return
	}

	action, decision, err := s.Engine.Decide(c.Param("symbol"), req.Features, req.Tag)
	if err != nil {
		respondError(c, http.StatusNotFound, "UNKNOWN_SYMBOL", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":     int(action),
		"action_str": action.String(),
		"allowed":    decision.Allowed,
		"confidence": decision.Confidence,
		"reason":     decision.Reason,
	})
}

// saveBrains forces an immediate persistence pass on every core.
func (s *Server) saveBrains(c *gin.Context) {
	s.Engine.SaveAll(time.Now())
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
