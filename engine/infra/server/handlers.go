package server

import (
	"net/http"
	"strings"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/qa"
	"github.com/compozy/hybridqa/pkg/logger"
	"github.com/compozy/hybridqa/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const errBadRequestCode = "BAD_REQUEST"

type answerRequest struct {
	ID         string `json:"id"`
	Question   string `json:"question"    binding:"required"`
	FormatHint string `json:"format_hint"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, err error) {
	info := errorInfo{Code: code, Message: message}
	if err != nil {
		info.Details = core.RedactError(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": info})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"status":  "healthy",
			"version": version.Get().Version,
		},
		"message": "Success",
	})
}

// handleAnswer returns the same record a batch run writes. Failures inside
// the engine still produce a record; only malformed requests are rejected.
func (s *Server) handleAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errBadRequestCode, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(c, http.StatusBadRequest, errBadRequestCode, "question cannot be empty", nil)
		return
	}
	q := qa.Question{ID: req.ID, Text: req.Question, FormatHint: req.FormatHint}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	ctx := c.Request.Context()
	s.answerMu.Lock()
	answer, err := s.answerer.Answer(ctx, q)
	s.answerMu.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			respondError(c, http.StatusRequestTimeout, "REQUEST_TIMEOUT", "request canceled", err)
			return
		}
		logger.FromContext(ctx).Error("Question failed", "question_id", q.ID, "error", core.RedactError(err))
		answer = qa.ErrorAnswer(q.ID, core.RedactError(err))
	}
	c.JSON(http.StatusOK, answer)
}
