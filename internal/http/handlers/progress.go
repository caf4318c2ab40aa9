package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/http/validation"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /api/progress
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	ctx := c.Request.Context()
	rows, err := h.progress.ListProgress(ctx, ctxutil.StudentID(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": rows})
}

// GET /api/progress/summary
func (h *ProgressHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.progress.Summary(ctx, ctxutil.StudentID(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}

// GET /api/progress/modules/:id
func (h *ProgressHandler) GetModuleProgress(c *gin.Context) {
	moduleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sm, err := h.progress.GetModuleProgress(ctx, ctxutil.StudentID(ctx), moduleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": sm})
}

// POST /api/progress/modules/:id/sections/:section
func (h *ProgressHandler) CompleteSection(c *gin.Context) {
	moduleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		MinutesSpent int `json:"minutes_spent" binding:"min=0"`
	}
	// Body is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(validation.Message(err)))
		return
	}
	ctx := c.Request.Context()
	res, err := h.progress.CompleteSection(ctx, ctxutil.StudentID(ctx), moduleID, c.Param("section"), req.MinutesSpent)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
