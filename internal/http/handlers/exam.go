package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type ExamHandler struct {
	exams services.ExamService
}

func NewExamHandler(exams services.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// GET /api/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	ctx := c.Request.Context()
	exams, err := h.exams.ListExams(ctx, ctxutil.IsAdmin(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exams": exams})
}

// GET /api/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	exam, err := h.exams.GetExam(ctx, id, ctxutil.IsAdmin(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exam": exam})
}

// POST /api/exams/:id/attempts
func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SubmitAttemptInput
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	res, err := h.exams.SubmitAttempt(ctx, ctxutil.StudentID(ctx), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/exams/:id/attempts
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	attempts, err := h.exams.ListAttempts(ctx, ctxutil.StudentID(ctx), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}

// POST /api/admin/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamInput
	if !bindJSON(c, &req) {
		return
	}
	exam, err := h.exams.CreateExam(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"exam": exam})
}

// DELETE /api/admin/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.exams.DeleteExam(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
