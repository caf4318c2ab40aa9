package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/data/repos"
	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type StudentHandler struct {
	students services.StudentService
}

func NewStudentHandler(students services.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// GET /api/me
func (h *StudentHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	me, err := h.students.GetMe(ctx, ctxutil.StudentID(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": me})
}

// GET /api/admin/students?level=&subscription_status=&role=&q=&limit=&offset=
func (h *StudentHandler) List(c *gin.Context) {
	page, err := h.students.List(c.Request.Context(), repos.StudentFilter{
		Level:              c.Query("level"),
		SubscriptionStatus: c.Query("subscription_status"),
		Role:               c.Query("role"),
		Search:             c.Query("q"),
		Limit:              queryInt(c, "limit", 0),
		Offset:             queryInt(c, "offset", 0),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/admin/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": st})
}

// PATCH /api/admin/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateStudentInput
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"student": st})
}

// POST /api/admin/students/:id/modules
func (h *StudentHandler) SeedModules(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ModuleIDs []uuid.UUID `json:"module_ids" binding:"required,min=1"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.students.SeedModules(c.Request.Context(), id, req.ModuleIDs)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
