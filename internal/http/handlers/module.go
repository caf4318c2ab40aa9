package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type ModuleHandler struct {
	catalog services.CatalogService
}

func NewModuleHandler(catalog services.CatalogService) *ModuleHandler {
	return &ModuleHandler{catalog: catalog}
}

// GET /api/modules?level=B1
func (h *ModuleHandler) ListModules(c *gin.Context) {
	ctx := c.Request.Context()
	modules, err := h.catalog.ListModules(ctx, c.Query("level"), ctxutil.IsAdmin(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": modules})
}

// GET /api/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	module, err := h.catalog.GetModule(ctx, id, ctxutil.IsAdmin(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": module})
}

// POST /api/admin/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req services.CreateModuleInput
	if !bindJSON(c, &req) {
		return
	}
	module, err := h.catalog.CreateModule(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": module})
}

// PATCH /api/admin/modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateModuleInput
	if !bindJSON(c, &req) {
		return
	}
	module, err := h.catalog.UpdateModule(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": module})
}

// DELETE /api/admin/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteModule(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
