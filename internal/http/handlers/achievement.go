package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementService
}

func NewAchievementHandler(achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// GET /api/achievements
func (h *AchievementHandler) ListCatalog(c *gin.Context) {
	list, err := h.achievements.ListCatalog(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": list})
}

// GET /api/me/achievements
func (h *AchievementHandler) ListMine(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.achievements.ListForStudent(ctx, ctxutil.StudentID(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": list})
}
