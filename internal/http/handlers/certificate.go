package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type CertificateHandler struct {
	certificates services.CertificateService
}

func NewCertificateHandler(certificates services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// GET /api/certificates
func (h *CertificateHandler) ListMine(c *gin.Context) {
	ctx := c.Request.Context()
	certs, err := h.certificates.ListForStudent(ctx, ctxutil.StudentID(ctx))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificates": certs})
}

// GET /api/certificates/:id
func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificates.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"certificate": cert})
}

// GET /api/certificates/:id/image
func (h *CertificateHandler) Image(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	png, err := h.certificates.Render(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/certificates/verify/:code
func (h *CertificateHandler) Verify(c *gin.Context) {
	v, err := h.certificates.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"verification": v})
}
