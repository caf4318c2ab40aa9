package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lingobridge-backend/internal/http/response"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type CookieConfig struct {
	Name   string
	Secure bool
	Domain string
}

type AuthHandler struct {
	authService services.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService services.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "lb_access_token"
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	student, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"student": student})
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ah.cookie.Name, res.AccessToken, expiresIn, "/", ah.cookie.Domain, ah.cookie.Secure, true)
	response.RespondOK(c, gin.H{
		"access_token": res.AccessToken,
		"expires_in":   expiresIn,
		"student":      res.Student,
	})
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ah.cookie.Name, "", -1, "/", ah.cookie.Domain, ah.cookie.Secure, true)
	response.RespondOK(c, gin.H{"ok": true})
}
