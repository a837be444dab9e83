package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/response"
)

// AuthHandler handles the sign-in flows.
type AuthHandler struct {
	service *application.AuthService
}

func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes on the given router group.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/login", h.Login)
		a.POST("/otp/send", h.SendOTP)
		a.POST("/otp/verify", h.VerifyOTP)
		a.POST("/google", h.GoogleSignIn)
		a.POST("/logout", h.Logout)
		a.GET("/me", h.Me)
	}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type otpSendInput struct {
	Phone string `json:"phone" binding:"required"`
}

type otpVerifyInput struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type googleInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	h.signIn(c, id, err)
}

// SendOTP handles POST /api/v1/auth/otp/send.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req otpSendInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.service.SendOTP(c.Request.Context(), req.Phone); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}

// VerifyOTP handles POST /api/v1/auth/otp/verify.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	h.signIn(c, id, err)
}

// GoogleSignIn handles POST /api/v1/auth/google.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.service.GoogleSignIn(c.Request.Context(), req.IDToken)
	h.signIn(c, id, err)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	currentSession(c).SignOut()
	response.Success(c, gin.H{"signedOut": true})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, gin.H{"user": currentSession(c).Identity()})
}

func (h *AuthHandler) signIn(c *gin.Context, id *application.Identity, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	currentSession(c).SignIn(id)
	response.Success(c, gin.H{"user": id})
}
