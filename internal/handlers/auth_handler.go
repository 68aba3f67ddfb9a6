package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/middleware"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/session"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/account"
)

type AuthHandler struct {
	register *account.Register
	login    *account.Login
	forgot   *account.ForgotPassword
	reset    *account.ResetPassword

	sessions     *session.Manager
	revocations  session.Revocations
	secureCookie bool
	log          *zap.Logger
}

func NewAuthHandler(
	register *account.Register,
	login *account.Login,
	forgot *account.ForgotPassword,
	reset *account.ResetPassword,
	sessions *session.Manager,
	revocations session.Revocations,
	secureCookie bool,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		register:     register,
		login:        login,
		forgot:       forgot,
		reset:        reset,
		sessions:     sessions,
		revocations:  revocations,
		secureCookie: secureCookie,
		log:          log,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=100"`
	Password     string `json:"password" binding:"required,min=6"`
	Email        string `json:"email" binding:"required,email"`
	BusinessName string `json:"businessName" binding:"omitempty,max=200"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	user, err := h.register.Execute(c.Request.Context(), account.RegisterInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	httpresp.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	user, err := h.login.Execute(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	httpresp.OK(c, user)
}

// Logout revokes the presented token until it would have expired and
// clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middleware.SessionClaims(c); claims != nil && claims.ExpiresAt != nil {
		if err := h.revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	h.setCookie(c, "", -1)
	httpresp.Message(c, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	httpresp.OK(c, middleware.CurrentUser(c))
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	if err := h.forgot.Execute(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Message(c, http.StatusOK, "If an account with that email exists, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	err := h.reset.Execute(c.Request.Context(), account.ResetPasswordInput{
		Email:    req.Email,
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Message(c, http.StatusOK, "Password has been reset")
}

// --------- Session cookie ---------

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) bool {
	token, _, err := h.sessions.Issue(user.ID, user.Role)
	if err != nil {
		h.log.Error("issue session failed", zap.Uint("user_id", user.ID), zap.Error(err))
		httperr.Internal(c, "internal_error", "Internal server error")
		return false
	}
	h.setCookie(c, token, int(h.sessions.TTL().Seconds()))
	return true
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", h.secureCookie, true)
}
