package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, identity *models.Identity, refreshToken string)
}

type sessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, userID string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler wires HTTP endpoints to the auth service and the browser session.
type AuthHandler struct {
	service  authService
	sessions sessionManager
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions sessionManager, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, sessions: sessions, logger: logger}
}

// Signup godoc
// @Summary Register an account
// @Description Create a student or instructor account and sign it in
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindPayload(c, &req, "invalid signup payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.openSession(c, res.User.ID)

	kind := "Student"
	if req.AccountType == models.RoleInstructor {
		kind = "Instructor"
	}
	response.Created(c, res, fmt.Sprintf("%s account created successfully! Welcome, %s!", kind, res.User.Username))
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by username or email and password
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindPayload(c, &req, "invalid login payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.openSession(c, res.User.ID)

	response.WithMessage(c, http.StatusOK, res, fmt.Sprintf("Welcome back, %s!", res.User.Username))
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange refresh token for a new token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindPayload(c, &req, "invalid refresh payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the refresh token (when supplied) and clear the session cookie. Anonymous callers get the same response.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LogoutRequest false "Refresh token"
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	var req models.LogoutRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBind(&req)
	}

	h.service.Logout(c.Request.Context(), identity, req.RefreshToken)
	if h.sessions != nil {
		if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
			h.logger.Warn("failed to clear session", zap.Error(err))
		}
	}
	response.WithMessage(c, http.StatusOK, nil, "You have been logged out successfully")
}

func (h *AuthHandler) openSession(c *gin.Context, userID string) {
	if h.sessions == nil {
		return
	}
	if err := h.sessions.Login(c.Writer, c.Request, userID); err != nil {
		h.logger.Warn("failed to open session", zap.String("user_id", userID), zap.Error(err))
	}
}
