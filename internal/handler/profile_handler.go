package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type profileService interface {
	Me(ctx context.Context, identity *models.Identity) (*dto.MeResponse, error)
	UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (*models.Profile, error)
}

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Me godoc
// @Summary Current user
// @Description Returns the caller, their capabilities and profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	me, err := h.service.Me(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, me, nil)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags Profile
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.UpdateProfileRequest
	if !bindPayload(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, profile, "Profile updated successfully")
}
