package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type instructorService interface {
	BecomeInstructor(ctx context.Context, identity *models.Identity, req models.BecomeInstructorRequest) (*models.Instructor, error)
	Profile(ctx context.Context, instructorID string) (*dto.InstructorProfileResponse, error)
	Dashboard(ctx context.Context, identity *models.Identity) (*dto.InstructorDashboardResponse, error)
}

// InstructorHandler serves instructor registration, profiles and dashboards.
type InstructorHandler struct {
	service instructorService
}

// NewInstructorHandler constructs an InstructorHandler.
func NewInstructorHandler(svc instructorService) *InstructorHandler {
	return &InstructorHandler{service: svc}
}

// Become godoc
// @Summary Become an instructor
// @Description Attaches an instructor record to the caller; the account role is unchanged
// @Tags Instructors
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.BecomeInstructorRequest true "Instructor profile"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructor/become [post]
func (h *InstructorHandler) Become(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.BecomeInstructorRequest
	if !bindPayload(c, &req, "invalid instructor payload") {
		return
	}
	instructor, err := h.service.BecomeInstructor(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor, "Congratulations! You are now an instructor")
}

// Profile godoc
// @Summary Instructor profile
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Dashboard godoc
// @Summary Instructor dashboard
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /instructor/dashboard [get]
func (h *InstructorHandler) Dashboard(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
