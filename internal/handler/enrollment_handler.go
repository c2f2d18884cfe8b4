package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, identity *models.Identity, courseID string) (*models.EnrollResult, error)
	MyCourses(ctx context.Context, identity *models.Identity) ([]models.EnrolledCourse, error)
	MarkLessonComplete(ctx context.Context, identity *models.Identity, lessonID string) (*dto.LessonCompletionResponse, error)
	GetProgress(ctx context.Context, identity *models.Identity, courseID string) (*models.CourseProgress, error)
}

// EnrollmentHandler serves student enrollment and lesson progress.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll in course
// @Description Idempotent; enrolling twice reports already_enrolled
// @Tags Enrollment
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	result, err := h.service.Enroll(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.AlreadyEnrolled {
		response.WithMessage(c, http.StatusOK, result, fmt.Sprintf("You are already enrolled in %s.", result.Course.Title))
		return
	}
	response.Created(c, result, fmt.Sprintf("Successfully enrolled in %s!", result.Course.Title))
}

// MyCourses godoc
// @Summary My enrolled courses
// @Tags Enrollment
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /me/courses [get]
func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	courses, err := h.service.MyCourses(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Progress godoc
// @Summary Course progress
// @Tags Enrollment
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /courses/{id}/progress [get]
func (h *EnrollmentHandler) Progress(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	progress, err := h.service.GetProgress(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// CompleteLesson godoc
// @Summary Mark lesson complete
// @Tags Enrollment
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /lessons/{id}/complete [post]
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	result, err := h.service.MarkLessonComplete(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, result, fmt.Sprintf("Lesson '%s' marked as completed!", result.LessonTitle))
}
