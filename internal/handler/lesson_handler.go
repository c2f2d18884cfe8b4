package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type lessonService interface {
	ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
	CreateLesson(ctx context.Context, identity *models.Identity, courseID string, req models.CreateLessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, identity *models.Identity, lessonID string, req models.UpdateLessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, identity *models.Identity, lessonID string) error
}

// LessonHandler serves lesson listing and management.
type LessonHandler struct {
	service lessonService
}

// NewLessonHandler constructs a LessonHandler.
func NewLessonHandler(svc lessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List course lessons
// @Tags Lessons
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	lessons, err := h.service.ListLessons(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Create godoc
// @Summary Add lesson
// @Tags Lessons
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor/courses/{id}/lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.CreateLessonRequest
	if !bindPayload(c, &req, "invalid lesson payload") {
		return
	}
	lesson, err := h.service.CreateLesson(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson, "Lesson added successfully")
}

// Update godoc
// @Summary Update lesson
// @Tags Lessons
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body models.UpdateLessonRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /instructor/lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.UpdateLessonRequest
	if !bindPayload(c, &req, "invalid lesson payload") {
		return
	}
	lesson, err := h.service.UpdateLesson(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /instructor/lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	if err := h.service.DeleteLesson(c.Request.Context(), identity, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
