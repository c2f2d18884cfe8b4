package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type courseService interface {
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, *models.Pagination, error)
	GetCourseDetail(ctx context.Context, courseID string, identity *models.Identity) (*dto.CourseDetailResponse, error)
	CreateCourse(ctx context.Context, identity *models.Identity, req models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, identity *models.Identity, courseID string, req models.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, identity *models.Identity, courseID string) error
}

// CourseHandler serves the public catalog and course management for instructors and admins.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Title or description search"
// @Param instructor_id query string false "Instructor ID"
// @Param active query bool false "Active flag"
// @Param featured query bool false "Featured flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort query string false "created_at|title|price|category"
// @Param order query string false "asc|desc"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Category:     strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("search")),
		InstructorID: strings.TrimSpace(c.Query("instructor_id")),
		Active:       queryBool(c, "active"),
		Featured:     queryBool(c, "featured"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 20),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	courses, pagination, err := h.service.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Detail godoc
// @Summary Course detail
// @Description Course, instructor and lessons; enrolled students also receive their progress
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Detail(c *gin.Context) {
	detail, err := h.service.GetCourseDetail(c.Request.Context(), c.Param("id"), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.CreateCourseRequest
	if !bindPayload(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course, fmt.Sprintf("Course '%s' created successfully!", course.Title))
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.UpdateCourseRequest
	if !bindPayload(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, course, fmt.Sprintf("Course '%s' updated successfully!", course.Title))
}

// Delete godoc
// @Summary Delete course
// @Description Removes the course with its lessons, enrollments and progress
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), identity, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
