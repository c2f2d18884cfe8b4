package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/service"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type adminService interface {
	ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorListItem, *models.Pagination, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, *models.Pagination, error)
	ChangeRole(ctx context.Context, actor *models.Identity, userID string, req models.ChangeRoleRequest) (*models.User, error)
	SetInstructorApproval(ctx context.Context, actor *models.Identity, instructorID string, req models.InstructorApprovalRequest) error
}

type adminDashboardService interface {
	AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, bool, error)
}

type rosterExporter interface {
	ExportStudents(ctx context.Context, format string) (*service.ExportFile, error)
	ExportInstructors(ctx context.Context, format string) (*service.ExportFile, error)
}

// AdminHandler serves the administration area.
type AdminHandler struct {
	admin     adminService
	dashboard adminDashboardService
	exports   rosterExporter
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin adminService, dashboard adminDashboardService, exports rosterExporter) *AdminHandler {
	return &AdminHandler{admin: admin, dashboard: dashboard, exports: exports}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Description Platform totals and the ten most recent courses
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, cacheHit, err := h.dashboard.AdminDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// ListInstructors godoc
// @Summary List instructors
// @Tags Admin
// @Produce json
// @Param search query string false "Username, email or specialization"
// @Param approved query bool false "Approval flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/instructors [get]
func (h *AdminHandler) ListInstructors(c *gin.Context) {
	filter := models.InstructorFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Approved: queryBool(c, "approved"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	items, pagination, err := h.admin.ListInstructors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListStudents godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Param search query string false "Username or email"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	filter := models.StudentFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	items, pagination, err := h.admin.ListStudents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// SetApproval godoc
// @Summary Approve or suspend an instructor
// @Tags Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body models.InstructorApprovalRequest true "Approval"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/instructors/{id}/approval [patch]
func (h *AdminHandler) SetApproval(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.InstructorApprovalRequest
	if !bindPayload(c, &req, "invalid approval payload") {
		return
	}
	if err := h.admin.SetInstructorApproval(c.Request.Context(), identity, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, gin.H{"id": c.Param("id"), "is_approved": *req.Approved}, "Instructor approval updated")
}

// ChangeRole godoc
// @Summary Change a user's role
// @Description The only way to change a role; creates the matching student or instructor record when missing
// @Tags Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.ChangeRoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		return
	}
	var req models.ChangeRoleRequest
	if !bindPayload(c, &req, "invalid role payload") {
		return
	}
	user, err := h.admin.ChangeRole(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithMessage(c, http.StatusOK, user, "Role updated")
}

// ExportStudents godoc
// @Summary Export student roster
// @Tags Admin
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} file
// @Router /admin/students/export [get]
func (h *AdminHandler) ExportStudents(c *gin.Context) {
	file, err := h.exports.ExportStudents(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// ExportInstructors godoc
// @Summary Export instructor roster
// @Tags Admin
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} file
// @Router /admin/instructors/export [get]
func (h *AdminHandler) ExportInstructors(c *gin.Context) {
	file, err := h.exports.ExportInstructors(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
