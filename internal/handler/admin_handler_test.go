package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
	"github.com/noah-isme/elearn-api/internal/service"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type fakeAdminSrv struct {
	instructorFilter models.InstructorFilter
	approval         models.InstructorApprovalRequest
	roleErr          error
}

func (f *fakeAdminSrv) ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorListItem, *models.Pagination, error) {
	f.instructorFilter = filter
	return []models.InstructorListItem{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeAdminSrv) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, *models.Pagination, error) {
	return []models.StudentListItem{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeAdminSrv) ChangeRole(ctx context.Context, actor *models.Identity, userID string, req models.ChangeRoleRequest) (*models.User, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return &models.User{ID: userID, Role: req.Role}, nil
}

func (f *fakeAdminSrv) SetInstructorApproval(ctx context.Context, actor *models.Identity, instructorID string, req models.InstructorApprovalRequest) error {
	f.approval = req
	return nil
}

type fakeAdminDashboard struct {
	hit bool
}

func (f *fakeAdminDashboard) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	return &dto.AdminDashboardResponse{}, f.hit, nil
}

type fakeExporter struct {
	format string
}

func (f *fakeExporter) ExportStudents(ctx context.Context, format string) (*service.ExportFile, error) {
	f.format = format
	if format == "xml" {
		return nil, appErrors.ErrValidation.WithField("format", "must be one of: csv pdf")
	}
	return &service.ExportFile{Filename: "students.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("Username\nalice\n")}, nil
}

func (f *fakeExporter) ExportInstructors(ctx context.Context, format string) (*service.ExportFile, error) {
	f.format = format
	return &service.ExportFile{Filename: "instructors.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func adminIdentity() *models.Identity {
	return &models.Identity{UserID: "admin-1", Username: "root", Role: models.RoleAdmin, Active: true}
}

func TestAdminExportStudentsAttachment(t *testing.T) {
	exports := &fakeExporter{}
	h := NewAdminHandler(&fakeAdminSrv{}, &fakeAdminDashboard{}, exports)

	c, rec := newTestContext(adminIdentity())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/students/export?format=csv", nil)
	h.ExportStudents(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exports.format)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Username\nalice\n", rec.Body.String())
}

func TestAdminExportRejectsUnknownFormat(t *testing.T) {
	h := NewAdminHandler(&fakeAdminSrv{}, &fakeAdminDashboard{}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/students/export?format=xml", nil)
	h.ExportStudents(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be one of: csv pdf", decodeEnvelope(rec).Error.Fields["format"])
}

func TestAdminExportInstructorsPDF(t *testing.T) {
	h := NewAdminHandler(&fakeAdminSrv{}, &fakeAdminDashboard{}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/instructors/export?format=pdf", nil)
	h.ExportInstructors(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "instructors.pdf")
}

func TestAdminDashboardReportsCacheHit(t *testing.T) {
	h := NewAdminHandler(&fakeAdminSrv{}, &fakeAdminDashboard{hit: true}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	middleware.WithResponseMeta()(c)
	h.Dashboard(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestAdminListInstructorsFilters(t *testing.T) {
	srv := &fakeAdminSrv{}
	h := NewAdminHandler(srv, &fakeAdminDashboard{}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/instructors?approved=false&search=go&page=3", nil)
	h.ListInstructors(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.instructorFilter.Approved)
	assert.False(t, *srv.instructorFilter.Approved)
	assert.Equal(t, "go", srv.instructorFilter.Search)
	assert.Equal(t, 3, srv.instructorFilter.Page)
}

func TestAdminSetApprovalFromForm(t *testing.T) {
	srv := &fakeAdminSrv{}
	h := NewAdminHandler(srv, &fakeAdminDashboard{}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Params = gin.Params{{Key: "id", Value: "inst-1"}}
	c.Request = httptest.NewRequest(http.MethodPatch, "/admin/instructors/inst-1/approval", strings.NewReader("approved=false"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.SetApproval(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.approval.Approved)
	assert.False(t, *srv.approval.Approved)
}

func TestAdminChangeRoleForbidden(t *testing.T) {
	srv := &fakeAdminSrv{roleErr: appErrors.Clone(appErrors.ErrForbidden, "You cannot remove your own admin role")}
	h := NewAdminHandler(srv, &fakeAdminDashboard{}, &fakeExporter{})

	c, rec := newTestContext(adminIdentity())
	c.Params = gin.Params{{Key: "id", Value: "admin-1"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/users/admin-1/role", strings.NewReader(`{"role":"student"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.ChangeRole(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
