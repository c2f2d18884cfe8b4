package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type fakeCourseSrv struct {
	filter    models.CourseFilter
	createReq models.CreateCourseRequest
	createErr error
	detailFor *models.Identity
}

func (f *fakeCourseSrv) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, *models.Pagination, error) {
	f.filter = filter
	return []models.CourseListItem{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (f *fakeCourseSrv) GetCourseDetail(ctx context.Context, courseID string, identity *models.Identity) (*dto.CourseDetailResponse, error) {
	f.detailFor = identity
	return &dto.CourseDetailResponse{Course: models.CourseListItem{Course: models.Course{ID: courseID}}}, nil
}

func (f *fakeCourseSrv) CreateCourse(ctx context.Context, identity *models.Identity, req models.CreateCourseRequest) (*models.Course, error) {
	f.createReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Course{ID: "c1", Title: req.Title}, nil
}

func (f *fakeCourseSrv) UpdateCourse(ctx context.Context, identity *models.Identity, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: courseID, Title: *req.Title}, nil
}

func (f *fakeCourseSrv) DeleteCourse(ctx context.Context, identity *models.Identity, courseID string) error {
	return nil
}

func TestCourseListParsesFilters(t *testing.T) {
	srv := &fakeCourseSrv{}
	h := NewCourseHandler(srv)

	c, rec := newTestContext(nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses?category=Design&featured=true&page=2&page_size=5&sort=price&order=asc", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Design", srv.filter.Category)
	require.NotNil(t, srv.filter.Featured)
	assert.True(t, *srv.filter.Featured)
	assert.Nil(t, srv.filter.Active)
	assert.Equal(t, 2, srv.filter.Page)
	assert.Equal(t, 5, srv.filter.PageSize)
	assert.Equal(t, "price", srv.filter.SortBy)
}

func TestCourseCreateFromForm(t *testing.T) {
	srv := &fakeCourseSrv{}
	h := NewCourseHandler(srv)

	c, rec := newTestContext(&models.Identity{UserID: "u1", Role: models.RoleInstructor})
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/courses", strings.NewReader("title=Go+101&price=25&is_paid=true"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 25.0, srv.createReq.Price)
	assert.True(t, srv.createReq.IsPaid)
	assert.Equal(t, "Course 'Go 101' created successfully!", decodeEnvelope(rec).Message)
}

func TestCourseCreateSurfacesPriceField(t *testing.T) {
	srv := &fakeCourseSrv{createErr: appErrors.Clone(appErrors.ErrValidation, "invalid course payload").WithField("price", models.MsgFreeCourseZeroPrice)}
	h := NewCourseHandler(srv)

	c, rec := newTestContext(&models.Identity{UserID: "u1", Role: models.RoleInstructor})
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/courses", strings.NewReader(`{"title":"Free","price":5}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, models.MsgFreeCourseZeroPrice, env.Error.Fields["price"])
}

func TestCourseDetailPassesOptionalIdentity(t *testing.T) {
	srv := &fakeCourseSrv{}
	h := NewCourseHandler(srv)

	c, rec := newTestContext(nil)
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/c9", nil)
	h.Detail(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, srv.detailFor)

	var data dto.CourseDetailResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(rec).Data, &data))
	assert.Equal(t, "c9", data.Course.ID)

	c, _ = newTestContext(testStudent())
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/c9", nil)
	h.Detail(c)
	require.NotNil(t, srv.detailFor)
	assert.Equal(t, "u1", srv.detailFor.UserID)
}

func TestCourseCreateRequiresIdentity(t *testing.T) {
	h := NewCourseHandler(&fakeCourseSrv{})

	c, rec := newTestContext(nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/courses", strings.NewReader(`{"title":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
