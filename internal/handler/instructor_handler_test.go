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
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type fakeInstructorSrv struct {
	becomeReq models.BecomeInstructorRequest
	becomeErr error
}

func (f *fakeInstructorSrv) BecomeInstructor(ctx context.Context, identity *models.Identity, req models.BecomeInstructorRequest) (*models.Instructor, error) {
	f.becomeReq = req
	if f.becomeErr != nil {
		return nil, f.becomeErr
	}
	return &models.Instructor{ID: "inst-1", UserID: identity.UserID, Bio: req.Bio}, nil
}

func (f *fakeInstructorSrv) Profile(ctx context.Context, instructorID string) (*dto.InstructorProfileResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
}

func (f *fakeInstructorSrv) Dashboard(ctx context.Context, identity *models.Identity) (*dto.InstructorDashboardResponse, error) {
	return &dto.InstructorDashboardResponse{}, nil
}

func TestBecomeInstructorCreated(t *testing.T) {
	srv := &fakeInstructorSrv{}
	h := NewInstructorHandler(srv)

	c, rec := newTestContext(testStudent())
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/become", strings.NewReader("bio=Gopher&specialization=Backend"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Become(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Backend", srv.becomeReq.Specialization)
	assert.Equal(t, "Congratulations! You are now an instructor", decodeEnvelope(rec).Message)
}

func TestBecomeInstructorConflict(t *testing.T) {
	h := NewInstructorHandler(&fakeInstructorSrv{becomeErr: appErrors.Clone(appErrors.ErrConflict, "You are already an instructor")})

	c, rec := newTestContext(testStudent())
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/become", strings.NewReader(`{"bio":"x","specialization":"y"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Become(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInstructorProfileNotFound(t *testing.T) {
	h := NewInstructorHandler(&fakeInstructorSrv{})

	c, rec := newTestContext(nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/instructors/missing", nil)
	h.Profile(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeLessonSrv struct {
	courseID string
	req      models.CreateLessonRequest
}

func (f *fakeLessonSrv) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	return []models.Lesson{{ID: "l1", CourseID: courseID, Title: "Intro"}}, nil
}

func (f *fakeLessonSrv) CreateLesson(ctx context.Context, identity *models.Identity, courseID string, req models.CreateLessonRequest) (*models.Lesson, error) {
	f.courseID = courseID
	f.req = req
	return &models.Lesson{ID: "l2", CourseID: courseID, Title: req.Title}, nil
}

func (f *fakeLessonSrv) UpdateLesson(ctx context.Context, identity *models.Identity, lessonID string, req models.UpdateLessonRequest) (*models.Lesson, error) {
	return &models.Lesson{ID: lessonID}, nil
}

func (f *fakeLessonSrv) DeleteLesson(ctx context.Context, identity *models.Identity, lessonID string) error {
	return nil
}

func TestLessonCreateUsesCoursePath(t *testing.T) {
	srv := &fakeLessonSrv{}
	h := NewLessonHandler(srv)

	c, rec := newTestContext(&models.Identity{UserID: "u1", Role: models.RoleInstructor})
	c.Params = gin.Params{{Key: "id", Value: "course-7"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/instructor/courses/course-7/lessons", strings.NewReader(`{"title":"Channels","order":2,"duration_minutes":15}`))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "course-7", srv.courseID)
	assert.Equal(t, 2, srv.req.Order)
	assert.Equal(t, 15, srv.req.DurationMinutes)
}

func TestLessonDeleteNoContent(t *testing.T) {
	h := NewLessonHandler(&fakeLessonSrv{})

	c, rec := newTestContext(&models.Identity{UserID: "u1", Role: models.RoleInstructor})
	c.Params = gin.Params{{Key: "id", Value: "l1"}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/instructor/lessons/l1", nil)
	h.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
