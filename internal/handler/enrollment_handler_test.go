package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type fakeEnrollmentSrv struct {
	already     bool
	progressErr error
}

func (f *fakeEnrollmentSrv) Enroll(ctx context.Context, identity *models.Identity, courseID string) (*models.EnrollResult, error) {
	return &models.EnrollResult{Course: models.Course{ID: courseID, Title: "Go Basics"}, AlreadyEnrolled: f.already}, nil
}

func (f *fakeEnrollmentSrv) MyCourses(ctx context.Context, identity *models.Identity) ([]models.EnrolledCourse, error) {
	return []models.EnrolledCourse{}, nil
}

func (f *fakeEnrollmentSrv) MarkLessonComplete(ctx context.Context, identity *models.Identity, lessonID string) (*dto.LessonCompletionResponse, error) {
	return &dto.LessonCompletionResponse{LessonTitle: "Intro"}, nil
}

func (f *fakeEnrollmentSrv) GetProgress(ctx context.Context, identity *models.Identity, courseID string) (*models.CourseProgress, error) {
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return &models.CourseProgress{}, nil
}

func enrollRequest(h *EnrollmentHandler) *httptest.ResponseRecorder {
	c, rec := newTestContext(testStudent())
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/course-1/enroll", nil)
	h.Enroll(c)
	return rec
}

func TestEnrollStatusDependsOnPriorEnrollment(t *testing.T) {
	srv := &fakeEnrollmentSrv{}
	h := NewEnrollmentHandler(srv)

	rec := enrollRequest(h)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Successfully enrolled in Go Basics!", decodeEnvelope(rec).Message)

	srv.already = true
	rec = enrollRequest(h)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You are already enrolled in Go Basics.", decodeEnvelope(rec).Message)
}

func TestCompleteLessonMessage(t *testing.T) {
	h := NewEnrollmentHandler(&fakeEnrollmentSrv{})

	c, rec := newTestContext(testStudent())
	c.Params = gin.Params{{Key: "id", Value: "lesson-1"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/lessons/lesson-1/complete", nil)
	h.CompleteLesson(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lesson 'Intro' marked as completed!", decodeEnvelope(rec).Message)
}

func TestProgressNotEnrolled(t *testing.T) {
	h := NewEnrollmentHandler(&fakeEnrollmentSrv{progressErr: appErrors.Clone(appErrors.ErrPreconditionFailed, "not enrolled")})

	c, rec := newTestContext(testStudent())
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/courses/course-1/progress", nil)
	h.Progress(c)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}
