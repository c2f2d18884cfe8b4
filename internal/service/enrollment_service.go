package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, studentID, courseID string, at time.Time) (bool, error)
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrolledCourse, error)
}

type progressRepository interface {
	MarkComplete(ctx context.Context, studentID, lessonID string, at time.Time) error
	CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type lessonReader interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

var (
	errStudentsOnly = appErrors.Clone(appErrors.ErrForbidden, "Only students can enroll in courses")
	errNotEnrolled  = appErrors.Clone(appErrors.ErrPreconditionFailed, "You must be enrolled in the course to mark lessons as complete")
)

// EnrollmentServiceParams groups constructor dependencies.
type EnrollmentServiceParams struct {
	Enrollments enrollmentRepository
	Progress    progressRepository
	Courses     courseReader
	Lessons     lessonReader
	Audit       auditRepository
	Cache       *CacheService
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// EnrollmentService gates course membership and lesson completion.
type EnrollmentService struct {
	enrollments enrollmentRepository
	progress    progressRepository
	courses     courseReader
	lessons     lessonReader
	audit       auditRepository
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(params EnrollmentServiceParams) *EnrollmentService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: params.Enrollments,
		progress:    params.Progress,
		courses:     params.Courses,
		lessons:     params.Lessons,
		audit:       params.Audit,
		cache:       params.Cache,
		metrics:     params.Metrics,
		logger:      params.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Enroll adds the course to the student's enrollments. Enrolling twice is a no-op.
func (s *EnrollmentService) Enroll(ctx context.Context, identity *models.Identity, courseID string) (*models.EnrollResult, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if !identity.Can(models.CapabilityStudent) {
		return nil, errStudentsOnly
	}

	created, err := s.enrollments.Enroll(ctx, *identity.StudentID, courseID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}
	s.metrics.RecordEnrollment(created)
	if created {
		s.cache.Invalidate(ctx)
		recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionEnroll, models.AuditResourceEnrollment, courseID, nil)
	}
	return &models.EnrollResult{Course: *course, AlreadyEnrolled: !created}, nil
}

// MyCourses lists the student's enrolled courses with their completion percentage.
func (s *EnrollmentService) MyCourses(ctx context.Context, identity *models.Identity) ([]models.EnrolledCourse, error) {
	if !identity.Can(models.CapabilityStudent) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only students have enrolled courses")
	}
	courses, err := s.enrollments.ListByStudent(ctx, *identity.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled courses")
	}
	if courses == nil {
		return []models.EnrolledCourse{}, nil
	}
	for i := range courses {
		courses[i].ProgressPercentage = models.ProgressPercent(courses[i].CompletedLessons, courses[i].TotalLessons)
	}
	return courses, nil
}

// MarkLessonComplete records the lesson as completed for an enrolled student and returns the course progress.
func (s *EnrollmentService) MarkLessonComplete(ctx context.Context, identity *models.Identity, lessonID string) (*dto.LessonCompletionResponse, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}
	if !identity.Can(models.CapabilityStudent) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only students can track lesson progress")
	}
	studentID := *identity.StudentID

	enrolled, err := s.enrollments.IsEnrolled(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, errNotEnrolled
	}

	if err := s.progress.MarkComplete(ctx, studentID, lesson.ID, s.now()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark lesson complete")
	}
	s.metrics.RecordLessonCompleted()

	progress, err := s.CourseProgress(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	return &dto.LessonCompletionResponse{LessonID: lesson.ID, LessonTitle: lesson.Title, Progress: progress}, nil
}

// CourseProgress computes the truncated completion percentage of a course for a student.
func (s *EnrollmentService) CourseProgress(ctx context.Context, studentID, courseID string) (models.CourseProgress, error) {
	total, err := s.lessons.CountByCourse(ctx, courseID)
	if err != nil {
		return models.CourseProgress{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count lessons")
	}
	completed, err := s.progress.CompletedLessonIDs(ctx, studentID, courseID)
	if err != nil {
		return models.CourseProgress{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	return models.NewCourseProgress(courseID, completed, total), nil
}

// GetProgress returns the caller's progress in a course they are enrolled in.
func (s *EnrollmentService) GetProgress(ctx context.Context, identity *models.Identity, courseID string) (*models.CourseProgress, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, courseLookupError(err)
	}
	if !identity.Can(models.CapabilityStudent) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only students can track lesson progress")
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "You are not enrolled in this course")
	}
	progress, err := s.CourseProgress(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
