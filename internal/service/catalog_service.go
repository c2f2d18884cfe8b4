package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindListItem(ctx context.Context, id string) (*models.CourseListItem, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type lessonRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type instructorReader interface {
	FindByID(ctx context.Context, id string) (*models.InstructorDetail, error)
}

type enrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

type completedLessonReader interface {
	CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error)
}

var (
	errNotOwner        = appErrors.Clone(appErrors.ErrForbidden, "You can only manage your own courses")
	errAdminOnlyFields = appErrors.Clone(appErrors.ErrForbidden, "Only administrators can change the instructor or visibility flags of a course")
	errNotInstructor   = appErrors.Clone(appErrors.ErrPreconditionFailed, "You are not registered as an instructor")
)

// CatalogServiceParams groups constructor dependencies.
type CatalogServiceParams struct {
	Courses     courseRepository
	Lessons     lessonRepository
	Instructors instructorReader
	Enrollments enrollmentChecker
	Progress    completedLessonReader
	Audit       auditRepository
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// CatalogService manages courses and lessons.
type CatalogService struct {
	courses     courseRepository
	lessons     lessonRepository
	instructors instructorReader
	enrollments enrollmentChecker
	progress    completedLessonReader
	audit       auditRepository
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	if params.Validator == nil {
		params.Validator = NewValidator()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &CatalogService{
		courses:     params.Courses,
		lessons:     params.Lessons,
		instructors: params.Instructors,
		enrollments: params.Enrollments,
		progress:    params.Progress,
		audit:       params.Audit,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   params.Validator,
		logger:      params.Logger,
	}
}

// ListCourses returns a page of courses.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize, 20)
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.CourseListItem{}
	}
	return courses, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetCourseDetail returns the course with its lessons. Enrolled students also get their progress.
func (s *CatalogService) GetCourseDetail(ctx context.Context, courseID string, identity *models.Identity) (*dto.CourseDetailResponse, error) {
	course, err := s.courses.FindListItem(ctx, courseID)
	if err != nil {
		return nil, courseLookupError(err)
	}
	instructor, err := s.instructors.FindByID(ctx, course.InstructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course instructor")
	}
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}

	resp := &dto.CourseDetailResponse{Course: *course, Instructor: *instructor, Lessons: lessons}
	if identity == nil || identity.StudentID == nil {
		return resp, nil
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return resp, nil
	}
	completed, err := s.progress.CompletedLessonIDs(ctx, *identity.StudentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}
	progress := models.NewCourseProgress(courseID, completed, len(lessons))
	resp.IsEnrolled = true
	resp.Progress = &progress
	return resp, nil
}

// CreateCourse creates a course. Instructors create for themselves; admins name the instructor.
func (s *CatalogService) CreateCourse(ctx context.Context, identity *models.Identity, req models.CreateCourseRequest) (*models.Course, error) {
	if !identity.Can(models.CapabilityInstructor) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid course payload")
	}

	course := &models.Course{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Price:        req.Price,
		IsPaid:       req.IsPaid,
		Category:     strings.TrimSpace(req.Category),
		ThumbnailURL: req.ThumbnailURL,
		IsActive:     true,
	}
	if course.Category == "" {
		course.Category = models.DefaultCourseCategory
	}

	if identity.Can(models.CapabilityAdmin) {
		instructorID := req.InstructorID
		if instructorID == "" && identity.InstructorID != nil {
			instructorID = *identity.InstructorID
		}
		if instructorID == "" {
			return nil, appErrors.ErrValidation.WithField("instructor_id", "this field is required")
		}
		if err := s.ensureInstructor(ctx, instructorID); err != nil {
			return nil, err
		}
		course.InstructorID = instructorID
		if req.IsActive != nil {
			course.IsActive = *req.IsActive
		}
		if req.IsFeatured != nil {
			course.IsFeatured = *req.IsFeatured
		}
	} else {
		if identity.InstructorID == nil {
			return nil, errNotInstructor
		}
		course.InstructorID = *identity.InstructorID
	}

	if msg := course.PricingError(); msg != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid course payload").WithField("price", msg)
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.metrics.RecordCourseCreated()
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionCreate, models.AuditResourceCourse, course.ID, course)
	return course, nil
}

// UpdateCourse applies a partial update and re-validates the merged course.
func (s *CatalogService) UpdateCourse(ctx context.Context, identity *models.Identity, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid course payload")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if err := authorizeCourse(identity, course); err != nil {
		return nil, err
	}

	isAdmin := identity.Can(models.CapabilityAdmin)
	if req.TouchesAdminFields(*course) {
		if !isAdmin {
			return nil, errAdminOnlyFields
		}
		if req.InstructorID != nil && *req.InstructorID != course.InstructorID {
			if err := s.ensureInstructor(ctx, *req.InstructorID); err != nil {
				return nil, err
			}
		}
	}

	req.Apply(course)
	course.Title = strings.TrimSpace(course.Title)
	if msg := course.PricingError(); msg != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid course payload").WithField("price", msg)
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionUpdate, models.AuditResourceCourse, course.ID, req)
	return course, nil
}

// DeleteCourse removes a course and, through cascading keys, its lessons, enrollments and progress.
func (s *CatalogService) DeleteCourse(ctx context.Context, identity *models.Identity, courseID string) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return courseLookupError(err)
	}
	if err := authorizeCourse(identity, course); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionDelete, models.AuditResourceCourse, courseID, map[string]string{"title": course.Title})
	return nil
}

// ListLessons returns the lessons of a course in display order.
func (s *CatalogService) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, courseLookupError(err)
	}
	lessons, err := s.lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return lessons, nil
}

// CreateLesson adds a lesson to a course owned by the caller.
func (s *CatalogService) CreateLesson(ctx context.Context, identity *models.Identity, courseID string, req models.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid lesson payload")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if err := authorizeCourse(identity, course); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		CourseID:        courseID,
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		Order:           req.Order,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionCreate, models.AuditResourceLesson, lesson.ID, lesson)
	return lesson, nil
}

// UpdateLesson applies a partial update to a lesson of a course owned by the caller.
func (s *CatalogService) UpdateLesson(ctx context.Context, identity *models.Identity, lessonID string, req models.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid lesson payload")
	}
	lesson, err := s.authorizeLesson(ctx, identity, lessonID)
	if err != nil {
		return nil, err
	}
	req.Apply(lesson)
	if err := s.lessons.Update(ctx, lesson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionUpdate, models.AuditResourceLesson, lesson.ID, req)
	return lesson, nil
}

// DeleteLesson removes a lesson and its progress records.
func (s *CatalogService) DeleteLesson(ctx context.Context, identity *models.Identity, lessonID string) error {
	lesson, err := s.authorizeLesson(ctx, identity, lessonID)
	if err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, lesson.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionDelete, models.AuditResourceLesson, lesson.ID, map[string]string{"course_id": lesson.CourseID})
	return nil
}

func (s *CatalogService) authorizeLesson(ctx context.Context, identity *models.Identity, lessonID string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}
	course, err := s.courses.FindByID(ctx, lesson.CourseID)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if err := authorizeCourse(identity, course); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CatalogService) ensureInstructor(ctx context.Context, instructorID string) error {
	if _, err := s.instructors.FindByID(ctx, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return nil
}

// authorizeCourse lets admins act on any course and instructors on their own.
func authorizeCourse(identity *models.Identity, course *models.Course) error {
	if identity.Can(models.CapabilityAdmin) || identity.OwnsInstructor(course.InstructorID) {
		return nil
	}
	if !identity.Can(models.CapabilityInstructor) {
		return appErrors.ErrForbidden
	}
	return errNotOwner
}

func courseLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
}

func lessonLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
}
