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
	"github.com/noah-isme/elearn-api/internal/repository"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type instructorRepository interface {
	FindByID(ctx context.Context, id string) (*models.InstructorDetail, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Stats(ctx context.Context, id string) (models.InstructorStats, error)
}

type instructorCourseLister interface {
	ListByInstructor(ctx context.Context, instructorID string) ([]models.CourseListItem, error)
}

var errAlreadyInstructor = appErrors.Clone(appErrors.ErrConflict, "You are already an instructor")

// InstructorService covers instructor registration, public profiles and dashboards.
type InstructorService struct {
	repo      instructorRepository
	courses   instructorCourseLister
	audit     auditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorRepository, courses instructorCourseLister, audit auditRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, courses: courses, audit: audit, validator: validate, logger: logger}
}

// BecomeInstructor attaches an instructor record to the caller. The account role is left unchanged.
func (s *InstructorService) BecomeInstructor(ctx context.Context, identity *models.Identity, req models.BecomeInstructorRequest) (*models.Instructor, error) {
	if identity.InstructorID != nil {
		return nil, errAlreadyInstructor
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid instructor payload")
	}

	instructor := &models.Instructor{
		UserID:         identity.UserID,
		Bio:            strings.TrimSpace(req.Bio),
		Specialization: strings.TrimSpace(req.Specialization),
		Website:        req.Website,
		LinkedIn:       req.LinkedIn,
		IsApproved:     true,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errAlreadyInstructor
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register instructor")
	}
	recordAudit(ctx, s.audit, s.logger, identity, models.AuditActionBecomeInstructor, models.AuditResourceInstructor, instructor.ID, nil)
	return instructor, nil
}

// Profile returns the public page of an instructor.
func (s *InstructorService) Profile(ctx context.Context, instructorID string) (*dto.InstructorProfileResponse, error) {
	instructor, err := s.repo.FindByID(ctx, instructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	stats, courses, err := s.catalog(ctx, instructor.ID)
	if err != nil {
		return nil, err
	}
	return &dto.InstructorProfileResponse{Instructor: *instructor, Stats: stats, Courses: courses}, nil
}

// Dashboard returns the caller's own courses and statistics.
func (s *InstructorService) Dashboard(ctx context.Context, identity *models.Identity) (*dto.InstructorDashboardResponse, error) {
	if !identity.Can(models.CapabilityInstructor) {
		return nil, appErrors.ErrForbidden
	}
	if identity.InstructorID == nil {
		return nil, errNotInstructor
	}
	instructor, err := s.repo.FindByID(ctx, *identity.InstructorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotInstructor
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	stats, courses, err := s.catalog(ctx, instructor.ID)
	if err != nil {
		return nil, err
	}
	return &dto.InstructorDashboardResponse{Instructor: *instructor, Stats: stats, Courses: courses}, nil
}

func (s *InstructorService) catalog(ctx context.Context, instructorID string) (models.InstructorStats, []models.CourseListItem, error) {
	stats, err := s.repo.Stats(ctx, instructorID)
	if err != nil {
		return stats, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute instructor stats")
	}
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return stats, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor courses")
	}
	if courses == nil {
		courses = []models.CourseListItem{}
	}
	return stats, courses, nil
}
