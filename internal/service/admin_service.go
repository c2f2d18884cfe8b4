package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type adminInstructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorListItem, int, error)
	SetApproval(ctx context.Context, id string, approved bool) error
}

type adminStudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int, error)
}

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ChangeRole(ctx context.Context, userID string, role models.UserRole) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AdminService covers the people-management side of administration.
type AdminService struct {
	instructors adminInstructorRepository
	students    adminStudentRepository
	users       adminUserRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(instructors adminInstructorRepository, students adminStudentRepository, users adminUserRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{instructors: instructors, students: students, users: users, cache: cache, validator: validate, logger: logger}
}

// ListInstructors returns a page of instructors with course and student counts.
func (s *AdminService) ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorListItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize, 20)
	items, total, err := s.instructors.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	if items == nil {
		items = []models.InstructorListItem{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListStudents returns a page of students with their enrollment counts.
func (s *AdminService) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize, 20)
	items, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if items == nil {
		items = []models.StudentListItem{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ChangeRole is the only way to change an account's role. The matching role record is created when missing.
func (s *AdminService) ChangeRole(ctx context.Context, actor *models.Identity, userID string, req models.ChangeRoleRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid role payload")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.ID == actor.UserID && !actor.Superuser && req.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You cannot remove your own admin role")
	}

	previous := user.Role
	if err := s.users.ChangeRole(ctx, user.ID, req.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change role")
	}
	user.Role = req.Role
	s.cache.Invalidate(ctx)
	recordAudit(ctx, s.users, s.logger, actor, models.AuditActionRoleChange, models.AuditResourceUser, user.ID, map[string]models.UserRole{"from": previous, "to": req.Role})
	return user, nil
}

// SetInstructorApproval toggles the approval flag of an instructor.
func (s *AdminService) SetInstructorApproval(ctx context.Context, actor *models.Identity, instructorID string, req models.InstructorApprovalRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err, "invalid approval payload")
	}
	if err := s.instructors.SetApproval(ctx, instructorID, *req.Approved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor approval")
	}
	recordAudit(ctx, s.users, s.logger, actor, models.AuditActionInstructorApproval, models.AuditResourceInstructor, instructorID, map[string]bool{"approved": *req.Approved})
	return nil
}
