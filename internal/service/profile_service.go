package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type profileRepository interface {
	FindProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile, syncPhone bool) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProfileService reads and edits the caller's profile.
type ProfileService struct {
	repo      profileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// Me returns the caller together with the stored profile.
func (s *ProfileService) Me(ctx context.Context, identity *models.Identity) (*dto.MeResponse, error) {
	resp := &dto.MeResponse{User: models.NewUserInfo(identity)}
	profile, err := s.repo.FindProfile(ctx, identity.UserID)
	switch {
	case err == nil:
		resp.Profile = profile
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return resp, nil
}

// UpdateProfile applies a partial update. A phone change is mirrored onto the account.
func (s *ProfileService) UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid profile payload")
	}

	profile, err := s.repo.FindProfile(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if req.Phone != nil {
		profile.Phone = blankToNil(*req.Phone)
	}
	if req.Address != nil {
		profile.Address = blankToNil(*req.Address)
	}
	if req.DateOfBirth != nil {
		if strings.TrimSpace(*req.DateOfBirth) == "" {
			profile.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				return nil, appErrors.ErrValidation.WithField("date_of_birth", "must be a date formatted as YYYY-MM-DD")
			}
			profile.DateOfBirth = &dob
		}
	}

	if err := s.repo.UpdateProfile(ctx, profile, req.Phone != nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	recordAudit(ctx, s.repo, s.logger, identity, models.AuditActionProfileUpdate, models.AuditResourceUser, identity.UserID, req)
	return profile, nil
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
