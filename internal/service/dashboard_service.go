package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

const (
	recentCoursesLimit   = 10
	featuredCoursesLimit = 6
)

type platformStatsReader interface {
	Totals(ctx context.Context) (dto.PlatformTotals, error)
}

type courseLister interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, int, error)
}

// DashboardService composes the admin dashboard and the public home page.
type DashboardService struct {
	stats    platformStatsReader
	courses  courseLister
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats platformStatsReader, courses courseLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{stats: stats, courses: courses, cache: cache, cacheTTL: cacheTTL, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// AdminDashboard returns platform totals and the most recent courses. The bool reports a cache hit.
func (s *DashboardService) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	var cached dto.AdminDashboardResponse
	if hit, _ := s.cache.Get(ctx, cacheKeyAdminDashboard, &cached); hit {
		return &cached, true, nil
	}

	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute totals")
	}
	recent, _, err := s.courses.List(ctx, models.CourseFilter{Page: 1, PageSize: recentCoursesLimit, SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent courses")
	}
	if recent == nil {
		recent = []models.CourseListItem{}
	}

	resp := &dto.AdminDashboardResponse{Totals: totals, RecentCourses: recent, GeneratedAt: s.now()}
	_ = s.cache.Set(ctx, cacheKeyAdminDashboard, resp, s.cacheTTL)
	return resp, false, nil
}

// Home returns public totals and up to six featured, active courses.
func (s *DashboardService) Home(ctx context.Context) (*dto.HomeResponse, bool, error) {
	var cached dto.HomeResponse
	if hit, _ := s.cache.Get(ctx, cacheKeyHome, &cached); hit {
		return &cached, true, nil
	}

	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute totals")
	}
	yes := true
	featured, _, err := s.courses.List(ctx, models.CourseFilter{Featured: &yes, Active: &yes, Page: 1, PageSize: featuredCoursesLimit, SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list featured courses")
	}
	if featured == nil {
		featured = []models.CourseListItem{}
	}

	resp := &dto.HomeResponse{Totals: totals, FeaturedCourses: featured, GeneratedAt: s.now()}
	_ = s.cache.Set(ctx, cacheKeyHome, resp, s.cacheTTL)
	return resp, false, nil
}
