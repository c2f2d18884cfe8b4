package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/dto"
)

// StatsRepository computes platform-wide counters.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals counts courses, students, instructors and enrollments. People are counted by role.
func (r *StatsRepository) Totals(ctx context.Context) (dto.PlatformTotals, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM courses) AS total_courses,
	(SELECT COUNT(*) FROM users WHERE role = 'student') AS total_students,
	(SELECT COUNT(*) FROM users WHERE role = 'instructor') AS total_instructors,
	(SELECT COUNT(*) FROM enrollments) AS total_enrollments`
	var totals dto.PlatformTotals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return totals, fmt.Errorf("platform totals: %w", err)
	}
	return totals, nil
}

// Ping checks database connectivity for readiness probes.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
