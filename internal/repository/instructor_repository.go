package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/models"
)

const instructorDetailSelect = `SELECT i.id, i.user_id, i.bio, i.specialization, i.website, i.linkedin, i.is_approved, i.created_at, u.username, u.email
FROM instructors i
JOIN users u ON u.id = i.user_id`

// InstructorRepository provides access to instructor records.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// FindByID returns the instructor joined with its account.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.InstructorDetail, error) {
	var detail models.InstructorDetail
	if err := r.db.GetContext(ctx, &detail, instructorDetailSelect+` WHERE i.id = $1`, id); err != nil {
		return nil, lookupError(err, "find instructor")
	}
	return &detail, nil
}

// FindByUserID returns the instructor record owned by a user.
func (r *InstructorRepository) FindByUserID(ctx context.Context, userID string) (*models.InstructorDetail, error) {
	var detail models.InstructorDetail
	if err := r.db.GetContext(ctx, &detail, instructorDetailSelect+` WHERE i.user_id = $1`, userID); err != nil {
		return nil, lookupError(err, "find instructor by user")
	}
	return &detail, nil
}

// Create inserts a new instructor record. ErrDuplicate is returned when the user already has one.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructors (id, user_id, bio, specialization, website, linkedin, is_approved, created_at) VALUES (:id, :user_id, :bio, :specialization, :website, :linkedin, :is_approved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", translate(err))
	}
	return nil
}

// SetApproval updates the approval flag. sql.ErrNoRows is returned for unknown ids.
func (r *InstructorRepository) SetApproval(ctx context.Context, id string, approved bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE instructors SET is_approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		if malformedID(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("set instructor approval: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats counts courses, distinct enrolled students and lessons of an instructor.
func (r *InstructorRepository) Stats(ctx context.Context, id string) (models.InstructorStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM courses c WHERE c.instructor_id = $1) AS total_courses,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.instructor_id = $1) AS total_students,
	(SELECT COUNT(*) FROM lessons l JOIN courses c ON c.id = l.course_id WHERE c.instructor_id = $1) AS total_lessons`
	var stats models.InstructorStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return stats, fmt.Errorf("instructor stats: %w", err)
	}
	return stats, nil
}

// List returns instructors with their course and distinct student counts.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorListItem, int, error) {
	base := ` FROM instructors i JOIN users u ON u.id = i.user_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.username) LIKE $%d OR LOWER(u.email) LIKE $%d OR LOWER(i.specialization) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, likePattern(filter.Search))
	}
	if filter.Approved != nil {
		conditions = append(conditions, fmt.Sprintf("i.is_approved = $%d", len(args)+1))
		args = append(args, *filter.Approved)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf(`SELECT i.id, i.user_id, i.bio, i.specialization, i.website, i.linkedin, i.is_approved, i.created_at, u.username, u.email,
	(SELECT COUNT(*) FROM courses c WHERE c.instructor_id = i.id) AS total_courses,
	(SELECT COUNT(DISTINCT e.student_id) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.instructor_id = i.id) AS total_students%s ORDER BY i.created_at DESC LIMIT %d OFFSET %d`, base, limit, offset)

	var items []models.InstructorListItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return items, total, nil
}
