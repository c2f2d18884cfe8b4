package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the student record owned by a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT id, user_id, created_at FROM students WHERE user_id = $1`, userID); err != nil {
		return nil, lookupError(err, "find student by user")
	}
	return &student, nil
}

// List returns students with the number of courses each is enrolled in.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int, error) {
	base := ` FROM students s JOIN users u ON u.id = s.user_id`
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE (LOWER(u.username) LIKE $1 OR LOWER(u.email) LIKE $1)"
		args = append(args, likePattern(filter.Search))
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf(`SELECT s.id, s.user_id, u.username, u.email, u.phone, s.created_at,
	(SELECT COUNT(*) FROM enrollments e WHERE e.student_id = s.id) AS enrolled_courses_count%s ORDER BY s.created_at DESC LIMIT %d OFFSET %d`, base, limit, offset)

	var items []models.StudentListItem
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return items, total, nil
}
