package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/elearn-api/internal/models"
)

// EnrollmentRepository stores course membership.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll adds the student to the course. It reports false when the membership already existed.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID string, at time.Time) (bool, error) {
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrolled_at) VALUES ($1, $2, $3, $4) ON CONFLICT (student_id, course_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, courseID, at)
	if err != nil {
		return false, fmt.Errorf("enroll student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("enroll student rows: %w", err)
	}
	return affected > 0, nil
}

// IsEnrolled reports whether the student is a member of the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var enrolled bool
	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	if err := r.db.GetContext(ctx, &enrolled, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}

// ListByStudent returns the student's courses with lesson and completion counts.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrolledCourse, error) {
	query := `SELECT ` + courseColumns + `, u.username AS instructor_username, e.enrolled_at,
	(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS total_lessons,
	(SELECT COUNT(*) FROM lesson_progress lp JOIN lessons l ON l.id = lp.lesson_id WHERE l.course_id = c.id AND lp.student_id = e.student_id AND lp.completed) AS completed_lessons
FROM enrollments e
JOIN courses c ON c.id = e.course_id
JOIN instructors i ON i.id = c.instructor_id
JOIN users u ON u.id = i.user_id
WHERE e.student_id = $1
ORDER BY e.enrolled_at DESC`
	var courses []models.EnrolledCourse
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return courses, nil
}
