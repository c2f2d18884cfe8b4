package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository stores per-lesson completion.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// MarkComplete records the lesson as completed. Repeated calls keep the first completion time.
func (r *ProgressRepository) MarkComplete(ctx context.Context, studentID, lessonID string, at time.Time) error {
	const query = `INSERT INTO lesson_progress (id, student_id, lesson_id, completed, completed_at) VALUES ($1, $2, $3, TRUE, $4)
ON CONFLICT (student_id, lesson_id) DO UPDATE SET completed = TRUE, completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), studentID, lessonID, at); err != nil {
		return fmt.Errorf("mark lesson complete: %w", err)
	}
	return nil
}

// CompletedLessonIDs returns the completed lessons of a course for a student, in lesson order.
func (r *ProgressRepository) CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error) {
	const query = `SELECT l.id FROM lesson_progress lp JOIN lessons l ON l.id = lp.lesson_id
WHERE lp.student_id = $1 AND l.course_id = $2 AND lp.completed
ORDER BY l."order" ASC, l.created_at ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list completed lessons: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
