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

const courseColumns = `c.id, c.instructor_id, c.title, c.description, c.price, c.is_paid, c.category, c.thumbnail_url, c.is_active, c.is_featured, c.created_at, c.updated_at`

const courseListSelect = `SELECT ` + courseColumns + `, u.username AS instructor_username,
	(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lesson_count,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrollment_count`

const courseListFrom = ` FROM courses c JOIN instructors i ON i.id = c.instructor_id JOIN users u ON u.id = i.user_id`

// CourseRepository provides access to the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, int, error) {
	where := " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_featured = $%d", len(args)+1))
		args = append(args, *filter.Featured)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(c.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, likePattern(filter.Search))
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "c.created_at",
		"title":      "c.title",
		"price":      "c.price",
		"category":   "c.category",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "c.created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("%s%s%s ORDER BY %s %s LIMIT %d OFFSET %d", courseListSelect, courseListFrom, where, sortBy, sortOrder, limit, offset)

	var courses []models.CourseListItem
	if err := r.db.SelectContext(ctx, &courses, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListByInstructor returns every course of an instructor, newest first.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.CourseListItem, error) {
	query := courseListSelect + courseListFrom + ` WHERE c.instructor_id = $1 ORDER BY c.created_at DESC`
	var courses []models.CourseListItem
	if err := r.db.SelectContext(ctx, &courses, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, lookupError(err, "find course")
	}
	return &course, nil
}

// FindListItem returns a course with its owner and counters.
func (r *CourseRepository) FindListItem(ctx context.Context, id string) (*models.CourseListItem, error) {
	query := courseListSelect + courseListFrom + ` WHERE c.id = $1`
	var item models.CourseListItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, lookupError(err, "find course detail")
	}
	return &item, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	const query = `INSERT INTO courses (id, instructor_id, title, description, price, is_paid, category, thumbnail_url, is_active, is_featured, created_at, updated_at) VALUES (:id, :instructor_id, :title, :description, :price, :is_paid, :category, :thumbnail_url, :is_active, :is_featured, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update stores every mutable course field.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET instructor_id = :instructor_id, title = :title, description = :description, price = :price, is_paid = :is_paid, category = :category, thumbnail_url = :thumbnail_url, is_active = :is_active, is_featured = :is_featured, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course. Lessons, enrollments and progress go with it through ON DELETE CASCADE.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
